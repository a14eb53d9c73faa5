package config

// DefaultOverlayName is the overlay every engine state starts with. Builtin
// commands and top-level definitions land here unless another overlay is
// active.
const DefaultOverlayName = "zero"

// Environment variable names the runtime treats specially.
const (
	PwdEnvVar      = "PWD"
	LastExitEnvVar = "LAST_EXIT_CODE"
)

// Command categories, used by help output.
const (
	CategoryCore       = "core"
	CategoryFilters    = "filters"
	CategoryGenerators = "generators"
	CategoryPlatform   = "platform"
)
