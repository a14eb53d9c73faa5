package engine

// Span is a half-open [Start, End) slice of the engine's global source
// space. Every file registered with the engine state occupies a contiguous
// range of that space, so a span alone is enough to find both the file and
// the text it points at.
type Span struct {
	Start int
	End   int
}

// SpanID identifies a span registered in the engine state. Ids are
// monotonic and never reused.
type SpanID int

// FileID identifies a source file registered in the engine state.
type FileID int

// UnknownSpan marks values and errors with no source attribution.
func UnknownSpan() Span { return Span{} }

// IsUnknown reports whether the span carries no location.
func (s Span) IsUnknown() bool { return s.Start == 0 && s.End == 0 }

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset int) bool { return offset >= s.Start && offset < s.End }

// SourceFile is a piece of source text registered with the engine state.
// Covered is its range in the global source space.
type SourceFile struct {
	Name     string
	Contents []byte
	Covered  Span
}
