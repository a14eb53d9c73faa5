package commands

import (
	"os"

	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Cd changes the logical working directory by rewriting PWD in the current
// frame. It is a keyword because it mutates the environment; the process
// working directory is left alone so concurrent evaluations never race on
// it.
type Cd struct{}

func (Cd) Name() string                    { return "cd" }
func (Cd) Description() string             { return "Change the working directory." }
func (Cd) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Cd) Signature() *engine.Signature {
	return engine.NewSignature("cd").
		Optional("path", engine.ShapeString, "the directory to change to, home when omitted").
		WithCategory(config.CategoryPlatform)
}

func (Cd) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	var path string
	v, given, err := eval.OptArg(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	if given {
		path, err = engine.AsString(v)
		if err != nil {
			return nil, err
		}
		path = config.ExpandHome(path)
	} else {
		path, err = os.UserHomeDir()
		if err != nil {
			return nil, engine.NewError(engine.KindIO, call.Head, "cannot determine home directory: %v", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, engine.NewError(engine.KindIO, call.Head, "cannot cd to %q: %v", path, err)
	}
	if !info.IsDir() {
		return nil, engine.NewError(engine.KindIO, call.Head, "%q is not a directory", path)
	}

	stack.AddEnvVar(config.PwdEnvVar, &engine.String{Value: path, ValSpan: call.Head})
	return engine.Empty{}, nil
}
