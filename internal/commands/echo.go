package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Echo passes its arguments along: one argument flows as-is, several
// become a list, none yields empty data.
type Echo struct{}

func (Echo) Name() string                    { return "echo" }
func (Echo) Description() string             { return "Return its arguments as pipeline data." }
func (Echo) CommandType() engine.CommandType { return engine.NormalCommand }

func (Echo) Signature() *engine.Signature {
	return engine.NewSignature("echo").
		Rest("values", engine.ShapeAny, "the values to return").
		WithCategory(config.CategoryCore)
}

func (Echo) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	vals, err := eval.RestArgs(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 0:
		return engine.Empty{}, nil
	case 1:
		return engine.ValueData{Value: vals[0]}, nil
	default:
		return engine.ValueData{Value: &engine.List{Values: vals, ValSpan: call.Head}}, nil
	}
}
