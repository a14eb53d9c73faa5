package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Seq produces an inclusive integer sequence as a lazy stream, so an
// interrupt or a downstream break stops production mid-way.
type Seq struct{}

func (Seq) Name() string                    { return "seq" }
func (Seq) Description() string             { return "Output an inclusive sequence of integers." }
func (Seq) CommandType() engine.CommandType { return engine.NormalCommand }

func (Seq) Signature() *engine.Signature {
	return engine.NewSignature("seq").
		Required("first", engine.ShapeInt, "the first number of the sequence").
		Required("last", engine.ShapeInt, "the last number of the sequence").
		WithCategory(config.CategoryGenerators)
}

func (Seq) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	firstVal, err := eval.Arg(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	first, err := engine.AsInt(firstVal)
	if err != nil {
		return nil, err
	}
	lastVal, err := eval.Arg(state, stack, call, 1)
	if err != nil {
		return nil, err
	}
	last, err := engine.AsInt(lastVal)
	if err != nil {
		return nil, err
	}

	iter := (&engine.Range{From: first, To: last, ValSpan: call.Head}).Iter()
	return engine.NewListStream(call.Head, state.Signals(), func() (engine.Value, bool) {
		return iter()
	}), nil
}
