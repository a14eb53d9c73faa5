package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Each maps a closure over the input, lazily. Nothing results are dropped
// from the output; metadata and the cancellation signal ride through.
type Each struct{}

func (Each) Name() string                    { return "each" }
func (Each) Description() string             { return "Run a closure on each element of the input." }
func (Each) CommandType() engine.CommandType { return engine.NormalCommand }

func (Each) Signature() *engine.Signature {
	return engine.NewSignature("each").
		Required("closure", engine.ShapeClosure, "the closure to run per element").
		WithCategory(config.CategoryFilters)
}

func (Each) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	closureVal, err := eval.Arg(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	closure, err := engine.AsClosure(closureVal)
	if err != nil {
		return nil, err
	}

	stream := engine.IterateData(input, call.Head, state.Signals())
	out := stream.Map(func(v engine.Value) (engine.Value, error) {
		data, err := eval.EvalClosure(state, closure, []engine.Value{v}, engine.Empty{}, call.Head)
		if err != nil {
			return nil, err
		}
		res, err := data.IntoValue(call.Head)
		if err != nil {
			return nil, err
		}
		if _, isNothing := res.(*engine.Nothing); isNothing {
			return nil, nil
		}
		return res, nil
	})
	return out, nil
}

// Every keeps one element out of every stride, or with --skip drops those
// and keeps the rest.
type Every struct{}

func (Every) Name() string                    { return "every" }
func (Every) Description() string             { return "Show or skip every n-th element of the input." }
func (Every) CommandType() engine.CommandType { return engine.NormalCommand }

func (Every) Signature() *engine.Signature {
	return engine.NewSignature("every").
		Required("stride", engine.ShapeInt, "how many elements one group spans").
		Switch("skip", "s", "skip the matched elements instead of keeping them").
		WithCategory(config.CategoryFilters)
}

func (Every) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	strideVal, err := eval.Arg(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	stride, err := engine.AsInt(strideVal)
	if err != nil {
		return nil, err
	}
	if stride <= 0 {
		return nil, engine.NewError(engine.KindGeneric, strideVal.Span(), "stride must be positive, got %d", stride)
	}
	skip := call.HasNamed("skip")

	idx := int64(0)
	stream := engine.IterateData(input, call.Head, state.Signals())
	out := stream.Where(func(engine.Value) (bool, error) {
		keep := idx%stride == 0
		idx++
		if skip {
			keep = !keep
		}
		return keep, nil
	})
	return out, nil
}

// Length counts the elements of the input without materializing a stream.
type Length struct{}

func (Length) Name() string                    { return "length" }
func (Length) Description() string             { return "Count the elements of the input." }
func (Length) CommandType() engine.CommandType { return engine.NormalCommand }

func (Length) Signature() *engine.Signature {
	return engine.NewSignature("length").WithCategory(config.CategoryFilters)
}

func (Length) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	var count int64
	switch d := input.(type) {
	case engine.Empty:
	case engine.ValueData:
		switch v := d.Value.(type) {
		case *engine.Nothing:
		case *engine.List:
			count = int64(len(v.Values))
		default:
			count = 1
		}
	default:
		stream := engine.IterateData(input, call.Head, state.Signals())
		for {
			v, err := stream.Next()
			if err != nil {
				return nil, err
			}
			if v == nil {
				break
			}
			count++
		}
	}
	return engine.ValueData{Value: &engine.Int{Value: count, ValSpan: call.Head}}, nil
}

// Ignore drains the input, running its effects, and discards the result.
type Ignore struct{}

func (Ignore) Name() string                    { return "ignore" }
func (Ignore) Description() string             { return "Drain the input and discard it." }
func (Ignore) CommandType() engine.CommandType { return engine.NormalCommand }

func (Ignore) Signature() *engine.Signature {
	return engine.NewSignature("ignore").WithCategory(config.CategoryCore)
}

func (Ignore) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	if err := input.Drain(); err != nil {
		return nil, err
	}
	return engine.Empty{}, nil
}

// Collect forces a lazy stream into a single in-memory value.
type Collect struct{}

func (Collect) Name() string                    { return "collect" }
func (Collect) Description() string             { return "Collect the input stream into a value." }
func (Collect) CommandType() engine.CommandType { return engine.NormalCommand }

func (Collect) Signature() *engine.Signature {
	return engine.NewSignature("collect").WithCategory(config.CategoryFilters)
}

func (Collect) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	v, err := input.IntoValue(call.Head)
	if err != nil {
		return nil, err
	}
	return engine.ValueData{Value: v, Meta: input.Metadata()}, nil
}
