package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// runLoopBody evaluates one loop iteration on a prepared child frame and
// classifies the outcome: break stops the loop, continue advances it, and
// everything else propagates.
func runLoopBody(state *engine.EngineState, child *engine.Stack, block *engine.Block) (stop bool, err error) {
	out, err := eval.EvalBlock(state, child, block, engine.Empty{})
	if err == nil {
		err = out.Drain()
	}
	if err != nil {
		switch err.(type) {
		case *engine.BreakSignal:
			return true, nil
		case *engine.ContinueSignal:
			return false, nil
		}
		return true, err
	}
	return false, nil
}

// For iterates a range, list or single value, binding each element to the
// loop variable in a fresh child frame per iteration.
type For struct{}

func (For) Name() string                    { return "for" }
func (For) Description() string             { return "Loop over a range or collection." }
func (For) CommandType() engine.CommandType { return engine.KeywordCommand }

func (For) Signature() *engine.Signature {
	return engine.NewSignature("for").
		Required("var", engine.ShapeVarName, "the loop variable").
		Required("iterable", engine.ShapeAny, "the range, list or value to iterate").
		Required("body", engine.ShapeBlock, "the block to run per element").
		WithCategory(config.CategoryCore).
		Scoped()
}

func (For) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	decl, err := eval.DeclArg(call, 0)
	if err != nil {
		return nil, err
	}
	iterable, err := eval.Arg(state, stack, call, 1)
	if err != nil {
		return nil, err
	}
	blockID, _, err := eval.BlockArg(call, 2)
	if err != nil {
		return nil, err
	}
	block := state.GetBlock(blockID)

	stream := engine.IterateData(engine.ValueData{Value: iterable}, call.Head, state.Signals())
	for {
		v, err := stream.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return engine.Empty{}, nil
		}
		child := stack.Child()
		child.AddVar(decl.ID, v)
		stop, err := runLoopBody(state, child, block)
		if err != nil {
			return nil, err
		}
		if stop {
			return engine.Empty{}, nil
		}
	}
}

// While re-evaluates its condition against the enclosing scope before each
// iteration.
type While struct{}

func (While) Name() string                    { return "while" }
func (While) Description() string             { return "Loop while a condition holds." }
func (While) CommandType() engine.CommandType { return engine.KeywordCommand }

func (While) Signature() *engine.Signature {
	return engine.NewSignature("while").
		Required("condition", engine.ShapeAny, "the condition checked before each iteration").
		Required("body", engine.ShapeBlock, "the block to run per iteration").
		WithCategory(config.CategoryCore).
		Scoped()
}

func (While) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	condExpr := call.Pos(0)
	if condExpr == nil {
		return nil, engine.NewError(engine.KindMissingParameter, call.Head, "missing condition")
	}
	blockID, _, err := eval.BlockArg(call, 1)
	if err != nil {
		return nil, err
	}
	block := state.GetBlock(blockID)
	signals := state.Signals()

	for {
		if err := signals.Check(call.Head); err != nil {
			return nil, err
		}
		cond, err := eval.EvalExpression(state, stack, condExpr)
		if err != nil {
			return nil, err
		}
		if !engine.IsTruthy(cond) {
			return engine.Empty{}, nil
		}
		stop, err := runLoopBody(state, stack.Child(), block)
		if err != nil {
			return nil, err
		}
		if stop {
			return engine.Empty{}, nil
		}
	}
}

// Loop runs its body until a break, a failure or an interrupt.
type Loop struct{}

func (Loop) Name() string                    { return "loop" }
func (Loop) Description() string             { return "Loop forever until break." }
func (Loop) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Loop) Signature() *engine.Signature {
	return engine.NewSignature("loop").
		Required("body", engine.ShapeBlock, "the block to run per iteration").
		WithCategory(config.CategoryCore).
		Scoped()
}

func (Loop) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	blockID, _, err := eval.BlockArg(call, 0)
	if err != nil {
		return nil, err
	}
	block := state.GetBlock(blockID)
	signals := state.Signals()

	for {
		if err := signals.Check(call.Head); err != nil {
			return nil, err
		}
		stop, err := runLoopBody(state, stack.Child(), block)
		if err != nil {
			return nil, err
		}
		if stop {
			return engine.Empty{}, nil
		}
	}
}
