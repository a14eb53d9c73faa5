package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// If evaluates its condition and runs one branch. It is not a loop or
// function boundary: control signals from a branch propagate to the
// enclosing construct.
type If struct{}

func (If) Name() string                    { return "if" }
func (If) Description() string             { return "Run a block when a condition holds." }
func (If) CommandType() engine.CommandType { return engine.KeywordCommand }

func (If) Signature() *engine.Signature {
	return engine.NewSignature("if").
		Required("condition", engine.ShapeAny, "the condition to check").
		Required("then", engine.ShapeBlock, "the block to run when the condition holds").
		Optional("else", engine.ShapeBlock, "the block or if chained after else").
		WithCategory(config.CategoryCore).
		Scoped()
}

func (If) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	cond, err := eval.Arg(state, stack, call, 0)
	if err != nil {
		return nil, err
	}

	if engine.IsTruthy(cond) {
		blockID, _, err := eval.BlockArg(call, 1)
		if err != nil {
			return nil, err
		}
		return eval.EvalBlock(state, stack.Child(), state.GetBlock(blockID), input)
	}

	switch alt := call.Pos(2).(type) {
	case nil:
		return engine.Empty{}, nil
	case *engine.BlockExpr:
		return eval.EvalBlock(state, stack.Child(), state.GetBlock(alt.ID), input)
	case *engine.CallExpr:
		// else-if chain
		return eval.EvalCall(state, stack, alt.Call, input)
	default:
		return nil, engine.NewError(engine.KindGeneric, alt.Span(), "expected a block after else")
	}
}
