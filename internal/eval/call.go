package eval

import (
	"github.com/PoopyPooOS/nushell/internal/engine"
)

// Argument helpers used by commands. Positional and flag expressions are
// stored unevaluated on the call; these evaluate them on demand against
// the caller's stack.

// Arg evaluates the required positional argument at index n.
func Arg(state *engine.EngineState, stack *engine.Stack, call *engine.Call, n int) (engine.Value, error) {
	expr := call.Pos(n)
	if expr == nil {
		return nil, engine.NewError(engine.KindMissingParameter, call.Head,
			"missing required positional argument %d", n)
	}
	return EvalExpression(state, stack, expr)
}

// OptArg evaluates the optional positional argument at index n. The second
// result reports whether the argument was given.
func OptArg(state *engine.EngineState, stack *engine.Stack, call *engine.Call, n int) (engine.Value, bool, error) {
	expr := call.Pos(n)
	if expr == nil {
		return nil, false, nil
	}
	v, err := EvalExpression(state, stack, expr)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// RestArgs evaluates every positional argument from index n on.
func RestArgs(state *engine.EngineState, stack *engine.Stack, call *engine.Call, n int) ([]engine.Value, error) {
	var vals []engine.Value
	for i := n; i < len(call.Positional); i++ {
		v, err := EvalExpression(state, stack, call.Positional[i])
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// FlagValue evaluates a value-carrying flag. Switch flags and absent flags
// report not-given.
func FlagValue(state *engine.EngineState, stack *engine.Stack, call *engine.Call, name string) (engine.Value, bool, error) {
	expr, ok := call.Named[name]
	if !ok || expr == nil {
		return nil, false, nil
	}
	v, err := EvalExpression(state, stack, expr)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// DeclArg returns the variable declaration at positional n. Keyword
// commands consume these structurally; they are never evaluated.
func DeclArg(call *engine.Call, n int) (*engine.VarDecl, error) {
	expr := call.Pos(n)
	decl, ok := expr.(*engine.VarDecl)
	if !ok {
		return nil, engine.NewError(engine.KindGeneric, call.Head,
			"expected a variable declaration at position %d", n)
	}
	return decl, nil
}

// BlockArg returns the block literal at positional n without turning it
// into a closure, for keyword commands that evaluate bodies in place.
func BlockArg(call *engine.Call, n int) (engine.BlockID, engine.Span, error) {
	expr := call.Pos(n)
	block, ok := expr.(*engine.BlockExpr)
	if !ok {
		span := call.Head
		if expr != nil {
			span = expr.Span()
		}
		return 0, span, engine.NewError(engine.KindGeneric, span,
			"expected a block at position %d", n)
	}
	return block.ID, block.ExpSpan, nil
}
