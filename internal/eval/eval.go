// Package eval walks compiled blocks and drives command execution. It sits
// above the engine package and below the command set: commands call back
// into it through the function hooks installed on the engine state, which
// keeps the engine free of an evaluator dependency.
package eval

import (
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/parser"
)

// Install wires the evaluator into an engine state. Must run before any
// declared command or closure is evaluated.
func Install(state *engine.EngineState) {
	state.EvalBlock = EvalBlock
	state.EvalExpression = EvalExpression
}

// Source compiles one unit of input, commits it, and evaluates the
// resulting block on the given stack. This is the REPL's per-line path and
// the embedding API's entry point: parse errors and merge failures leave
// the engine state untouched.
func Source(state *engine.EngineState, stack *engine.Stack, name string, src []byte, input engine.PipelineData) (engine.PipelineData, error) {
	ws := engine.NewWorkingSet(state)
	blockID, err := parser.Parse(ws, stack.ActiveOverlays(), name, src)
	if err != nil {
		return nil, err
	}
	if err := state.MergeDelta(ws.Render()); err != nil {
		return nil, err
	}
	return EvalBlock(state, stack, state.GetBlock(blockID), input)
}

// EvalBlock runs a block's pipelines in order. Input feeds the first
// pipeline; every pipeline but the last is drained so its effects happen,
// and the last pipeline's output is the block's output. Control signals
// and failures propagate as errors.
func EvalBlock(state *engine.EngineState, stack *engine.Stack, block *engine.Block, input engine.PipelineData) (engine.PipelineData, error) {
	data := input
	if data == nil {
		data = engine.Empty{}
	}
	for i, pl := range block.Pipelines {
		out, err := evalPipeline(state, stack, pl, data)
		if err != nil {
			return nil, err
		}
		if i == len(block.Pipelines)-1 {
			return out, nil
		}
		if err := out.Drain(); err != nil {
			return nil, err
		}
		data = engine.Empty{}
	}
	return engine.Empty{}, nil
}

func evalPipeline(state *engine.EngineState, stack *engine.Stack, pl *engine.Pipeline, input engine.PipelineData) (engine.PipelineData, error) {
	data := input
	for _, el := range pl.Elements {
		switch e := el.(type) {
		case *engine.CallExpr:
			out, err := EvalCall(state, stack, e.Call, data)
			if err != nil {
				return nil, err
			}
			data = out
		default:
			v, err := EvalExpression(state, stack, el)
			if err != nil {
				return nil, err
			}
			data = engine.ValueData{Value: v}
		}
	}
	return data, nil
}

// EvalCall dispatches one command invocation.
func EvalCall(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	decl := state.GetDecl(call.Decl)
	out, err := decl.Run(state, stack, call, input)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = engine.Empty{}
	}
	return out, nil
}

// EvalExpression computes a single expression to a value. Calls and
// subexpressions are collected eagerly.
func EvalExpression(state *engine.EngineState, stack *engine.Stack, expr engine.Expression) (engine.Value, error) {
	switch e := expr.(type) {
	case *engine.IntLiteral:
		return &engine.Int{Value: e.Value, ValSpan: e.ExpSpan}, nil
	case *engine.FloatLiteral:
		return &engine.Float{Value: e.Value, ValSpan: e.ExpSpan}, nil
	case *engine.BoolLiteral:
		return &engine.Bool{Value: e.Value, ValSpan: e.ExpSpan}, nil
	case *engine.StringLiteral:
		return &engine.String{Value: e.Value, ValSpan: e.ExpSpan}, nil
	case *engine.NothingLiteral:
		return &engine.Nothing{ValSpan: e.ExpSpan}, nil
	case *engine.ListLiteral:
		vals := make([]engine.Value, 0, len(e.Items))
		for _, item := range e.Items {
			v, err := EvalExpression(state, stack, item)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return &engine.List{Values: vals, ValSpan: e.ExpSpan}, nil
	case *engine.RecordLiteral:
		rec := &engine.Record{Cols: append([]string(nil), e.Cols...), ValSpan: e.ExpSpan}
		for _, valExpr := range e.Vals {
			v, err := EvalExpression(state, stack, valExpr)
			if err != nil {
				return nil, err
			}
			rec.Vals = append(rec.Vals, v)
		}
		return rec, nil
	case *engine.RangeLiteral:
		from, err := evalIntOperand(state, stack, e.From)
		if err != nil {
			return nil, err
		}
		to, err := evalIntOperand(state, stack, e.To)
		if err != nil {
			return nil, err
		}
		return &engine.Range{From: from, To: to, ValSpan: e.ExpSpan}, nil
	case *engine.VarRef:
		return stack.GetVar(e.ID, e.ExpSpan)
	case *engine.VarDecl:
		return nil, engine.NewError(engine.KindGeneric, e.ExpSpan,
			"declaration of %q cannot be evaluated as a value", e.Name)
	case *engine.BlockExpr:
		return &engine.Closure{Block: e.ID, Captured: stack, ValSpan: e.ExpSpan}, nil
	case *engine.SubExpr:
		block := state.GetBlock(e.ID)
		data, err := EvalBlock(state, stack.Child(), block, engine.Empty{})
		if err != nil {
			return nil, err
		}
		return data.IntoValue(e.ExpSpan)
	case *engine.CallExpr:
		data, err := EvalCall(state, stack, e.Call, engine.Empty{})
		if err != nil {
			return nil, err
		}
		return data.IntoValue(e.Call.Head)
	case *engine.BinaryOp:
		return evalBinary(state, stack, e)
	}
	return nil, engine.NewError(engine.KindGeneric, expr.Span(), "cannot evaluate expression")
}

func evalIntOperand(state *engine.EngineState, stack *engine.Stack, expr engine.Expression) (int64, error) {
	v, err := EvalExpression(state, stack, expr)
	if err != nil {
		return 0, err
	}
	return engine.AsInt(v)
}

// EvalClosure runs a closure body over its captured frame. A return signal
// from the body is absorbed into the result; break and continue do not
// cross a closure boundary.
func EvalClosure(state *engine.EngineState, closure *engine.Closure, args []engine.Value, input engine.PipelineData, span engine.Span) (engine.PipelineData, error) {
	block := state.GetBlock(closure.Block)
	frame := closure.Captured.Child()
	for i, param := range block.Params {
		if i < len(args) {
			frame.AddVar(param.ID, args[i])
		} else {
			frame.AddVar(param.ID, &engine.Nothing{ValSpan: span})
		}
	}
	data, err := EvalBlock(state, frame, block, input)
	if err != nil {
		switch sig := err.(type) {
		case *engine.ReturnSignal:
			return engine.ValueData{Value: sig.Value}, nil
		case *engine.BreakSignal:
			return nil, engine.NewError(engine.KindGeneric, sig.Span, "break used outside of a loop")
		case *engine.ContinueSignal:
			return nil, engine.NewError(engine.KindGeneric, sig.Span, "continue used outside of a loop")
		}
		return nil, err
	}
	return data, nil
}

func evalBinary(state *engine.EngineState, stack *engine.Stack, e *engine.BinaryOp) (engine.Value, error) {
	left, err := EvalExpression(state, stack, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := EvalExpression(state, stack, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==":
		return &engine.Bool{Value: engine.ValuesEqual(left, right), ValSpan: e.ExpSpan}, nil
	case "!=":
		return &engine.Bool{Value: !engine.ValuesEqual(left, right), ValSpan: e.ExpSpan}, nil
	case "+", "-", "*", "/":
		return evalArith(e, left, right)
	case "<", ">", "<=", ">=":
		return evalCompare(e, left, right)
	}
	return nil, engine.NewError(engine.KindGeneric, e.ExpSpan, "unsupported operator %q", e.Op)
}

func evalArith(e *engine.BinaryOp, left, right engine.Value) (engine.Value, error) {
	if e.Op == "+" {
		if ls, ok := left.(*engine.String); ok {
			rs, ok := right.(*engine.String)
			if !ok {
				return nil, engine.NewError(engine.KindType, e.Right.Span(),
					"cannot add %s to %s", right.Type(), left.Type())
			}
			return &engine.String{Value: ls.Value + rs.Value, ValSpan: e.ExpSpan}, nil
		}
		if ll, ok := left.(*engine.List); ok {
			rl, ok := right.(*engine.List)
			if !ok {
				return nil, engine.NewError(engine.KindType, e.Right.Span(),
					"cannot add %s to %s", right.Type(), left.Type())
			}
			vals := append(append([]engine.Value(nil), ll.Values...), rl.Values...)
			return &engine.List{Values: vals, ValSpan: e.ExpSpan}, nil
		}
	}

	li, lf, lInt, ok := asNumber(left)
	if !ok {
		return nil, engine.NewError(engine.KindType, e.Left.Span(), "expected a number, got %s", left.Type())
	}
	ri, rf, rInt, ok := asNumber(right)
	if !ok {
		return nil, engine.NewError(engine.KindType, e.Right.Span(), "expected a number, got %s", right.Type())
	}

	if lInt && rInt {
		switch e.Op {
		case "+":
			return &engine.Int{Value: li + ri, ValSpan: e.ExpSpan}, nil
		case "-":
			return &engine.Int{Value: li - ri, ValSpan: e.ExpSpan}, nil
		case "*":
			return &engine.Int{Value: li * ri, ValSpan: e.ExpSpan}, nil
		case "/":
			if ri == 0 {
				return nil, engine.NewError(engine.KindGeneric, e.ExpSpan, "division by zero")
			}
			return &engine.Int{Value: li / ri, ValSpan: e.ExpSpan}, nil
		}
	}

	switch e.Op {
	case "+":
		return &engine.Float{Value: lf + rf, ValSpan: e.ExpSpan}, nil
	case "-":
		return &engine.Float{Value: lf - rf, ValSpan: e.ExpSpan}, nil
	case "*":
		return &engine.Float{Value: lf * rf, ValSpan: e.ExpSpan}, nil
	case "/":
		if rf == 0 {
			return nil, engine.NewError(engine.KindGeneric, e.ExpSpan, "division by zero")
		}
		return &engine.Float{Value: lf / rf, ValSpan: e.ExpSpan}, nil
	}
	return nil, engine.NewError(engine.KindGeneric, e.ExpSpan, "unsupported operator %q", e.Op)
}

func evalCompare(e *engine.BinaryOp, left, right engine.Value) (engine.Value, error) {
	if ls, ok := left.(*engine.String); ok {
		rs, ok := right.(*engine.String)
		if !ok {
			return nil, engine.NewError(engine.KindType, e.Right.Span(),
				"cannot compare %s with %s", left.Type(), right.Type())
		}
		return orderResult(e, ls.Value < rs.Value, ls.Value > rs.Value, ls.Value == rs.Value)
	}
	_, lf, _, ok := asNumber(left)
	if !ok {
		return nil, engine.NewError(engine.KindType, e.Left.Span(), "expected a number, got %s", left.Type())
	}
	_, rf, _, ok := asNumber(right)
	if !ok {
		return nil, engine.NewError(engine.KindType, e.Right.Span(), "expected a number, got %s", right.Type())
	}
	return orderResult(e, lf < rf, lf > rf, lf == rf)
}

func orderResult(e *engine.BinaryOp, lt, gt, eq bool) (engine.Value, error) {
	var out bool
	switch e.Op {
	case "<":
		out = lt
	case ">":
		out = gt
	case "<=":
		out = lt || eq
	case ">=":
		out = gt || eq
	default:
		return nil, engine.NewError(engine.KindGeneric, e.ExpSpan, "unsupported operator %q", e.Op)
	}
	return &engine.Bool{Value: out, ValSpan: e.ExpSpan}, nil
}

func asNumber(v engine.Value) (i int64, f float64, isInt, ok bool) {
	switch n := v.(type) {
	case *engine.Int:
		return n.Value, float64(n.Value), true, true
	case *engine.Float:
		return 0, n.Value, false, true
	}
	return 0, 0, false, false
}
