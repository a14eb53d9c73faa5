package eval

import (
	"strings"
	"testing"

	"github.com/PoopyPooOS/nushell/internal/engine"
)

func lit(v int64) engine.Expression    { return &engine.IntLiteral{Value: v} }
func flit(v float64) engine.Expression { return &engine.FloatLiteral{Value: v} }
func slit(v string) engine.Expression  { return &engine.StringLiteral{Value: v} }

func TestEvalBinaryOps(t *testing.T) {
	state := engine.NewEngineState()
	stack := engine.NewStack()

	tests := []struct {
		name string
		expr *engine.BinaryOp
		want engine.Value
	}{
		{"int add", &engine.BinaryOp{Op: "+", Left: lit(40), Right: lit(2)}, &engine.Int{Value: 42}},
		{"int divide truncates", &engine.BinaryOp{Op: "/", Left: lit(7), Right: lit(2)}, &engine.Int{Value: 3}},
		{"mixed promotes to float", &engine.BinaryOp{Op: "*", Left: lit(2), Right: flit(1.5)}, &engine.Float{Value: 3}},
		{"string concat", &engine.BinaryOp{Op: "+", Left: slit("nu"), Right: slit("sh")}, &engine.String{Value: "nush"}},
		{"int float equality", &engine.BinaryOp{Op: "==", Left: lit(2), Right: flit(2)}, &engine.Bool{Value: true}},
		{"less than", &engine.BinaryOp{Op: "<", Left: lit(1), Right: lit(2)}, &engine.Bool{Value: true}},
		{"ge on strings", &engine.BinaryOp{Op: ">=", Left: slit("b"), Right: slit("a")}, &engine.Bool{Value: true}},
		{"not equal", &engine.BinaryOp{Op: "!=", Left: slit("a"), Right: lit(1)}, &engine.Bool{Value: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalExpression(state, stack, tt.expr)
			if err != nil {
				t.Fatal(err)
			}
			if !engine.ValuesEqual(got, tt.want) {
				t.Fatalf("got %s (%s), want %s", got, got.Type(), tt.want)
			}
		})
	}
}

func TestEvalBinaryOpErrors(t *testing.T) {
	state := engine.NewEngineState()
	stack := engine.NewStack()

	tests := []struct {
		name    string
		expr    *engine.BinaryOp
		wantMsg string
	}{
		{"division by zero", &engine.BinaryOp{Op: "/", Left: lit(1), Right: lit(0)}, "division by zero"},
		{"string arithmetic", &engine.BinaryOp{Op: "-", Left: slit("a"), Right: lit(1)}, "expected a number"},
		{"mixed comparison", &engine.BinaryOp{Op: "<", Left: slit("a"), Right: lit(1)}, "cannot compare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvalExpression(state, stack, tt.expr)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestEvalLiterals(t *testing.T) {
	state := engine.NewEngineState()
	stack := engine.NewStack()

	v, err := EvalExpression(state, stack, &engine.ListLiteral{Items: []engine.Expression{lit(1), slit("two")}})
	if err != nil {
		t.Fatal(err)
	}
	list := v.(*engine.List)
	if len(list.Values) != 2 || list.Values[1].String() != "two" {
		t.Fatalf("list literal: got %s", list)
	}

	v, err = EvalExpression(state, stack, &engine.RangeLiteral{From: lit(1), To: lit(3)})
	if err != nil {
		t.Fatal(err)
	}
	if r := v.(*engine.Range); r.From != 1 || r.To != 3 {
		t.Fatalf("range literal: got %s", r)
	}

	rec, err := EvalExpression(state, stack, &engine.RecordLiteral{
		Cols: []string{"name"},
		Vals: []engine.Expression{slit("nush")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := rec.(*engine.Record).Get("name"); got.String() != "nush" {
		t.Fatalf("record literal: got %s", rec)
	}
}

func TestBlockExprCapturesStack(t *testing.T) {
	state := engine.NewEngineState()
	stack := engine.NewStack()

	v, err := EvalExpression(state, stack, &engine.BlockExpr{ID: 0})
	if err != nil {
		t.Fatal(err)
	}
	closure := v.(*engine.Closure)
	if closure.Captured != stack {
		t.Fatal("closure should capture the evaluating stack frame")
	}
}

func TestVarRefReadsStack(t *testing.T) {
	state := engine.NewEngineState()
	stack := engine.NewStack()
	stack.AddVar(engine.VarID(0), &engine.Int{Value: 9})

	v, err := EvalExpression(state, stack, &engine.VarRef{ID: 0})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := engine.AsInt(v); n != 9 {
		t.Fatalf("got %d, want 9", n)
	}

	if _, err := EvalExpression(state, stack, &engine.VarRef{ID: 42}); err == nil {
		t.Fatal("unbound variable should error")
	}
}
