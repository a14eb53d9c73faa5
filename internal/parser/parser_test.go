package parser

import (
	"strings"
	"testing"

	"github.com/PoopyPooOS/nushell/internal/engine"
)

type stubCommand struct {
	name string
	sig  *engine.Signature
}

func (c stubCommand) Name() string                    { return c.name }
func (c stubCommand) Description() string             { return "stub" }
func (c stubCommand) CommandType() engine.CommandType { return engine.NormalCommand }
func (c stubCommand) Signature() *engine.Signature {
	if c.sig != nil {
		return c.sig
	}
	return engine.NewSignature(c.name)
}
func (c stubCommand) Run(*engine.EngineState, *engine.Stack, *engine.Call, engine.PipelineData) (engine.PipelineData, error) {
	return engine.Empty{}, nil
}

// newTestState commits the keyword decls and a few stubs the parser needs
// to resolve calls against.
func newTestState(t *testing.T) *engine.EngineState {
	t.Helper()
	state := engine.NewEngineState()
	ws := engine.NewWorkingSet(state)

	stubs := []stubCommand{
		{name: "let", sig: engine.NewSignature("let").
			Required("var", engine.ShapeVarName, "").
			Required("value", engine.ShapeAny, "")},
		{name: "def", sig: engine.NewSignature("def").
			Required("name", engine.ShapeString, "")},
		{name: "for"}, {name: "while"}, {name: "loop"}, {name: "if"},
		{name: "break"}, {name: "continue"},
		{name: "return", sig: engine.NewSignature("return").
			Optional("value", engine.ShapeAny, "")},
		{name: "echo", sig: engine.NewSignature("echo").
			Rest("values", engine.ShapeAny, "")},
		{name: "overlay new", sig: engine.NewSignature("overlay new").
			Required("name", engine.ShapeString, "")},
		{name: "every", sig: engine.NewSignature("every").
			Required("stride", engine.ShapeInt, "").
			Switch("skip", "s", "")},
	}
	for _, cmd := range stubs {
		id := ws.AddDecl(cmd)
		ws.AddDeclBinding("zero", cmd.name, id)
	}
	if err := state.MergeDelta(ws.Render()); err != nil {
		t.Fatalf("staging stub commands: %v", err)
	}
	return state
}

func parseSource(t *testing.T, state *engine.EngineState, src string) (*engine.StateWorkingSet, *engine.Block, error) {
	t.Helper()
	ws := engine.NewWorkingSet(state)
	id, err := Parse(ws, nil, "test", []byte(src))
	return ws, ws.GetBlock(id), err
}

func TestParseLetAndVarRef(t *testing.T) {
	state := newTestState(t)
	_, block, err := parseSource(t, state, "let x = 1 + 2\n$x")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(block.Pipelines) != 2 {
		t.Fatalf("got %d pipelines, want 2", len(block.Pipelines))
	}

	call, ok := block.Pipelines[0].Elements[0].(*engine.CallExpr)
	if !ok {
		t.Fatalf("first element is %T, want *CallExpr", block.Pipelines[0].Elements[0])
	}
	decl, ok := call.Call.Pos(0).(*engine.VarDecl)
	if !ok || decl.Name != "x" {
		t.Fatalf("let target: got %T, want VarDecl x", call.Call.Pos(0))
	}
	if _, ok := call.Call.Pos(1).(*engine.BinaryOp); !ok {
		t.Fatalf("let value: got %T, want *BinaryOp", call.Call.Pos(1))
	}

	ref, ok := block.Pipelines[1].Elements[0].(*engine.VarRef)
	if !ok {
		t.Fatalf("second pipeline: got %T, want *VarRef", block.Pipelines[1].Elements[0])
	}
	if ref.ID != decl.ID {
		t.Fatalf("reference resolved to id %d, want %d", ref.ID, decl.ID)
	}
}

func TestTopLevelLetIsStagedIntoOverlay(t *testing.T) {
	state := newTestState(t)
	ws, _, err := parseSource(t, state, "let answer = 42")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, ok := ws.FindVariable("answer", []string{"zero"}); !ok {
		t.Fatal("top-level let should stage an overlay binding")
	}
	// Not visible to other evaluators before the merge.
	if _, ok := state.FindVariable("answer", []string{"zero"}); ok {
		t.Fatal("binding leaked into the committed state before merge")
	}
}

func TestParseMultiWordCommand(t *testing.T) {
	state := newTestState(t)
	ws, block, err := parseSource(t, state, "overlay new spam")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	call := block.Pipelines[0].Elements[0].(*engine.CallExpr).Call
	if got := ws.GetDecl(call.Decl).Name(); got != "overlay new" {
		t.Fatalf("resolved %q, want %q", got, "overlay new")
	}
	arg, ok := call.Pos(0).(*engine.StringLiteral)
	if !ok || arg.Value != "spam" {
		t.Fatalf("argument: got %#v, want spam", call.Pos(0))
	}
}

func TestParseFlags(t *testing.T) {
	state := newTestState(t)
	_, block, err := parseSource(t, state, "every 2 --skip")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	call := block.Pipelines[0].Elements[0].(*engine.CallExpr).Call
	if !call.HasNamed("skip") {
		t.Fatal("--skip not recorded")
	}
	if call.Named["skip"] != nil {
		t.Fatal("switch flag should carry no value expression")
	}
}

func TestParsePipelineAcrossNewlines(t *testing.T) {
	state := newTestState(t)
	_, block, err := parseSource(t, state, "echo 1 2 |\n  echo")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(block.Pipelines) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(block.Pipelines))
	}
	if len(block.Pipelines[0].Elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(block.Pipelines[0].Elements))
	}
}

func TestParseForLoop(t *testing.T) {
	state := newTestState(t)
	ws, block, err := parseSource(t, state, "for x in 1..3 { echo $x }")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	call := block.Pipelines[0].Elements[0].(*engine.CallExpr).Call

	decl, ok := call.Pos(0).(*engine.VarDecl)
	if !ok || decl.Name != "x" {
		t.Fatalf("loop variable: got %#v", call.Pos(0))
	}
	if _, ok := call.Pos(1).(*engine.RangeLiteral); !ok {
		t.Fatalf("iterable: got %T, want *RangeLiteral", call.Pos(1))
	}
	body, ok := call.Pos(2).(*engine.BlockExpr)
	if !ok {
		t.Fatalf("body: got %T, want *BlockExpr", call.Pos(2))
	}

	inner := ws.GetBlock(body.ID)
	ref := inner.Pipelines[0].Elements[0].(*engine.CallExpr).Call.Pos(0).(*engine.VarRef)
	if ref.ID != decl.ID {
		t.Fatalf("body reference resolved to %d, want loop var %d", ref.ID, decl.ID)
	}
}

func TestLoopVariableScopesToBody(t *testing.T) {
	state := newTestState(t)
	_, _, err := parseSource(t, state, "for x in 1..3 { echo $x }\n$x")
	if err == nil {
		t.Fatal("loop variable should not be visible after the loop")
	}
	if !strings.Contains(err.Error(), "$x not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseDefStagesDecl(t *testing.T) {
	state := newTestState(t)
	ws, _, err := parseSource(t, state, "def greet [who] { echo $who }\ngreet world")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	id, ok := ws.FindDecl("greet", []string{"zero"})
	if !ok {
		t.Fatal("def should stage the command for the rest of the unit")
	}
	cmd, ok := ws.GetDecl(id).(*engine.BlockCommand)
	if !ok {
		t.Fatalf("staged decl is %T, want *BlockCommand", ws.GetDecl(id))
	}
	if len(cmd.Sig.Positional) != 1 || cmd.Sig.Positional[0].Name != "who" {
		t.Fatalf("signature positional: %+v", cmd.Sig.Positional)
	}
}

func TestParseClosureAndRecord(t *testing.T) {
	state := newTestState(t)
	ws, block, err := parseSource(t, state, "echo {|x| $x} {name: \"nush\", port: 8080}")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	call := block.Pipelines[0].Elements[0].(*engine.CallExpr).Call

	closure, ok := call.Pos(0).(*engine.BlockExpr)
	if !ok {
		t.Fatalf("first arg: got %T, want *BlockExpr", call.Pos(0))
	}
	if params := ws.GetBlock(closure.ID).Params; len(params) != 1 || params[0].Name != "x" {
		t.Fatalf("closure params: %+v", params)
	}

	rec, ok := call.Pos(1).(*engine.RecordLiteral)
	if !ok {
		t.Fatalf("second arg: got %T, want *RecordLiteral", call.Pos(1))
	}
	if len(rec.Cols) != 2 || rec.Cols[0] != "name" || rec.Cols[1] != "port" {
		t.Fatalf("record keys: %v", rec.Cols)
	}
}

func TestParseErrors(t *testing.T) {
	state := newTestState(t)
	tests := []struct {
		src     string
		wantMsg string
	}{
		{"frobnicate 1", "unknown command"},
		{"$nope", "not found"},
		{"echo --bogus", "no flag"},
		{"overlay new", "requires 1 positional"},
		{"let x 1", "expected ="},
		{"for x of 1..3 { }", `expected "in"`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, _, err := parseSource(t, state, tt.src)
			if err == nil {
				t.Fatalf("expected parse error for %q", tt.src)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
