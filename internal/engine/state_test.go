package engine

import (
	"testing"
)

type stubCommand struct {
	name string
}

func (c stubCommand) Name() string             { return c.name }
func (c stubCommand) Description() string      { return "stub" }
func (c stubCommand) Signature() *Signature    { return NewSignature(c.name) }
func (c stubCommand) CommandType() CommandType { return NormalCommand }
func (c stubCommand) Run(*EngineState, *Stack, *Call, PipelineData) (PipelineData, error) {
	return Empty{}, nil
}

func TestMergeDeltaCommitsStagedDefinitions(t *testing.T) {
	state := NewEngineState()
	ws := NewWorkingSet(state)

	declID := ws.AddDecl(stubCommand{name: "greet"})
	ws.AddDeclBinding("zero", "greet", declID)
	varID := ws.AddVariable("x", UnknownSpan())
	ws.AddVarBinding("zero", "x", varID)

	if err := state.MergeDelta(ws.Render()); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	got, ok := state.FindDecl("greet", []string{"zero"})
	if !ok || got != declID {
		t.Fatalf("FindDecl after merge: got (%d, %v), want (%d, true)", got, ok, declID)
	}
	gotVar, ok := state.FindVariable("x", []string{"zero"})
	if !ok || gotVar != varID {
		t.Fatalf("FindVariable after merge: got (%d, %v), want (%d, true)", gotVar, ok, varID)
	}
}

func TestMergeDeltaRejectsForeignDelta(t *testing.T) {
	base := NewEngineState()
	ws := NewWorkingSet(base)
	ws.AddDecl(stubCommand{name: "greet"})

	// Advance the base so the delta's base counts no longer match.
	other := NewWorkingSet(base)
	other.AddDecl(stubCommand{name: "interloper"})
	if err := base.MergeDelta(other.Render()); err != nil {
		t.Fatalf("setup merge failed: %v", err)
	}

	err := base.MergeDelta(ws.Render())
	if err == nil {
		t.Fatal("expected stale delta to be rejected")
	}
	if base.NumDecls() != 1 {
		t.Fatalf("failed merge mutated state: NumDecls=%d, want 1", base.NumDecls())
	}
}

func TestMergeDeltaIsAtomicOnInvalidEntry(t *testing.T) {
	tests := []struct {
		name  string
		stage func(ws *StateWorkingSet)
	}{
		{"binding to unknown overlay", func(ws *StateWorkingSet) {
			id := ws.AddDecl(stubCommand{name: "a"})
			ws.AddDeclBinding("ghost", "a", id)
		}},
		{"binding to out-of-range var id", func(ws *StateWorkingSet) {
			ws.AddDecl(stubCommand{name: "a"})
			ws.AddVarBinding("zero", "x", VarID(9999))
		}},
		{"block referencing unknown decl", func(ws *StateWorkingSet) {
			ws.AddDecl(stubCommand{name: "a"})
			ws.AddBlock(&Block{Pipelines: []*Pipeline{{Elements: []Expression{
				&CallExpr{Call: &Call{Decl: DeclID(9999)}},
			}}}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewEngineState()
			decls, blocks, vars := state.NumDecls(), state.NumBlocks(), state.NumVars()

			ws := NewWorkingSet(state)
			tt.stage(ws)
			err := state.MergeDelta(ws.Render())
			if err == nil {
				t.Fatal("expected merge to fail")
			}
			if state.NumDecls() != decls || state.NumBlocks() != blocks || state.NumVars() != vars {
				t.Fatalf("failed merge changed counts: decls %d->%d, blocks %d->%d, vars %d->%d",
					decls, state.NumDecls(), blocks, state.NumBlocks(), vars, state.NumVars())
			}
		})
	}
}

func TestWorkingSetResolvesStagedBeforeCommitted(t *testing.T) {
	state := NewEngineState()
	setup := NewWorkingSet(state)
	oldID := setup.AddDecl(stubCommand{name: "greet"})
	setup.AddDeclBinding("zero", "greet", oldID)
	if err := state.MergeDelta(setup.Render()); err != nil {
		t.Fatalf("setup merge failed: %v", err)
	}

	ws := NewWorkingSet(state)
	newID := ws.AddDecl(stubCommand{name: "greet"})
	ws.AddDeclBinding("zero", "greet", newID)

	got, ok := ws.FindDecl("greet", []string{"zero"})
	if !ok || got != newID {
		t.Fatalf("staged binding should shadow committed one: got (%d, %v), want (%d, true)", got, ok, newID)
	}
	// The committed state is untouched until the merge.
	got, ok = state.FindDecl("greet", []string{"zero"})
	if !ok || got != oldID {
		t.Fatalf("committed state changed before merge: got (%d, %v), want (%d, true)", got, ok, oldID)
	}
}

func TestStagedOverlayShadowsCommittedFrame(t *testing.T) {
	state := NewEngineState()
	setup := NewWorkingSet(state)
	if _, err := setup.AddOverlay("spam"); err != nil {
		t.Fatal(err)
	}
	id := setup.AddDecl(stubCommand{name: "greet"})
	setup.AddDeclBinding("spam", "greet", id)
	if err := state.MergeDelta(setup.Render()); err != nil {
		t.Fatalf("setup merge failed: %v", err)
	}

	// A fresh staged frame for the same name hides the committed bindings
	// within the working set.
	ws := NewWorkingSet(state)
	if _, err := ws.AddOverlay("spam"); err != nil {
		t.Fatal(err)
	}
	if _, ok := ws.FindDecl("greet", []string{"spam"}); ok {
		t.Fatal("staged fresh frame should shadow the committed binding")
	}
}

func TestOverlayBindingsSurviveDeactivation(t *testing.T) {
	state := NewEngineState()
	ws := NewWorkingSet(state)
	if _, err := ws.AddOverlay("spam"); err != nil {
		t.Fatal(err)
	}
	id := ws.AddDecl(stubCommand{name: "greet"})
	ws.AddDeclBinding("spam", "greet", id)
	if err := state.MergeDelta(ws.Render()); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	stack := NewStack()
	stack.AddOverlay("spam")
	if _, ok := state.FindDecl("greet", stack.ActiveOverlays()); !ok {
		t.Fatal("decl not visible while overlay active")
	}

	stack.RemoveOverlay("spam")
	if _, ok := state.FindDecl("greet", stack.ActiveOverlays()); ok {
		t.Fatal("decl still visible after overlay deactivated")
	}

	stack.AddOverlay("spam")
	if _, ok := state.FindDecl("greet", stack.ActiveOverlays()); !ok {
		t.Fatal("decl lost after re-activation, bindings should be retained")
	}
}

func TestActiveOrderResolvesTopDown(t *testing.T) {
	state := NewEngineState()
	ws := NewWorkingSet(state)
	if _, err := ws.AddOverlay("spam"); err != nil {
		t.Fatal(err)
	}
	zeroID := ws.AddDecl(stubCommand{name: "greet"})
	ws.AddDeclBinding("zero", "greet", zeroID)
	spamID := ws.AddDecl(stubCommand{name: "greet"})
	ws.AddDeclBinding("spam", "greet", spamID)
	if err := state.MergeDelta(ws.Render()); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if got, _ := state.FindDecl("greet", []string{"zero", "spam"}); got != spamID {
		t.Fatalf("top overlay should win: got %d, want %d", got, spamID)
	}
	if got, _ := state.FindDecl("greet", []string{"spam", "zero"}); got != zeroID {
		t.Fatalf("after reordering: got %d, want %d", got, zeroID)
	}
}

func TestAddFileAssignsDisjointSourceRanges(t *testing.T) {
	state := NewEngineState()

	ws := NewWorkingSet(state)
	first := ws.AddFile("one", []byte("let x = 1"))
	if err := state.MergeDelta(ws.Render()); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	ws = NewWorkingSet(state)
	second := ws.AddFile("two", []byte("$x"))
	if second.Start != first.End {
		t.Fatalf("second file should start where the first ended: got %d, want %d", second.Start, first.End)
	}
	if err := state.MergeDelta(ws.Render()); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	file, ok := state.FileForSpan(Span{Start: second.Start + 1, End: second.Start + 2})
	if !ok || file.Name != "two" {
		t.Fatalf("FileForSpan: got (%q, %v), want (two, true)", file.Name, ok)
	}
}
