package engine

import (
	"reflect"
	"testing"
)

func TestChildScopeDoesNotLeakVariables(t *testing.T) {
	root := NewStack()
	root.AddVar(VarID(0), &Int{Value: 1})

	child := root.Child()
	child.AddVar(VarID(1), &Int{Value: 2})

	if _, err := child.GetVar(VarID(0), UnknownSpan()); err != nil {
		t.Fatalf("child should see parent bindings: %v", err)
	}
	if _, err := root.GetVar(VarID(1), UnknownSpan()); err == nil {
		t.Fatal("parent should not see child bindings")
	}
}

func TestChildRebindShadowsParent(t *testing.T) {
	root := NewStack()
	root.AddVar(VarID(0), &Int{Value: 1})

	child := root.Child()
	child.AddVar(VarID(0), &Int{Value: 99})

	v, err := child.GetVar(VarID(0), UnknownSpan())
	if err != nil {
		t.Fatal(err)
	}
	if v.(*Int).Value != 99 {
		t.Fatalf("child read %d, want 99", v.(*Int).Value)
	}

	v, err = root.GetVar(VarID(0), UnknownSpan())
	if err != nil {
		t.Fatal(err)
	}
	if v.(*Int).Value != 1 {
		t.Fatalf("parent binding changed to %d, want 1", v.(*Int).Value)
	}
}

func TestEnvResolutionFallsBackToState(t *testing.T) {
	state := NewEngineState()
	state.AddEnvVar("HOME_PLANET", &String{Value: "earth"})

	root := NewStack()
	child := root.Child()
	child.AddEnvVar("HOME_PLANET", &String{Value: "mars"})

	if v, ok := child.GetEnvVar(state, "HOME_PLANET"); !ok || v.(*String).Value != "mars" {
		t.Fatalf("child env: got (%v, %v), want mars", v, ok)
	}
	if v, ok := root.GetEnvVar(state, "HOME_PLANET"); !ok || v.(*String).Value != "earth" {
		t.Fatalf("root env should fall back to state: got (%v, %v)", v, ok)
	}
	if _, ok := root.GetEnvVar(state, "MISSING"); ok {
		t.Fatal("unknown env var should not resolve")
	}
}

func TestOverlayActivationMovesToTop(t *testing.T) {
	s := NewStack()
	s.AddOverlay("a")
	s.AddOverlay("b")
	s.AddOverlay("a")

	want := []string{"zero", "b", "a"}
	if got := s.ActiveOverlays(); !reflect.DeepEqual(got, want) {
		t.Fatalf("active order: got %v, want %v", got, want)
	}

	s.RemoveOverlay("b")
	want = []string{"zero", "a"}
	if got := s.ActiveOverlays(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after remove: got %v, want %v", got, want)
	}
	if s.IsOverlayActive("b") {
		t.Fatal("b should be inactive")
	}
}

func TestChildOverlayChangesStayInChild(t *testing.T) {
	root := NewStack()
	child := root.Child()
	child.AddOverlay("spam")

	if !child.IsOverlayActive("spam") {
		t.Fatal("child should have spam active")
	}
	if root.IsOverlayActive("spam") {
		t.Fatal("overlay activation leaked into the parent")
	}
}
