package embed_test

import (
	"reflect"
	"testing"

	"github.com/PoopyPooOS/nushell/pkg/embed"
)

func newEngine(t *testing.T) *embed.Engine {
	t.Helper()
	e, err := embed.New()
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	return e
}

func TestEvalArithmetic(t *testing.T) {
	e := newEngine(t)
	got, err := e.Eval("40 + 2")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Fatalf("got %v (%T), want 42", got, got)
	}
}

func TestStatePersistsAcrossEvals(t *testing.T) {
	e := newEngine(t)
	if _, err := e.Eval("let x = 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Eval("def double [n] { return $n + $n }"); err != nil {
		t.Fatal(err)
	}
	got, err := e.Eval("double ($x + 20)")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestRegisterCommand(t *testing.T) {
	e := newEngine(t)
	err := e.RegisterCommand("triple", "triples a number", []string{"n"}, func(args []any, input any) (any, error) {
		return args[0].(int64) * 3, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.Eval("triple 14")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestSetInputFeedsPipeline(t *testing.T) {
	e := newEngine(t)
	if err := e.SetInput([]any{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	got, err := e.Eval("each {|x| $x * 2} | collect")
	if err != nil {
		t.Fatal(err)
	}
	want := []any{int64(2), int64(4), int64(6)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// The queued input is consumed by one Eval only.
	got, err = e.Eval("length")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(0) {
		t.Fatalf("second eval saw stale input: %v", got)
	}
}

func TestTopLevelReturnYieldsValue(t *testing.T) {
	e := newEngine(t)
	got, err := e.Eval("return 9")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(9) {
		t.Fatalf("got %v, want 9", got)
	}
}

func TestRecordsConvertToMaps(t *testing.T) {
	e := newEngine(t)
	got, err := e.Eval(`{name: "nush", port: 8080}`)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"name": "nush", "port": int64(8080)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalReportsParseErrors(t *testing.T) {
	e := newEngine(t)
	if _, err := e.Eval("definitely-not-a-command"); err == nil {
		t.Fatal("expected an unknown-command error")
	}
}
