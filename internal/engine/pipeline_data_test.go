package engine

import (
	"errors"
	"testing"
)

func intValues(ns ...int64) []Value {
	out := make([]Value, len(ns))
	for i, n := range ns {
		out[i] = &Int{Value: n}
	}
	return out
}

func TestListStreamExhaustion(t *testing.T) {
	s := StreamValues(UnknownSpan(), NewSignals(), intValues(1, 2))

	for want := int64(1); want <= 2; want++ {
		v, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if v.(*Int).Value != want {
			t.Fatalf("got %d, want %d", v.(*Int).Value, want)
		}
	}
	for i := 0; i < 2; i++ {
		v, err := s.Next()
		if v != nil || err != nil {
			t.Fatalf("exhausted stream should keep returning (nil, nil), got (%v, %v)", v, err)
		}
	}
}

func TestListStreamStopsOnInterrupt(t *testing.T) {
	signals := NewSignals()
	s := StreamValues(UnknownSpan(), signals, intValues(1, 2, 3))

	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}
	signals.Trigger()
	_, err := s.Next()
	if !IsInterrupted(err) {
		t.Fatalf("want interrupted failure, got %v", err)
	}
	// The stream is dead afterwards, even if the flag is reset.
	signals.Reset()
	if v, err := s.Next(); v != nil || err != nil {
		t.Fatalf("interrupted stream should be exhausted, got (%v, %v)", v, err)
	}
}

func TestMapPreservesMetadataAndSurfacesErrors(t *testing.T) {
	src := StreamValues(UnknownSpan(), NewSignals(), intValues(1, 2, 3))
	src.WithMetadata(&Metadata{ContentType: "application/json", Source: "test"})

	boom := errors.New("boom")
	mapped := src.Map(func(v Value) (Value, error) {
		if v.(*Int).Value == 2 {
			return nil, boom
		}
		return v, nil
	})

	if meta := mapped.Metadata(); meta == nil || meta.ContentType != "application/json" {
		t.Fatalf("metadata not preserved: %+v", meta)
	}

	v, err := mapped.Next()
	if err != nil || v.(*Int).Value != 1 {
		t.Fatalf("first pull: got (%v, %v)", v, err)
	}
	if _, err := mapped.Next(); err != boom {
		t.Fatalf("second pull should surface the stage error, got %v", err)
	}
}

func TestWhereDropsElements(t *testing.T) {
	src := StreamValues(UnknownSpan(), NewSignals(), intValues(1, 2, 3, 4))
	odd := src.Where(func(v Value) (bool, error) {
		return v.(*Int).Value%2 == 1, nil
	})

	out, err := odd.IntoValue(UnknownSpan())
	if err != nil {
		t.Fatal(err)
	}
	list := out.(*List)
	if len(list.Values) != 2 || list.Values[0].(*Int).Value != 1 || list.Values[1].(*Int).Value != 3 {
		t.Fatalf("got %s, want [1, 3]", list)
	}
}

func TestIterateData(t *testing.T) {
	signals := NewSignals()

	t.Run("list fans out", func(t *testing.T) {
		s := IterateData(ValueData{Value: &List{Values: intValues(1, 2)}}, UnknownSpan(), signals)
		count := 0
		for {
			v, err := s.Next()
			if err != nil {
				t.Fatal(err)
			}
			if v == nil {
				break
			}
			count++
		}
		if count != 2 {
			t.Fatalf("got %d elements, want 2", count)
		}
	})

	t.Run("range iterates lazily", func(t *testing.T) {
		s := IterateData(ValueData{Value: &Range{From: 3, To: 1}}, UnknownSpan(), signals)
		var got []int64
		for {
			v, err := s.Next()
			if err != nil {
				t.Fatal(err)
			}
			if v == nil {
				break
			}
			got = append(got, v.(*Int).Value)
		}
		if len(got) != 3 || got[0] != 3 || got[2] != 1 {
			t.Fatalf("descending range: got %v, want [3 2 1]", got)
		}
	})

	t.Run("scalar iterates once", func(t *testing.T) {
		s := IterateData(ValueData{Value: &Int{Value: 7}}, UnknownSpan(), signals)
		v, err := s.Next()
		if err != nil || v.(*Int).Value != 7 {
			t.Fatalf("got (%v, %v), want 7", v, err)
		}
		if v, _ := s.Next(); v != nil {
			t.Fatal("scalar stream should have exactly one element")
		}
	})

	t.Run("metadata rides through", func(t *testing.T) {
		meta := &Metadata{Source: "somewhere"}
		s := IterateData(ValueData{Value: &List{Values: intValues(1)}, Meta: meta}, UnknownSpan(), signals)
		if s.Metadata() != meta {
			t.Fatal("metadata lost when fanning out a list")
		}
	})
}

func TestEmptyIntoValueIsNothing(t *testing.T) {
	v, err := Empty{}.IntoValue(UnknownSpan())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(*Nothing); !ok {
		t.Fatalf("got %T, want *Nothing", v)
	}
}
