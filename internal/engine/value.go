package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Type names as reported by Value.Type and used in error messages.
const (
	NothingType = "nothing"
	BoolType    = "bool"
	IntType     = "int"
	FloatType   = "float"
	StringType  = "string"
	ListType    = "list"
	RecordType  = "record"
	RangeType   = "range"
	ClosureType = "closure"
)

// Value is a runtime value flowing through pipelines and variable bindings.
type Value interface {
	Type() string
	Span() Span
	// String renders the display form shown by the shell.
	String() string
}

type Nothing struct {
	ValSpan Span
}

func (v *Nothing) Type() string   { return NothingType }
func (v *Nothing) Span() Span     { return v.ValSpan }
func (v *Nothing) String() string { return "" }

type Bool struct {
	Value   bool
	ValSpan Span
}

func (v *Bool) Type() string   { return BoolType }
func (v *Bool) Span() Span     { return v.ValSpan }
func (v *Bool) String() string { return strconv.FormatBool(v.Value) }

type Int struct {
	Value   int64
	ValSpan Span
}

func (v *Int) Type() string   { return IntType }
func (v *Int) Span() Span     { return v.ValSpan }
func (v *Int) String() string { return strconv.FormatInt(v.Value, 10) }

type Float struct {
	Value   float64
	ValSpan Span
}

func (v *Float) Type() string   { return FloatType }
func (v *Float) Span() Span     { return v.ValSpan }
func (v *Float) String() string { return strconv.FormatFloat(v.Value, 'g', -1, 64) }

type String struct {
	Value   string
	ValSpan Span
}

func (v *String) Type() string   { return StringType }
func (v *String) Span() Span     { return v.ValSpan }
func (v *String) String() string { return v.Value }

type List struct {
	Values  []Value
	ValSpan Span
}

func (v *List) Type() string { return ListType }
func (v *List) Span() Span   { return v.ValSpan }
func (v *List) String() string {
	parts := make([]string, len(v.Values))
	for i, item := range v.Values {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Record preserves field order, which matters for display and for help
// tables.
type Record struct {
	Cols    []string
	Vals    []Value
	ValSpan Span
}

func (v *Record) Type() string { return RecordType }
func (v *Record) Span() Span   { return v.ValSpan }
func (v *Record) String() string {
	parts := make([]string, len(v.Cols))
	for i, col := range v.Cols {
		parts[i] = fmt.Sprintf("%s: %s", col, v.Vals[i].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value of a column, if present.
func (v *Record) Get(col string) (Value, bool) {
	for i, c := range v.Cols {
		if c == col {
			return v.Vals[i], true
		}
	}
	return nil, false
}

// Range is an inclusive integer range. Step is +1 or -1 depending on the
// direction of the bounds.
type Range struct {
	From    int64
	To      int64
	ValSpan Span
}

func (v *Range) Type() string { return RangeType }
func (v *Range) Span() Span   { return v.ValSpan }
func (v *Range) String() string {
	return fmt.Sprintf("%d..%d", v.From, v.To)
}

// Iter returns a pull function yielding the range elements in order.
func (v *Range) Iter() func() (Value, bool) {
	cur := v.From
	step := int64(1)
	if v.To < v.From {
		step = -1
	}
	done := false
	return func() (Value, bool) {
		if done {
			return nil, false
		}
		out := &Int{Value: cur, ValSpan: v.ValSpan}
		if cur == v.To {
			done = true
		} else {
			cur += step
		}
		return out, true
	}
}

// Closure is a block plus the stack frame it captured at creation. Calling
// it pushes a child of that frame, so outer bindings stay visible without
// copying.
type Closure struct {
	Block    BlockID
	Captured *Stack
	ValSpan  Span
}

func (v *Closure) Type() string   { return ClosureType }
func (v *Closure) Span() Span     { return v.ValSpan }
func (v *Closure) String() string { return "<closure>" }

// IsTruthy implements the shell's condition semantics: false, nothing and
// zero-length collections are falsy, everything else is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case *Bool:
		return val.Value
	case *Nothing:
		return false
	case *List:
		return len(val.Values) > 0
	case *String:
		return len(val.Value) > 0
	default:
		return true
	}
}

// ValuesEqual compares two values structurally.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case *Nothing:
		_, ok := b.(*Nothing)
		return ok
	case *Bool:
		bv, ok := b.(*Bool)
		return ok && av.Value == bv.Value
	case *Int:
		switch bv := b.(type) {
		case *Int:
			return av.Value == bv.Value
		case *Float:
			return float64(av.Value) == bv.Value
		}
		return false
	case *Float:
		switch bv := b.(type) {
		case *Float:
			return av.Value == bv.Value
		case *Int:
			return av.Value == float64(bv.Value)
		}
		return false
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Values) != len(bv.Values) {
			return false
		}
		for i := range av.Values {
			if !ValuesEqual(av.Values[i], bv.Values[i]) {
				return false
			}
		}
		return true
	case *Record:
		bv, ok := b.(*Record)
		if !ok || len(av.Cols) != len(bv.Cols) {
			return false
		}
		for i, col := range av.Cols {
			other, found := bv.Get(col)
			if !found || !ValuesEqual(av.Vals[i], other) {
				return false
			}
		}
		return true
	case *Range:
		bv, ok := b.(*Range)
		return ok && av.From == bv.From && av.To == bv.To
	}
	return false
}

// AsInt unwraps an integer value.
func AsInt(v Value) (int64, error) {
	if i, ok := v.(*Int); ok {
		return i.Value, nil
	}
	return 0, NewError(KindType, v.Span(), "expected %s, got %s", IntType, v.Type())
}

// AsString unwraps a string value.
func AsString(v Value) (string, error) {
	if s, ok := v.(*String); ok {
		return s.Value, nil
	}
	return "", NewError(KindType, v.Span(), "expected %s, got %s", StringType, v.Type())
}

// AsClosure unwraps a closure value.
func AsClosure(v Value) (*Closure, error) {
	if c, ok := v.(*Closure); ok {
		return c, nil
	}
	return nil, NewError(KindType, v.Span(), "expected %s, got %s", ClosureType, v.Type())
}
