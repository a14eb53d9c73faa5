package engine

import "fmt"

// ErrorKind classifies genuine failures. Control-flow signals (break,
// continue, return) are separate error types and never carry a kind.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindParse
	KindCommandNotFound
	KindVariableNotFound
	KindOverlayNotFound
	KindType
	KindMissingParameter
	KindInterrupted
	KindMerge
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindCommandNotFound:
		return "command not found"
	case KindVariableNotFound:
		return "variable not found"
	case KindOverlayNotFound:
		return "overlay not found"
	case KindType:
		return "type mismatch"
	case KindMissingParameter:
		return "missing parameter"
	case KindInterrupted:
		return "interrupted"
	case KindMerge:
		return "merge failed"
	case KindIO:
		return "i/o error"
	default:
		return "error"
	}
}

// Error is the genuine-failure family. It shares the error propagation
// channel with the control signals below but is never absorbed by loop or
// closure boundaries: it aborts the enclosing block and surfaces to the
// caller with its span.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    Span
	Help    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a failure with source attribution.
func NewError(kind ErrorKind, span Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

// IsInterrupted reports whether err is a cancellation failure, so callers
// can tell user-triggered interruption apart from program bugs.
func IsInterrupted(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindInterrupted
}

// BreakSignal unwinds to the nearest enclosing loop, which absorbs it and
// exits. Anywhere else it is a user error; its Error text doubles as the
// diagnostic for that case.
type BreakSignal struct {
	Span Span
}

func (s *BreakSignal) Error() string { return "break used outside of a loop" }

// ContinueSignal unwinds to the nearest enclosing loop, which absorbs it
// and advances to the next iteration.
type ContinueSignal struct {
	Span Span
}

func (s *ContinueSignal) Error() string { return "continue used outside of a loop" }

// ReturnSignal unwinds to the nearest function or closure boundary, which
// absorbs it and yields Value as the block result.
type ReturnSignal struct {
	Span  Span
	Value Value
}

func (s *ReturnSignal) Error() string { return "return used outside of a function" }

// IsControlSignal reports whether err is one of the three unwind signals.
// Every frame that is not a loop body or function boundary must propagate
// these unchanged.
func IsControlSignal(err error) bool {
	switch err.(type) {
	case *BreakSignal, *ContinueSignal, *ReturnSignal:
		return true
	}
	return false
}
