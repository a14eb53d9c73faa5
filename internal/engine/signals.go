package engine

import "sync/atomic"

// Signals is a shared cooperative cancellation flag. Clones share the same
// underlying flag, so a stream handed to another stage still observes an
// interrupt raised on the engine state. The zero value never reports an
// interrupt, which is what detached helpers want.
type Signals struct {
	interrupt *atomic.Bool
}

// NewSignals returns a fresh, un-raised signal.
func NewSignals() Signals {
	return Signals{interrupt: new(atomic.Bool)}
}

// EmptySignals returns a signal that can never be raised.
func EmptySignals() Signals { return Signals{} }

// Trigger raises the interrupt flag.
func (s Signals) Trigger() {
	if s.interrupt != nil {
		s.interrupt.Store(true)
	}
}

// Reset lowers the flag so the next evaluation starts clean.
func (s Signals) Reset() {
	if s.interrupt != nil {
		s.interrupt.Store(false)
	}
}

// Interrupted reports whether the flag has been raised.
func (s Signals) Interrupted() bool {
	return s.interrupt != nil && s.interrupt.Load()
}

// Check polls the flag and returns an interrupted failure attributed to
// span when it is raised. It is called at the top of each loop iteration
// and on each stream pull, never mid-expression.
func (s Signals) Check(span Span) error {
	if s.Interrupted() {
		return NewError(KindInterrupted, span, "operation interrupted")
	}
	return nil
}
