package engine

import "github.com/PoopyPooOS/nushell/internal/config"

// Stack is the per-execution environment: variable bindings, scoped
// environment variables and the active-overlay order. Pushing a child is
// O(1) and never mutates the parent, so a failed block can simply drop its
// frame and the caller's scope is intact. Stacks are never shared across
// concurrent execution contexts; each independent evaluation owns its own
// stack over a shared engine state.
type Stack struct {
	parent   *Stack
	vars     map[VarID]Value
	env      map[string]Value
	overlays []string
}

// NewStack makes a root stack with the default overlay active.
func NewStack() *Stack {
	return &Stack{
		vars:     map[VarID]Value{},
		env:      map[string]Value{},
		overlays: []string{config.DefaultOverlayName},
	}
}

// NewStackWithOverlays makes a root stack with a given active order, used
// when branching an independent execution (e.g. a background job) off the
// current context.
func NewStackWithOverlays(order []string) *Stack {
	s := NewStack()
	s.overlays = append([]string(nil), order...)
	return s
}

// Child pushes a fresh scope. Variable and environment writes in the child
// stay in the child; reads fall through to the parent chain. Loop bodies
// get one child per iteration so nothing leaks into the next iteration's
// starting state.
func (s *Stack) Child() *Stack {
	return &Stack{
		parent:   s,
		vars:     map[VarID]Value{},
		env:      map[string]Value{},
		overlays: append([]string(nil), s.overlays...),
	}
}

// AddVar binds a variable in the current frame.
func (s *Stack) AddVar(id VarID, v Value) {
	s.vars[id] = v
}

// GetVar resolves a variable through the frame chain.
func (s *Stack) GetVar(id VarID, span Span) (Value, error) {
	for frame := s; frame != nil; frame = frame.parent {
		if v, ok := frame.vars[id]; ok {
			return v, nil
		}
	}
	return nil, NewError(KindVariableNotFound, span, "variable with id %d not found on the stack", id)
}

// AddEnvVar sets an environment variable in the current frame only.
func (s *Stack) AddEnvVar(name string, v Value) {
	s.env[name] = v
}

// GetEnvVar resolves an environment variable through the frame chain and
// falls back to the engine state's globals.
func (s *Stack) GetEnvVar(state *EngineState, name string) (Value, bool) {
	for frame := s; frame != nil; frame = frame.parent {
		if v, ok := frame.env[name]; ok {
			return v, true
		}
	}
	if state != nil {
		return state.GetEnvVar(name)
	}
	return nil, false
}

// AddOverlay activates an overlay at the top of the active order. If it was
// already active it moves to the top instead of being duplicated.
func (s *Stack) AddOverlay(name string) {
	s.RemoveOverlay(name)
	s.overlays = append(s.overlays, name)
}

// RemoveOverlay deactivates an overlay. The frame's bindings stay in the
// engine state and come back on the next AddOverlay for the name.
func (s *Stack) RemoveOverlay(name string) {
	for i, n := range s.overlays {
		if n == name {
			s.overlays = append(s.overlays[:i], s.overlays[i+1:]...)
			return
		}
	}
}

// IsOverlayActive reports whether the overlay is in the active order.
func (s *Stack) IsOverlayActive(name string) bool {
	for _, n := range s.overlays {
		if n == name {
			return true
		}
	}
	return false
}

// ActiveOverlays returns the active order, least recent first. The caller
// gets a copy.
func (s *Stack) ActiveOverlays() []string {
	return append([]string(nil), s.overlays...)
}
