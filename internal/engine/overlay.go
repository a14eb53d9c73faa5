package engine

// OverlayFrame is a named namespace mapping symbols to decl and variable
// ids. Frames are immutable once committed: a merge that adds bindings to
// an existing overlay appends an extended copy, which shadows the older
// frame for that name. Creating an overlay with a name that already exists
// pushes a fresh empty frame, shadowing the previous bindings.
type OverlayFrame struct {
	Name  string
	Decls map[string]DeclID
	Vars  map[string]VarID
}

// NewOverlayFrame makes an empty frame.
func NewOverlayFrame(name string) *OverlayFrame {
	return &OverlayFrame{
		Name:  name,
		Decls: map[string]DeclID{},
		Vars:  map[string]VarID{},
	}
}

func (f *OverlayFrame) clone() *OverlayFrame {
	out := NewOverlayFrame(f.Name)
	for k, v := range f.Decls {
		out.Decls[k] = v
	}
	for k, v := range f.Vars {
		out.Vars[k] = v
	}
	return out
}

// IsValidOverlayName rejects structurally invalid overlay names. Name
// collisions are not errors: re-creating pushes a fresh shadowing frame.
func IsValidOverlayName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
