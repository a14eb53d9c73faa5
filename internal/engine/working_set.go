package engine

// OverlayBinding stages a symbol into an overlay frame. Exactly one of
// Decl/Var is set; the other is -1.
type OverlayBinding struct {
	Overlay string
	Name    string
	Decl    DeclID
	Var     VarID
}

// StateDelta is the self-contained changeset rendered from a working set.
// It remembers the id counts of the base state it was staged over, so a
// merge against any other state fails instead of colliding ids.
type StateDelta struct {
	baseDecls    int
	baseBlocks   int
	baseVars     int
	baseSpans    int
	baseFiles    int
	baseOverlays int
	baseSource   int

	decls    []Command
	blocks   []*Block
	vars     []Variable
	spans    []Span
	files    []SourceFile
	overlays []*OverlayFrame
	bindings []OverlayBinding
}

// StateWorkingSet stages new definitions over a read-only base state. Ids
// it hands out continue numerically from the base counts and can be used
// immediately within the same working set, so a staged block may reference a
// decl staged just before it. Nothing here is visible to any other
// evaluator until the rendered delta is merged.
type StateWorkingSet struct {
	Permanent *EngineState
	delta     StateDelta
	sourceLen int
}

// NewWorkingSet opens staging over a base state.
func NewWorkingSet(base *EngineState) *StateWorkingSet {
	return &StateWorkingSet{
		Permanent: base,
		delta: StateDelta{
			baseDecls:    base.NumDecls(),
			baseBlocks:   base.NumBlocks(),
			baseVars:     base.NumVars(),
			baseSpans:    base.NumSpans(),
			baseFiles:    base.NumFiles(),
			baseOverlays: base.NumOverlays(),
			baseSource:   base.SourceLen(),
		},
		sourceLen: base.SourceLen(),
	}
}

// Render packages the staged additions into an immutable changeset. The
// base state is untouched.
func (ws *StateWorkingSet) Render() StateDelta {
	return ws.delta
}

// AddDecl stages a command and returns its future-committed id.
func (ws *StateWorkingSet) AddDecl(cmd Command) DeclID {
	id := DeclID(ws.delta.baseDecls + len(ws.delta.decls))
	ws.delta.decls = append(ws.delta.decls, cmd)
	return id
}

// AddBlock stages a compiled block.
func (ws *StateWorkingSet) AddBlock(block *Block) BlockID {
	id := BlockID(ws.delta.baseBlocks + len(ws.delta.blocks))
	ws.delta.blocks = append(ws.delta.blocks, block)
	return id
}

// AddVariable stages a variable declaration.
func (ws *StateWorkingSet) AddVariable(name string, span Span) VarID {
	id := VarID(ws.delta.baseVars + len(ws.delta.vars))
	ws.delta.vars = append(ws.delta.vars, Variable{Name: name, DeclSpan: span})
	return id
}

// AddSpan stages a span.
func (ws *StateWorkingSet) AddSpan(span Span) SpanID {
	id := SpanID(ws.delta.baseSpans + len(ws.delta.spans))
	ws.delta.spans = append(ws.delta.spans, span)
	return id
}

// AddFile registers source text, assigning it the next free range of the
// global source space. Token offsets inside the file shift by the returned
// span's Start.
func (ws *StateWorkingSet) AddFile(name string, contents []byte) Span {
	covered := Span{Start: ws.sourceLen, End: ws.sourceLen + len(contents)}
	ws.sourceLen = covered.End
	ws.delta.files = append(ws.delta.files, SourceFile{
		Name:     name,
		Contents: contents,
		Covered:  covered,
	})
	return covered
}

// AddOverlay stages a fresh, empty overlay frame. A frame staged for an
// existing name shadows the committed bindings once merged.
func (ws *StateWorkingSet) AddOverlay(name string) (OverlayID, error) {
	if !IsValidOverlayName(name) {
		return 0, NewError(KindOverlayNotFound, UnknownSpan(), "invalid overlay name %q", name)
	}
	id := OverlayID(ws.delta.baseOverlays + len(ws.delta.overlays))
	ws.delta.overlays = append(ws.delta.overlays, NewOverlayFrame(name))
	return id, nil
}

// AddDeclBinding stages a command name into an overlay.
func (ws *StateWorkingSet) AddDeclBinding(overlay, name string, id DeclID) {
	ws.delta.bindings = append(ws.delta.bindings, OverlayBinding{
		Overlay: overlay, Name: name, Decl: id, Var: -1,
	})
}

// AddVarBinding stages a variable name into an overlay.
func (ws *StateWorkingSet) AddVarBinding(overlay, name string, id VarID) {
	ws.delta.bindings = append(ws.delta.bindings, OverlayBinding{
		Overlay: overlay, Name: name, Decl: -1, Var: id,
	})
}

// GetDecl resolves a decl through staging first, then the base.
func (ws *StateWorkingSet) GetDecl(id DeclID) Command {
	if int(id) >= ws.delta.baseDecls {
		return ws.delta.decls[int(id)-ws.delta.baseDecls]
	}
	return ws.Permanent.GetDecl(id)
}

// GetBlock resolves a block through staging first, then the base.
func (ws *StateWorkingSet) GetBlock(id BlockID) *Block {
	if int(id) >= ws.delta.baseBlocks {
		return ws.delta.blocks[int(id)-ws.delta.baseBlocks]
	}
	return ws.Permanent.GetBlock(id)
}

// GetVariable resolves a variable declaration.
func (ws *StateWorkingSet) GetVariable(id VarID) Variable {
	if int(id) >= ws.delta.baseVars {
		return ws.delta.vars[int(id)-ws.delta.baseVars]
	}
	return ws.Permanent.GetVariable(id)
}

// HasOverlay reports whether an overlay has ever been defined, staged or
// committed.
func (ws *StateWorkingSet) HasOverlay(name string) bool {
	for _, frame := range ws.delta.overlays {
		if frame.Name == name {
			return true
		}
	}
	_, ok := ws.Permanent.FindOverlay(name)
	return ok
}

// findStaged resolves a symbol of one kind inside one overlay's staged
// state. The second result distinguishes "found nothing" from "a staged
// fresh frame shadows the committed bindings for this overlay".
func (ws *StateWorkingSet) findStaged(overlay, symbol string, wantDecl bool) (OverlayBinding, bool, bool) {
	for i := len(ws.delta.bindings) - 1; i >= 0; i-- {
		b := ws.delta.bindings[i]
		if b.Overlay == overlay && b.Name == symbol && (b.Decl >= 0) == wantDecl {
			return b, true, false
		}
	}
	for i := len(ws.delta.overlays) - 1; i >= 0; i-- {
		if ws.delta.overlays[i].Name == overlay {
			return OverlayBinding{}, false, true
		}
	}
	return OverlayBinding{}, false, false
}

// FindDecl resolves a command name through the active overlay order,
// consulting staged bindings before committed frames.
func (ws *StateWorkingSet) FindDecl(name string, active []string) (DeclID, bool) {
	for i := len(active) - 1; i >= 0; i-- {
		overlay := active[i]
		if b, found, shadowed := ws.findStaged(overlay, name, true); found {
			return b.Decl, true
		} else if !shadowed {
			if id, ok := ws.Permanent.FindDecl(name, []string{overlay}); ok {
				return id, true
			}
		}
	}
	return 0, false
}

// FindVariable resolves a variable name through the active overlay order.
func (ws *StateWorkingSet) FindVariable(name string, active []string) (VarID, bool) {
	for i := len(active) - 1; i >= 0; i-- {
		overlay := active[i]
		if b, found, shadowed := ws.findStaged(overlay, name, false); found {
			return b.Var, true
		} else if !shadowed {
			if id, ok := ws.Permanent.FindVariable(name, []string{overlay}); ok {
				return id, true
			}
		}
	}
	return 0, false
}
