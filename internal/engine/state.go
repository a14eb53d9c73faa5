package engine

import (
	"sync"

	"github.com/PoopyPooOS/nushell/internal/config"
)

// EvalBlockFn evaluates a block. Installed by the evaluator at context
// creation so declared commands can run their bodies without the engine
// package depending on the evaluator.
type EvalBlockFn func(state *EngineState, stack *Stack, block *Block, input PipelineData) (PipelineData, error)

// EvalExprFn evaluates a single expression.
type EvalExprFn func(state *EngineState, stack *Stack, expr Expression) (Value, error)

// EngineState is the process-wide committed definition store: commands,
// blocks, variables, spans, source files and overlay frames, all addressed
// by monotonically assigned ids that stay valid for the life of the
// process. It is created once at startup and grows only through MergeDelta;
// readers may run concurrently with each other, and a merge takes the write
// lock so no reader ever observes a half-applied changeset.
type EngineState struct {
	mu sync.RWMutex

	decls    []Command
	blocks   []*Block
	vars     []Variable
	spans    []Span
	files    []SourceFile
	overlays []*OverlayFrame
	envVars  map[string]Value

	// sourceLen is the next free offset in the global source space.
	sourceLen int

	signals Signals

	// EvalBlock and EvalExpression are installed once, before any
	// evaluation, and treated as read-only afterwards.
	EvalBlock      EvalBlockFn
	EvalExpression EvalExprFn
}

// NewEngineState creates an empty state with the default overlay and a
// fresh cancellation signal.
func NewEngineState() *EngineState {
	return &EngineState{
		overlays: []*OverlayFrame{NewOverlayFrame(config.DefaultOverlayName)},
		envVars:  map[string]Value{},
		signals:  NewSignals(),
	}
}

// Signals returns the shared cancellation signal.
func (s *EngineState) Signals() Signals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signals
}

// SetSignals replaces the shared signal, e.g. to wire OS interrupts.
func (s *EngineState) SetSignals(sig Signals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = sig
}

// Counts of committed items. Staged working-set ids continue from these.

func (s *EngineState) NumDecls() int    { s.mu.RLock(); defer s.mu.RUnlock(); return len(s.decls) }
func (s *EngineState) NumBlocks() int   { s.mu.RLock(); defer s.mu.RUnlock(); return len(s.blocks) }
func (s *EngineState) NumVars() int     { s.mu.RLock(); defer s.mu.RUnlock(); return len(s.vars) }
func (s *EngineState) NumSpans() int    { s.mu.RLock(); defer s.mu.RUnlock(); return len(s.spans) }
func (s *EngineState) NumFiles() int    { s.mu.RLock(); defer s.mu.RUnlock(); return len(s.files) }
func (s *EngineState) NumOverlays() int { s.mu.RLock(); defer s.mu.RUnlock(); return len(s.overlays) }

// GetDecl returns a committed command. Ids handed out by a merge are
// permanently valid, so an out-of-range id is a caller bug.
func (s *EngineState) GetDecl(id DeclID) Command {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(s.decls) {
		panic("engine: decl id out of range (delta not merged?)")
	}
	return s.decls[id]
}

// GetBlock returns a committed block.
func (s *EngineState) GetBlock(id BlockID) *Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(s.blocks) {
		panic("engine: block id out of range (delta not merged?)")
	}
	return s.blocks[id]
}

// GetVariable returns a committed variable declaration.
func (s *EngineState) GetVariable(id VarID) Variable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(s.vars) {
		panic("engine: variable id out of range (delta not merged?)")
	}
	return s.vars[id]
}

// GetSpan returns a committed span.
func (s *EngineState) GetSpan(id SpanID) Span {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(s.spans) {
		panic("engine: span id out of range (delta not merged?)")
	}
	return s.spans[id]
}

// Decls returns a snapshot of the committed commands, for help listings.
func (s *EngineState) Decls() []Command {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Command(nil), s.decls...)
}

// GetEnvVar reads a global environment variable.
func (s *EngineState) GetEnvVar(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.envVars[name]
	return v, ok
}

// AddEnvVar sets a global environment variable. Hosts use this during
// setup; scoped mutation at runtime goes through the stack instead.
func (s *EngineState) AddEnvVar(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envVars[name] = v
}

// FindOverlay returns the newest committed frame for an overlay name.
func (s *EngineState) FindOverlay(name string) (*OverlayFrame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findOverlayLocked(name)
}

func (s *EngineState) findOverlayLocked(name string) (*OverlayFrame, bool) {
	for i := len(s.overlays) - 1; i >= 0; i-- {
		if s.overlays[i].Name == name {
			return s.overlays[i], true
		}
	}
	return nil, false
}

// FindDecl resolves a command name through the active overlay order, most
// recently activated first.
func (s *EngineState) FindDecl(name string, active []string) (DeclID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(active) - 1; i >= 0; i-- {
		if frame, ok := s.findOverlayLocked(active[i]); ok {
			if id, ok := frame.Decls[name]; ok {
				return id, true
			}
		}
	}
	return 0, false
}

// FindVariable resolves a variable name through the active overlay order.
func (s *EngineState) FindVariable(name string, active []string) (VarID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(active) - 1; i >= 0; i-- {
		if frame, ok := s.findOverlayLocked(active[i]); ok {
			if id, ok := frame.Vars[name]; ok {
				return id, true
			}
		}
	}
	return 0, false
}

// FileForSpan locates the source file covering a span.
func (s *EngineState) FileForSpan(span Span) (SourceFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.Covered.Contains(span.Start) {
			return f, true
		}
	}
	return SourceFile{}, false
}

// LineCol renders a span as file name, 1-based line and column.
func (s *EngineState) LineCol(span Span) (string, int, int, bool) {
	file, ok := s.FileForSpan(span)
	if !ok {
		return "", 0, 0, false
	}
	line, col := 1, 1
	rel := span.Start - file.Covered.Start
	for i := 0; i < rel && i < len(file.Contents); i++ {
		if file.Contents[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return file.Name, line, col, true
}

// MergeDelta is the sole mutation path for the committed store. The whole
// delta is validated before anything is appended: a failure leaves the
// state untouched, a success commits every staged item and its ids at once.
func (s *EngineState) MergeDelta(delta StateDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The delta must have been rendered against this exact state,
	// otherwise its staged ids would collide with committed ones.
	if delta.baseDecls != len(s.decls) ||
		delta.baseBlocks != len(s.blocks) ||
		delta.baseVars != len(s.vars) ||
		delta.baseSpans != len(s.spans) ||
		delta.baseFiles != len(s.files) ||
		delta.baseOverlays != len(s.overlays) {
		return NewError(KindMerge, UnknownSpan(),
			"delta was rendered against a different engine state (id collision)")
	}

	totals := deltaTotals{
		decls:  len(s.decls) + len(delta.decls),
		blocks: len(s.blocks) + len(delta.blocks),
		vars:   len(s.vars) + len(delta.vars),
		spans:  len(s.spans) + len(delta.spans),
	}

	for i, cmd := range delta.decls {
		if cmd == nil {
			return NewError(KindMerge, UnknownSpan(), "staged decl %d is nil", delta.baseDecls+i)
		}
	}
	for i, block := range delta.blocks {
		if block == nil {
			return NewError(KindMerge, UnknownSpan(), "staged block %d is nil", delta.baseBlocks+i)
		}
		if err := validateBlock(block, totals); err != nil {
			return err
		}
	}
	for _, frame := range delta.overlays {
		if frame == nil || !IsValidOverlayName(frame.Name) {
			return NewError(KindMerge, UnknownSpan(), "staged overlay has an invalid name")
		}
	}
	for _, b := range delta.bindings {
		if err := s.validateBindingLocked(b, delta, totals); err != nil {
			return err
		}
	}

	// Validation passed; from here on nothing can fail.
	s.decls = append(s.decls, delta.decls...)
	s.blocks = append(s.blocks, delta.blocks...)
	s.vars = append(s.vars, delta.vars...)
	s.spans = append(s.spans, delta.spans...)
	for _, f := range delta.files {
		s.files = append(s.files, f)
		if end := f.Covered.End; end > s.sourceLen {
			s.sourceLen = end
		}
	}
	staged := make(map[string]*OverlayFrame, len(delta.overlays))
	for _, frame := range delta.overlays {
		fresh := frame.clone()
		s.overlays = append(s.overlays, fresh)
		staged[fresh.Name] = fresh
	}
	// Bindings into frames staged by this same delta land directly in
	// them; bindings into committed frames append an extended copy so
	// published frames stay immutable.
	extended := map[string]*OverlayFrame{}
	for _, b := range delta.bindings {
		target, ok := staged[b.Overlay]
		if !ok {
			target, ok = extended[b.Overlay]
		}
		if !ok {
			base, _ := s.findOverlayLocked(b.Overlay)
			target = base.clone()
			s.overlays = append(s.overlays, target)
			extended[b.Overlay] = target
		}
		if b.Decl >= 0 {
			target.Decls[b.Name] = b.Decl
		} else {
			target.Vars[b.Name] = b.Var
		}
	}
	return nil
}

// SourceLen returns the next free offset in the global source space.
func (s *EngineState) SourceLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceLen
}

type deltaTotals struct {
	decls  int
	blocks int
	vars   int
	spans  int
}

func (s *EngineState) validateBindingLocked(b OverlayBinding, delta StateDelta, totals deltaTotals) error {
	if (b.Decl >= 0) == (b.Var >= 0) {
		return NewError(KindMerge, UnknownSpan(),
			"overlay binding %q must reference exactly one of a decl or a variable", b.Name)
	}
	if b.Decl >= 0 && int(b.Decl) >= totals.decls {
		return NewError(KindMerge, UnknownSpan(),
			"overlay binding %q references unknown decl id %d", b.Name, b.Decl)
	}
	if b.Var >= 0 && int(b.Var) >= totals.vars {
		return NewError(KindMerge, UnknownSpan(),
			"overlay binding %q references unknown variable id %d", b.Name, b.Var)
	}
	if _, ok := s.findOverlayLocked(b.Overlay); ok {
		return nil
	}
	for _, frame := range delta.overlays {
		if frame != nil && frame.Name == b.Overlay {
			return nil
		}
	}
	return NewError(KindMerge, UnknownSpan(),
		"overlay binding %q targets unknown overlay %q", b.Name, b.Overlay)
}

// validateBlock checks that every id a staged block references fits inside
// the post-merge id space.
func validateBlock(b *Block, totals deltaTotals) error {
	for _, param := range b.Params {
		if int(param.ID) < 0 || int(param.ID) >= totals.vars {
			return NewError(KindMerge, b.BlockSpan,
				"block parameter %q references unknown variable id %d", param.Name, param.ID)
		}
	}
	for _, pl := range b.Pipelines {
		for _, expr := range pl.Elements {
			if err := validateExpr(expr, totals); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateExpr(expr Expression, totals deltaTotals) error {
	switch e := expr.(type) {
	case *VarRef:
		if int(e.ID) < 0 || int(e.ID) >= totals.vars {
			return NewError(KindMerge, e.Span(), "expression references unknown variable id %d", e.ID)
		}
	case *VarDecl:
		if int(e.ID) < 0 || int(e.ID) >= totals.vars {
			return NewError(KindMerge, e.Span(), "declaration references unknown variable id %d", e.ID)
		}
	case *BlockExpr:
		if int(e.ID) < 0 || int(e.ID) >= totals.blocks {
			return NewError(KindMerge, e.Span(), "expression references unknown block id %d", e.ID)
		}
	case *SubExpr:
		if int(e.ID) < 0 || int(e.ID) >= totals.blocks {
			return NewError(KindMerge, e.Span(), "expression references unknown block id %d", e.ID)
		}
	case *CallExpr:
		if int(e.Call.Decl) < 0 || int(e.Call.Decl) >= totals.decls {
			return NewError(KindMerge, e.Span(), "call references unknown decl id %d", e.Call.Decl)
		}
		for _, arg := range e.Call.Positional {
			if err := validateExpr(arg, totals); err != nil {
				return err
			}
		}
		for _, arg := range e.Call.Named {
			if arg == nil {
				continue
			}
			if err := validateExpr(arg, totals); err != nil {
				return err
			}
		}
	case *ListLiteral:
		for _, item := range e.Items {
			if err := validateExpr(item, totals); err != nil {
				return err
			}
		}
	case *RecordLiteral:
		for _, v := range e.Vals {
			if err := validateExpr(v, totals); err != nil {
				return err
			}
		}
	case *RangeLiteral:
		if err := validateExpr(e.From, totals); err != nil {
			return err
		}
		return validateExpr(e.To, totals)
	case *BinaryOp:
		if err := validateExpr(e.Left, totals); err != nil {
			return err
		}
		return validateExpr(e.Right, totals)
	}
	return nil
}
