package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Overlay is the bare parent command; the real work lives in the
// subcommands.
type Overlay struct{}

func (Overlay) Name() string                    { return "overlay" }
func (Overlay) Description() string             { return "Commands for manipulating overlays." }
func (Overlay) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Overlay) Signature() *engine.Signature {
	return engine.NewSignature("overlay").WithCategory(config.CategoryCore)
}

func (Overlay) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	usage := "overlay must be called with a subcommand: new, use, hide or list"
	return engine.ValueData{Value: &engine.String{Value: usage, ValSpan: call.Head}}, nil
}

// OverlayNew commits a fresh empty frame for the name and activates it.
// Re-creating an existing name pushes a new frame that shadows the old
// bindings, which stay reachable to already-compiled code.
type OverlayNew struct{}

func (OverlayNew) Name() string                    { return "overlay new" }
func (OverlayNew) Description() string             { return "Create an empty overlay and activate it." }
func (OverlayNew) CommandType() engine.CommandType { return engine.KeywordCommand }

func (OverlayNew) Signature() *engine.Signature {
	return engine.NewSignature("overlay new").
		Required("name", engine.ShapeString, "the name of the overlay").
		WithCategory(config.CategoryCore)
}

func (OverlayNew) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	name, err := overlayNameArg(state, stack, call)
	if err != nil {
		return nil, err
	}
	ws := engine.NewWorkingSet(state)
	if _, err := ws.AddOverlay(name); err != nil {
		return nil, err
	}
	if err := state.MergeDelta(ws.Render()); err != nil {
		return nil, err
	}
	stack.AddOverlay(name)
	return engine.Empty{}, nil
}

// OverlayUse re-activates a known overlay, moving it to the top of the
// active order. Bindings accumulated before a hide come back intact.
type OverlayUse struct{}

func (OverlayUse) Name() string                    { return "overlay use" }
func (OverlayUse) Description() string             { return "Activate an overlay." }
func (OverlayUse) CommandType() engine.CommandType { return engine.KeywordCommand }

func (OverlayUse) Signature() *engine.Signature {
	return engine.NewSignature("overlay use").
		Required("name", engine.ShapeString, "the name of the overlay").
		WithCategory(config.CategoryCore)
}

func (OverlayUse) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	name, err := overlayNameArg(state, stack, call)
	if err != nil {
		return nil, err
	}
	if _, ok := state.FindOverlay(name); !ok {
		return nil, engine.NewError(engine.KindOverlayNotFound, call.Head, "overlay %q not found", name)
	}
	stack.AddOverlay(name)
	return engine.Empty{}, nil
}

// OverlayHide deactivates an overlay. The frame and its bindings stay in
// the engine state for a later `overlay use`.
type OverlayHide struct{}

func (OverlayHide) Name() string                    { return "overlay hide" }
func (OverlayHide) Description() string             { return "Deactivate an overlay, keeping its definitions." }
func (OverlayHide) CommandType() engine.CommandType { return engine.KeywordCommand }

func (OverlayHide) Signature() *engine.Signature {
	return engine.NewSignature("overlay hide").
		Required("name", engine.ShapeString, "the name of the overlay").
		WithCategory(config.CategoryCore)
}

func (OverlayHide) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	name, err := overlayNameArg(state, stack, call)
	if err != nil {
		return nil, err
	}
	if !stack.IsOverlayActive(name) {
		return nil, engine.NewError(engine.KindOverlayNotFound, call.Head, "overlay %q is not active", name)
	}
	if len(stack.ActiveOverlays()) == 1 {
		return nil, engine.NewError(engine.KindGeneric, call.Head, "cannot hide the last active overlay")
	}
	stack.RemoveOverlay(name)
	return engine.Empty{}, nil
}

// OverlayList streams the active overlay names, least recently activated
// first.
type OverlayList struct{}

func (OverlayList) Name() string                    { return "overlay list" }
func (OverlayList) Description() string             { return "List the active overlays." }
func (OverlayList) CommandType() engine.CommandType { return engine.KeywordCommand }

func (OverlayList) Signature() *engine.Signature {
	return engine.NewSignature("overlay list").WithCategory(config.CategoryCore)
}

func (OverlayList) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	names := stack.ActiveOverlays()
	vals := make([]engine.Value, len(names))
	for i, name := range names {
		vals[i] = &engine.String{Value: name, ValSpan: call.Head}
	}
	return engine.StreamValues(call.Head, state.Signals(), vals), nil
}

func overlayNameArg(state *engine.EngineState, stack *engine.Stack, call *engine.Call) (string, error) {
	v, err := eval.Arg(state, stack, call, 0)
	if err != nil {
		return "", err
	}
	name, err := engine.AsString(v)
	if err != nil {
		return "", err
	}
	if !engine.IsValidOverlayName(name) {
		return "", engine.NewError(engine.KindGeneric, v.Span(), "invalid overlay name %q", name)
	}
	return name, nil
}
