package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Break raises the break signal. The nearest enclosing loop absorbs it;
// anywhere else it surfaces as a user error.
type Break struct{}

func (Break) Name() string                    { return "break" }
func (Break) Description() string             { return "Exit the nearest enclosing loop." }
func (Break) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Break) Signature() *engine.Signature {
	return engine.NewSignature("break").WithCategory(config.CategoryCore)
}

func (Break) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	return nil, &engine.BreakSignal{Span: call.Head}
}

// Continue raises the continue signal, skipping to the next iteration of
// the nearest enclosing loop.
type Continue struct{}

func (Continue) Name() string                    { return "continue" }
func (Continue) Description() string             { return "Skip to the next loop iteration." }
func (Continue) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Continue) Signature() *engine.Signature {
	return engine.NewSignature("continue").WithCategory(config.CategoryCore)
}

func (Continue) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	return nil, &engine.ContinueSignal{Span: call.Head}
}

// Return raises the return signal carrying an optional value. The nearest
// function or closure boundary absorbs it and yields the value.
type Return struct{}

func (Return) Name() string                    { return "return" }
func (Return) Description() string             { return "Return from a custom command or closure." }
func (Return) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Return) Signature() *engine.Signature {
	return engine.NewSignature("return").
		Optional("value", engine.ShapeAny, "the value to return").
		WithCategory(config.CategoryCore)
}

func (Return) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	val, given, err := eval.OptArg(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	if !given {
		val = &engine.Nothing{ValSpan: call.Head}
	}
	return nil, &engine.ReturnSignal{Span: call.Head, Value: val}
}
