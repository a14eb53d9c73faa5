package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Let binds a value to a variable id allocated at parse time. The binding
// lands in the current frame, so it is visible to the rest of the block
// and gone when the frame pops.
type Let struct{}

func (Let) Name() string                    { return "let" }
func (Let) Description() string             { return "Bind a value to a variable." }
func (Let) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Let) Signature() *engine.Signature {
	return engine.NewSignature("let").
		Required("var", engine.ShapeVarName, "the variable to bind").
		Required("value", engine.ShapeAny, "the value").
		WithCategory(config.CategoryCore)
}

func (Let) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	decl, err := eval.DeclArg(call, 0)
	if err != nil {
		return nil, err
	}
	val, err := eval.Arg(state, stack, call, 1)
	if err != nil {
		return nil, err
	}
	stack.AddVar(decl.ID, val)
	return engine.Empty{}, nil
}

// Def is a runtime no-op: the parser already staged the declared command
// and its overlay binding, and the merge committed them before this runs.
type Def struct{}

func (Def) Name() string                    { return "def" }
func (Def) Description() string             { return "Define a custom command." }
func (Def) CommandType() engine.CommandType { return engine.KeywordCommand }

func (Def) Signature() *engine.Signature {
	return engine.NewSignature("def").
		Required("name", engine.ShapeString, "the command name").
		WithCategory(config.CategoryCore)
}

func (Def) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	return engine.Empty{}, nil
}
