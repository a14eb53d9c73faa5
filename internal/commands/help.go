package commands

import (
	"sort"
	"strings"

	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Help shows the description and signature of one command.
type Help struct{}

func (Help) Name() string                    { return "help" }
func (Help) Description() string             { return "Show help for a command." }
func (Help) CommandType() engine.CommandType { return engine.NormalCommand }

func (Help) Signature() *engine.Signature {
	return engine.NewSignature("help").
		Optional("command", engine.ShapeString, "the command to describe").
		Rest("subcommand", engine.ShapeString, "more words of a multi-word command name").
		WithCategory(config.CategoryCore)
}

func (Help) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	words, err := eval.RestArgs(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		msg := "Welcome to nush. Run `help commands` to list what is available."
		return engine.ValueData{Value: &engine.String{Value: msg, ValSpan: call.Head}}, nil
	}

	parts := make([]string, len(words))
	for i, w := range words {
		s, err := engine.AsString(w)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	name := strings.Join(parts, " ")

	id, ok := state.FindDecl(name, stack.ActiveOverlays())
	if !ok {
		return nil, engine.NewError(engine.KindCommandNotFound, call.Head, "no help for %q: command not found", name)
	}
	return engine.ValueData{Value: describe(state.GetDecl(id), call.Head)}, nil
}

// HelpCommands streams one record per known command, sorted by name.
type HelpCommands struct{}

func (HelpCommands) Name() string                    { return "help commands" }
func (HelpCommands) Description() string             { return "List all known commands." }
func (HelpCommands) CommandType() engine.CommandType { return engine.NormalCommand }

func (HelpCommands) Signature() *engine.Signature {
	return engine.NewSignature("help commands").WithCategory(config.CategoryCore)
}

func (HelpCommands) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	decls := state.Decls()
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name() < decls[j].Name() })

	vals := make([]engine.Value, len(decls))
	for i, decl := range decls {
		vals[i] = describe(decl, call.Head)
	}
	return engine.StreamValues(call.Head, state.Signals(), vals), nil
}

func describe(cmd engine.Command, span engine.Span) *engine.Record {
	sig := cmd.Signature()
	category := sig.Category
	if category == "" {
		category = "uncategorized"
	}
	params := make([]string, 0, len(sig.Positional))
	for _, arg := range sig.Positional {
		params = append(params, arg.Name)
	}
	return &engine.Record{
		Cols: []string{"name", "category", "type", "params", "description"},
		Vals: []engine.Value{
			&engine.String{Value: cmd.Name(), ValSpan: span},
			&engine.String{Value: category, ValSpan: span},
			&engine.String{Value: cmd.CommandType().String(), ValSpan: span},
			&engine.String{Value: strings.Join(params, " "), ValSpan: span},
			&engine.String{Value: cmd.Description(), ValSpan: span},
		},
		ValSpan: span,
	}
}
