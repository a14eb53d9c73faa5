// Package commands implements the builtin command set and assembles the
// default evaluation context.
package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Core returns the builtin commands every context starts with. Session
// commands that need external resources (history, jobs) are registered
// separately by the host.
func Core() []engine.Command {
	return []engine.Command{
		// keywords
		For{}, While{}, Loop{}, If{}, Let{}, Def{},
		Break{}, Continue{}, Return{},
		Overlay{}, OverlayNew{}, OverlayUse{}, OverlayHide{}, OverlayList{},
		Cd{},
		// ordinary commands
		Echo{}, Seq{}, Each{}, Every{}, Length{}, Ignore{}, Collect{},
		Help{}, HelpCommands{},
	}
}

// AddCommand stages a command into the default overlay of a working set.
func AddCommand(ws *engine.StateWorkingSet, cmd engine.Command) engine.DeclID {
	id := ws.AddDecl(cmd)
	ws.AddDeclBinding(config.DefaultOverlayName, cmd.Name(), id)
	return id
}

// Register commits extra commands into an existing state's default
// overlay.
func Register(state *engine.EngineState, cmds ...engine.Command) error {
	ws := engine.NewWorkingSet(state)
	for _, cmd := range cmds {
		AddCommand(ws, cmd)
	}
	return state.MergeDelta(ws.Render())
}

// DefaultContext builds an engine state with the evaluator installed and
// the core command set committed into the default overlay.
func DefaultContext() (*engine.EngineState, error) {
	state := engine.NewEngineState()
	eval.Install(state)
	if err := Register(state, Core()...); err != nil {
		return nil, err
	}
	return state, nil
}
