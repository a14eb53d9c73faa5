package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
	"github.com/PoopyPooOS/nushell/internal/history"
)

// History streams recorded command lines from the sqlite history store.
// The interactive shell registers it with its open store; without one the
// command reports that history is unavailable.
type History struct {
	Store *history.Store
	Max   int
}

func (History) Name() string                    { return "history" }
func (History) Description() string             { return "Show the command history." }
func (History) CommandType() engine.CommandType { return engine.NormalCommand }

func (History) Signature() *engine.Signature {
	return engine.NewSignature("history").
		NamedFlag("max", "m", engine.ShapeInt, "how many entries to show").
		WithCategory(config.CategoryPlatform)
}

func (h History) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	if h.Store == nil {
		return nil, engine.NewError(engine.KindGeneric, call.Head, "history is not available in this session")
	}
	limit := h.Max
	if limit <= 0 {
		limit = 100
	}
	if v, given, err := eval.FlagValue(state, stack, call, "max"); err != nil {
		return nil, err
	} else if given {
		n, err := engine.AsInt(v)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			limit = int(n)
		}
	}

	entries, err := h.Store.List(limit)
	if err != nil {
		return nil, engine.NewError(engine.KindIO, call.Head, "%v", err)
	}
	vals := make([]engine.Value, len(entries))
	for i, e := range entries {
		vals[i] = &engine.Record{
			Cols: []string{"id", "command"},
			Vals: []engine.Value{
				&engine.Int{Value: e.ID, ValSpan: call.Head},
				&engine.String{Value: e.Command, ValSpan: call.Head},
			},
			ValSpan: call.Head,
		}
	}
	return engine.StreamValues(call.Head, state.Signals(), vals), nil
}
