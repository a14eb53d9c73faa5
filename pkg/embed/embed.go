// Package embed exposes the shell engine to host programs. Values cross
// the boundary as native Go types; the host never touches engine
// internals.
package embed

import (
	"fmt"
	"sort"

	"github.com/PoopyPooOS/nushell/internal/commands"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
)

// Engine is one embedded shell session: a committed definition store plus
// the session's runtime stack. It is not safe for concurrent Eval calls;
// hosts that want parallelism create one Engine per goroutine.
type Engine struct {
	state *engine.EngineState
	stack *engine.Stack
	input engine.PipelineData
}

// New builds an engine with the core command set.
func New() (*Engine, error) {
	state, err := commands.DefaultContext()
	if err != nil {
		return nil, err
	}
	return &Engine{
		state: state,
		stack: engine.NewStack(),
		input: engine.Empty{},
	}, nil
}

// Func is the body of a host-registered command. It receives the evaluated
// positional arguments and the collected pipeline input as native Go
// values and returns the command's output.
type Func func(args []any, input any) (any, error)

// RegisterCommand commits a host command under name, with one required
// positional parameter per entry in params. The command is callable from
// the very next Eval.
func (e *Engine) RegisterCommand(name, desc string, params []string, fn Func) error {
	sig := engine.NewSignature(name)
	for _, p := range params {
		sig.Required(p, engine.ShapeAny, "")
	}
	return commands.Register(e.state, &hostCommand{
		name: name,
		desc: desc,
		sig:  sig,
		fn:   fn,
	})
}

// AddEnvVar sets a global environment variable visible to every Eval.
func (e *Engine) AddEnvVar(name string, value any) error {
	v, err := fromNative(value)
	if err != nil {
		return err
	}
	e.state.AddEnvVar(name, v)
	return nil
}

// SetInput queues a value as the pipeline input of the next Eval.
func (e *Engine) SetInput(value any) error {
	v, err := fromNative(value)
	if err != nil {
		return err
	}
	e.input = engine.ValueData{Value: v}
	return nil
}

// Interrupt requests cooperative cancellation of the running Eval.
func (e *Engine) Interrupt() {
	e.state.Signals().Trigger()
}

// Eval compiles and runs src, returning the collected result as a native
// Go value. A top-level `return` yields its value. Definitions made by src
// persist for later Eval calls.
func (e *Engine) Eval(src string) (any, error) {
	e.state.Signals().Reset()
	input := e.input
	e.input = engine.Empty{}

	data, err := eval.Source(e.state, e.stack, "eval", []byte(src), input)
	if err != nil {
		if ret, ok := err.(*engine.ReturnSignal); ok {
			return toNative(ret.Value), nil
		}
		return nil, err
	}
	v, err := data.IntoValue(engine.UnknownSpan())
	if err != nil {
		return nil, err
	}
	return toNative(v), nil
}

type hostCommand struct {
	name string
	desc string
	sig  *engine.Signature
	fn   Func
}

func (c *hostCommand) Name() string                    { return c.name }
func (c *hostCommand) Description() string             { return c.desc }
func (c *hostCommand) Signature() *engine.Signature    { return c.sig }
func (c *hostCommand) CommandType() engine.CommandType { return engine.NormalCommand }

func (c *hostCommand) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	args := make([]any, 0, len(call.Positional))
	for i := range call.Positional {
		v, err := eval.Arg(state, stack, call, i)
		if err != nil {
			return nil, err
		}
		args = append(args, toNative(v))
	}
	inVal, err := input.IntoValue(call.Head)
	if err != nil {
		return nil, err
	}

	out, err := c.fn(args, toNative(inVal))
	if err != nil {
		return nil, engine.NewError(engine.KindGeneric, call.Head, "%s: %v", c.name, err)
	}
	v, err := fromNative(out)
	if err != nil {
		return nil, engine.NewError(engine.KindGeneric, call.Head, "%s returned an unsupported value: %v", c.name, err)
	}
	return engine.ValueData{Value: v}, nil
}

func toNative(v engine.Value) any {
	switch val := v.(type) {
	case *engine.Nothing, nil:
		return nil
	case *engine.Bool:
		return val.Value
	case *engine.Int:
		return val.Value
	case *engine.Float:
		return val.Value
	case *engine.String:
		return val.Value
	case *engine.List:
		out := make([]any, len(val.Values))
		for i, item := range val.Values {
			out[i] = toNative(item)
		}
		return out
	case *engine.Record:
		out := make(map[string]any, len(val.Cols))
		for i, col := range val.Cols {
			out[col] = toNative(val.Vals[i])
		}
		return out
	case *engine.Range:
		var out []any
		iter := val.Iter()
		for item, ok := iter(); ok; item, ok = iter() {
			out = append(out, toNative(item))
		}
		return out
	default:
		return v.String()
	}
}

func fromNative(value any) (engine.Value, error) {
	span := engine.UnknownSpan()
	switch v := value.(type) {
	case nil:
		return &engine.Nothing{ValSpan: span}, nil
	case bool:
		return &engine.Bool{Value: v, ValSpan: span}, nil
	case int:
		return &engine.Int{Value: int64(v), ValSpan: span}, nil
	case int64:
		return &engine.Int{Value: v, ValSpan: span}, nil
	case float64:
		return &engine.Float{Value: v, ValSpan: span}, nil
	case string:
		return &engine.String{Value: v, ValSpan: span}, nil
	case []any:
		vals := make([]engine.Value, len(v))
		for i, item := range v {
			converted, err := fromNative(item)
			if err != nil {
				return nil, err
			}
			vals[i] = converted
		}
		return &engine.List{Values: vals, ValSpan: span}, nil
	case map[string]any:
		cols := make([]string, 0, len(v))
		for col := range v {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		rec := &engine.Record{ValSpan: span}
		for _, col := range cols {
			converted, err := fromNative(v[col])
			if err != nil {
				return nil, err
			}
			rec.Cols = append(rec.Cols, col)
			rec.Vals = append(rec.Vals, converted)
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
