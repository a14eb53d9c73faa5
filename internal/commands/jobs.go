package commands

import (
	"github.com/PoopyPooOS/nushell/internal/config"
	"github.com/PoopyPooOS/nushell/internal/engine"
	"github.com/PoopyPooOS/nushell/internal/eval"
	"github.com/PoopyPooOS/nushell/internal/jobs"
)

// JobSpawn runs a closure's block in the background and returns the job id
// right away. The job gets a fresh root stack with the caller's active
// overlay order; captured frames are not carried across the goroutine
// boundary, so the block must only reference committed definitions.
type JobSpawn struct {
	Reg *jobs.Registry
}

func (JobSpawn) Name() string                    { return "job spawn" }
func (JobSpawn) Description() string             { return "Run a closure in the background." }
func (JobSpawn) CommandType() engine.CommandType { return engine.KeywordCommand }

func (JobSpawn) Signature() *engine.Signature {
	return engine.NewSignature("job spawn").
		Required("closure", engine.ShapeClosure, "the closure to run").
		WithCategory(config.CategoryPlatform)
}

func (j JobSpawn) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	if j.Reg == nil {
		return nil, engine.NewError(engine.KindGeneric, call.Head, "background jobs are not available in this session")
	}
	closureVal, err := eval.Arg(state, stack, call, 0)
	if err != nil {
		return nil, err
	}
	closure, err := engine.AsClosure(closureVal)
	if err != nil {
		return nil, err
	}
	block := state.GetBlock(closure.Block)

	id := j.Reg.Spawn(stack.ActiveOverlays(), func(jobStack *engine.Stack) error {
		out, err := eval.EvalBlock(state, jobStack, block, engine.Empty{})
		if err != nil {
			if _, ok := err.(*engine.ReturnSignal); ok {
				return nil
			}
			return err
		}
		return out.Drain()
	})
	return engine.ValueData{Value: &engine.String{Value: id, ValSpan: call.Head}}, nil
}

// JobList streams one record per known job.
type JobList struct {
	Reg *jobs.Registry
}

func (JobList) Name() string                    { return "job list" }
func (JobList) Description() string             { return "List background jobs." }
func (JobList) CommandType() engine.CommandType { return engine.NormalCommand }

func (JobList) Signature() *engine.Signature {
	return engine.NewSignature("job list").WithCategory(config.CategoryPlatform)
}

func (j JobList) Run(state *engine.EngineState, stack *engine.Stack, call *engine.Call, input engine.PipelineData) (engine.PipelineData, error) {
	if j.Reg == nil {
		return nil, engine.NewError(engine.KindGeneric, call.Head, "background jobs are not available in this session")
	}
	infos := j.Reg.List()
	vals := make([]engine.Value, len(infos))
	for i, info := range infos {
		errText := ""
		if info.Err != nil {
			errText = info.Err.Error()
		}
		vals[i] = &engine.Record{
			Cols: []string{"id", "status", "error"},
			Vals: []engine.Value{
				&engine.String{Value: info.ID, ValSpan: call.Head},
				&engine.String{Value: string(info.Status), ValSpan: call.Head},
				&engine.String{Value: errText, ValSpan: call.Head},
			},
			ValSpan: call.Head,
		}
	}
	return engine.StreamValues(call.Head, state.Signals(), vals), nil
}
