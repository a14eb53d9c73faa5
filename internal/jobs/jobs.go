// Package jobs tracks background evaluations. Each job runs on its own
// stack over the shared engine state, so a job can call anything already
// committed but its bindings never leak into the spawning context.
package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PoopyPooOS/nushell/internal/engine"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Info is a snapshot of one job.
type Info struct {
	ID      string
	Status  Status
	Err     error
	Started time.Time
}

// Registry owns the live job table.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Info
}

// NewRegistry makes an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: map[string]*Info{}}
}

// Spawn starts run on a fresh root stack carrying the given active-overlay
// order and returns the job id immediately.
func (r *Registry) Spawn(overlays []string, run func(stack *engine.Stack) error) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.jobs[id] = &Info{ID: id, Status: StatusRunning, Started: time.Now()}
	r.mu.Unlock()

	go func() {
		stack := engine.NewStackWithOverlays(overlays)
		err := run(stack)
		r.mu.Lock()
		defer r.mu.Unlock()
		job := r.jobs[id]
		if err != nil {
			job.Status = StatusFailed
			job.Err = err
		} else {
			job.Status = StatusDone
		}
	}()
	return id
}

// List snapshots all known jobs, oldest first.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// Get returns a snapshot of one job.
func (r *Registry) Get(id string) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Info{}, false
	}
	return *job, true
}
