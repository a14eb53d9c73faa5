package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/PoopyPooOS/nushell/internal/engine"
)

func waitFor(t *testing.T, reg *Registry, id string) Info {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		info, ok := reg.Get(id)
		if !ok {
			t.Fatalf("job %s unknown", id)
		}
		if info.Status != StatusRunning {
			return info
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return Info{}
}

func TestSpawnCompletes(t *testing.T) {
	reg := NewRegistry()
	var sawOverlays []string
	id := reg.Spawn([]string{"zero", "spam"}, func(stack *engine.Stack) error {
		sawOverlays = stack.ActiveOverlays()
		return nil
	})

	info := waitFor(t, reg, id)
	if info.Status != StatusDone {
		t.Fatalf("status %q, want done", info.Status)
	}
	if len(sawOverlays) != 2 || sawOverlays[1] != "spam" {
		t.Fatalf("job stack overlays: %v", sawOverlays)
	}
}

func TestSpawnFailureIsRecorded(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	id := reg.Spawn([]string{"zero"}, func(*engine.Stack) error { return boom })

	info := waitFor(t, reg, id)
	if info.Status != StatusFailed {
		t.Fatalf("status %q, want failed", info.Status)
	}
	if !errors.Is(info.Err, boom) {
		t.Fatalf("err %v, want boom", info.Err)
	}
}

func TestListSnapshotsAllJobs(t *testing.T) {
	reg := NewRegistry()
	first := reg.Spawn([]string{"zero"}, func(*engine.Stack) error { return nil })
	second := reg.Spawn([]string{"zero"}, func(*engine.Stack) error { return nil })
	waitFor(t, reg, first)
	waitFor(t, reg, second)

	infos := reg.List()
	if len(infos) != 2 {
		t.Fatalf("got %d jobs, want 2", len(infos))
	}
	if infos[0].ID == infos[1].ID {
		t.Fatal("job ids should be unique")
	}
}
