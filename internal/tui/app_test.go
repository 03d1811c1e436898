package tui

import (
	"strings"
	"testing"

	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

func playerModel(t *testing.T) Model {
	t.Helper()

	wl, err := workload.Parse([]byte(`
name: demo
resources: 1
processes:
  - {id: 0, start: 0, lifespan: 2, priority: 0}
  - id: 1
    start: 0
    lifespan: 2
    priority: 1
    acquisitions:
      - {resource: 0, at: 0, duration: 1}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	events := []model.TraceEvent{
		{Seq: 0, Tick: 0, Kind: model.EventFork, PID: 0},
		{Seq: 1, Tick: 0, Kind: model.EventFork, PID: 1, Prio: 1},
		{Seq: 2, Tick: 0, Kind: model.EventRun, PID: 0},
		{Seq: 3, Tick: 1, Kind: model.EventAcquire, PID: 1, Resource: 0, Prio: 1},
		{Seq: 4, Tick: 1, Kind: model.EventRun, PID: 1, Prio: 1},
		{Seq: 5, Tick: 2, Kind: model.EventRelease, PID: 1, Resource: 0, Prio: 1},
		{Seq: 6, Tick: 2, Kind: model.EventRun, PID: 1, Prio: 1},
		{Seq: 7, Tick: 2, Kind: model.EventExit, PID: 1, Prio: 1},
		{Seq: 8, Tick: 3, Kind: model.EventRun, PID: 0},
		{Seq: 9, Tick: 3, Kind: model.EventExit, PID: 0},
	}
	return New(wl, "Round-Robin", events)
}

func TestStepForwardStopsAtTickBoundaries(t *testing.T) {
	m := playerModel(t)

	m.stepForward()
	if m.pos != 3 {
		t.Errorf("after one step pos = %d, want 3 (all tick-0 events)", m.pos)
	}
	m.stepForward()
	if m.pos != 5 {
		t.Errorf("after two steps pos = %d, want 5 (through tick 1)", m.pos)
	}

	for i := 0; i < 10; i++ {
		m.stepForward()
	}
	if m.pos != len(m.events) {
		t.Errorf("stepping past the end: pos = %d, want %d", m.pos, len(m.events))
	}
}

func TestStepBackRewindsOneTick(t *testing.T) {
	m := playerModel(t)
	m.pos = len(m.events)

	m.stepBack()
	if m.pos != 8 {
		t.Errorf("after one back pos = %d, want 8 (start of tick 3)", m.pos)
	}
	m.stepBack()
	if m.pos != 5 {
		t.Errorf("after two backs pos = %d, want 5 (start of tick 2)", m.pos)
	}

	for i := 0; i < 10; i++ {
		m.stepBack()
	}
	if m.pos != 0 {
		t.Errorf("rewinding past the start: pos = %d, want 0", m.pos)
	}
}

func TestReplayReconstructsState(t *testing.T) {
	m := playerModel(t)

	// After tick 1: P1 is running and owns R0, P0 was preempted back to ready.
	m.pos = 5
	f := m.replay()
	if f.status[1] != "RUNNING" || f.status[0] != "READY" {
		t.Errorf("statuses = %v, want P1 running, P0 ready", f.status)
	}
	if owner, ok := f.owners[0]; !ok || owner != 1 {
		t.Errorf("owners = %v, want R0 owned by P1", f.owners)
	}

	// Full trace: everyone exited, the resource is free.
	m.pos = len(m.events)
	f = m.replay()
	if f.status[0] != "EXITED" || f.status[1] != "EXITED" {
		t.Errorf("final statuses = %v, want both exited", f.status)
	}
	if len(f.owners) != 0 {
		t.Errorf("final owners = %v, want none", f.owners)
	}
	if f.ranAt[0] != 0 || f.ranAt[1] != 1 || f.ranAt[3] != 0 {
		t.Errorf("gantt ranAt = %v", f.ranAt)
	}
}

func TestViewRendersPanels(t *testing.T) {
	m := playerModel(t)
	m.pos = len(m.events)

	out := m.View()
	for _, want := range []string{"PROCESSES", "RESOURCES", "TIMELINE", "demo", "Round-Robin"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
