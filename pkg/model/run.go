package model

import "time"

// Run is one persisted simulation: a workload executed under a named
// scheduler, together with its outcome.
type Run struct {
	ID          string      `json:"id"`
	Scheduler   string      `json:"scheduler"`
	Workload    string      `json:"workload"` // raw workload document (YAML)
	State       RunState    `json:"state"`
	Metrics     *RunMetrics `json:"metrics,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// EventKind classifies a TraceEvent.
type EventKind string

const (
	EventFork    EventKind = "FORK"    // process entered the ready queue
	EventRun     EventKind = "RUN"     // process executed this tick
	EventAcquire EventKind = "ACQUIRE" // process took ownership of a resource
	EventBlock   EventKind = "BLOCK"   // process was denied a resource and waits
	EventWake    EventKind = "WAKE"    // process was woken from a wait set
	EventRelease EventKind = "RELEASE" // process released a resource
	EventExit    EventKind = "EXIT"    // process completed its lifespan
	EventIdle    EventKind = "IDLE"    // nothing runnable this tick
)

// TraceEvent is a single timeline entry recorded by the driver. Seq orders
// events within a tick; Resource and Prio are populated only where they apply.
type TraceEvent struct {
	Seq      int       `json:"seq"`
	Tick     int       `json:"tick"`
	Kind     EventKind `json:"kind"`
	PID      int       `json:"pid"`
	Resource int       `json:"resource,omitempty"`
	Prio     int       `json:"prio,omitempty"`
}

// ProcessMetrics summarizes one process's journey through a run.
type ProcessMetrics struct {
	PID        int `json:"pid"`
	Start      int `json:"start"`      // fork tick
	Completion int `json:"completion"` // tick after the last executed tick
	Turnaround int `json:"turnaround"` // completion - start
	Waiting    int `json:"waiting"`    // turnaround - lifespan
	Response   int `json:"response"`   // first run tick - start
}

// RunMetrics aggregates a whole run.
type RunMetrics struct {
	Processes     []ProcessMetrics `json:"processes"`
	Makespan      int              `json:"makespan"` // tick at which the last process completed
	IdleTicks     int              `json:"idle_ticks"`
	Switches      int              `json:"switches"` // times the current process changed
	AvgTurnaround float64          `json:"avg_turnaround"`
	AvgWaiting    float64          `json:"avg_waiting"`
	AvgResponse   float64          `json:"avg_response"`
}
