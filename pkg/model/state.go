package model

// ProcessStatus represents the scheduling state of a Process.
//
// RUNNING is implicit in the simulation core: a process is RUNNING iff it is
// the designated current process. The constant exists so traces and the API
// can report it explicitly.
type ProcessStatus string

const (
	ProcessReady   ProcessStatus = "READY"
	ProcessRunning ProcessStatus = "RUNNING"
	ProcessWaiting ProcessStatus = "WAITING"
)

// String returns the string representation of the process status.
func (s ProcessStatus) String() string {
	return string(s)
}

// RunState represents the lifecycle state of a persisted simulation Run.
type RunState string

const (
	RunStatePending   RunState = "PENDING"
	RunStateRunning   RunState = "RUNNING"
	RunStateCompleted RunState = "COMPLETED"
	RunStateFailed    RunState = "FAILED"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if the run is in a final state.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateCompleted, RunStateFailed:
		return true
	}
	return false
}

// ValidRunTransitions defines the allowed state transitions for Runs.
var ValidRunTransitions = map[RunState][]RunState{
	RunStatePending: {RunStateRunning, RunStateFailed},
	RunStateRunning: {RunStateCompleted, RunStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s RunState) CanTransitionTo(next RunState) bool {
	for _, allowed := range ValidRunTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
