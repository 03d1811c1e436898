package model

// NoPID marks an empty process slot (no current process, unowned resource).
const NoPID = -1

// Process is the schedulable unit. The simulation core mutates Status, Age,
// and Prio; the driver creates and retires Process records.
type Process struct {
	PID      int           `json:"pid"`
	Status   ProcessStatus `json:"status"`
	Age      int           `json:"age"`       // ticks already executed
	Lifespan int           `json:"lifespan"`  // total CPU ticks required
	Prio     int           `json:"prio"`      // current effective priority, higher wins
	PrioOrig int           `json:"prio_orig"` // priority assigned at creation, never mutated
}

// Remaining returns the CPU ticks this process still needs.
func (p *Process) Remaining() int {
	return p.Lifespan - p.Age
}

// Done reports whether the process has consumed its whole lifespan.
func (p *Process) Done() bool {
	return p.Age >= p.Lifespan
}
