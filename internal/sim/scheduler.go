package sim

import "github.com/me/schedsim/pkg/model"

// Scheduler is an immutable named bundle of a scheduling policy and a
// resource arbitration protocol, plus lifecycle hooks. The driver selects one
// variant for a whole simulation and calls nothing else.
type Scheduler interface {
	// Name returns the human-readable variant name.
	Name() string

	// Initialize runs before the first tick. A non-nil error aborts the
	// simulation before it starts.
	Initialize(ctx *Context) error

	// Finalize runs after the last tick.
	Finalize(ctx *Context)

	// Acquire requests resource rid for the current process. False means the
	// requester is now WAITING and the driver must schedule a replacement.
	Acquire(ctx *Context, rid int) bool

	// Release gives up resource rid, which the current process must own, and
	// wakes one waiter per the variant's protocol.
	Release(ctx *Context, rid int)

	// Schedule picks the process to run this tick, or nil to idle.
	Schedule(ctx *Context) *model.Process
}

// base provides the name and the default no-op lifecycle hooks.
type base struct{ name string }

func (b base) Name() string            { return b.name }
func (base) Initialize(*Context) error { return nil }
func (base) Finalize(*Context)         {}

// The eight scheduler variants, composed from a policy and a protocol.

type fifoScheduler struct {
	base
	fcfsProtocol
	fifoPolicy
}

type sjfScheduler struct {
	base
	fcfsProtocol
	sjfPolicy
}

type srtfScheduler struct {
	base
	fcfsProtocol
	srtfPolicy
}

type rrScheduler struct {
	base
	fcfsProtocol
	rrPolicy
}

type prioScheduler struct {
	base
	prioProtocol
	prioPolicy
}

type agingScheduler struct {
	base
	fcfsProtocol
	agingPolicy
}

// pcpScheduler and pipScheduler reuse the plain priority selection; the
// distinguishing behavior lives entirely in their protocols.

type pcpScheduler struct {
	base
	pcpProtocol
	prioPolicy
}

type pipScheduler struct {
	base
	pipProtocol
	prioPolicy
}
