// Package sim is the policy core of the scheduling simulator: the simulation
// context (process arena, ready queue, resource table), the resource
// arbitration protocols, and the per-tick scheduling policies, bundled into
// named Scheduler variants.
//
// The core is tick-synchronous and single-caller: all state transitions happen
// inside Acquire/Release/Schedule, invoked one at a time by an external
// driver. There is no locking and no real parallelism.
package sim

import (
	"fmt"

	"github.com/me/schedsim/pkg/model"
)

// MaxPrio is the system-wide priority ceiling. A process holding a resource
// under the priority ceiling protocol runs at this priority.
const MaxPrio = 1<<31 - 1

// Resource is one entry of the fixed resource table: a mutually-exclusive
// resource with at most one owner and an ordered wait set. Both fields hold
// PIDs, never process pointers, so a completed process cannot dangle here.
type Resource struct {
	ID      int
	Owner   int   // owning PID, or model.NoPID
	waiters []int // PIDs blocked on this resource, arrival order
}

// Context carries the whole state of one simulation: the process arena keyed
// by PID, the current (running) PID, the ready queue, and the resource table.
// Every protocol and policy call operates on an explicit Context, so multiple
// independent simulations can coexist.
type Context struct {
	Current int // PID of the running process, or model.NoPID
	Ticks   int // monotonically increasing simulated time, advanced by the driver

	procs     map[int]*model.Process
	ready     []int // PIDs eligible to run, head at index 0
	resources []Resource
}

// NewContext creates an empty simulation context with nresources resources.
func NewContext(nresources int) *Context {
	ctx := &Context{
		Current:   model.NoPID,
		procs:     make(map[int]*model.Process),
		resources: make([]Resource, nresources),
	}
	for i := range ctx.resources {
		ctx.resources[i] = Resource{ID: i, Owner: model.NoPID}
	}
	return ctx
}

// Admit places a newly forked process into the arena and at the tail of the
// ready queue. The PID must not already be in the arena.
func (ctx *Context) Admit(p *model.Process) {
	if _, ok := ctx.procs[p.PID]; ok {
		panic(fmt.Sprintf("sim: admit: PID %d already exists", p.PID))
	}
	p.Status = model.ProcessReady
	ctx.procs[p.PID] = p
	ctx.ready = append(ctx.ready, p.PID)
}

// Retire removes a completed process from the arena. It must not be the
// current process, nor a member of the ready queue or any wait set.
func (ctx *Context) Retire(pid int) {
	delete(ctx.procs, pid)
}

// Proc returns the process with the given PID, or nil if it is not live.
func (ctx *Context) Proc(pid int) *model.Process {
	if pid == model.NoPID {
		return nil
	}
	return ctx.procs[pid]
}

// CurrentProc returns the current process, or nil when the processor is idle.
func (ctx *Context) CurrentProc() *model.Process {
	return ctx.Proc(ctx.Current)
}

// NumResources returns the size of the resource table.
func (ctx *Context) NumResources() int {
	return len(ctx.resources)
}

// ResourceOwner returns the PID owning resource rid, or model.NoPID.
func (ctx *Context) ResourceOwner(rid int) int {
	return ctx.resource(rid).Owner
}

// Waiters returns the PIDs blocked on resource rid in arrival order.
func (ctx *Context) Waiters(rid int) []int {
	r := ctx.resource(rid)
	out := make([]int, len(r.waiters))
	copy(out, r.waiters)
	return out
}

// ReadyPIDs returns the ready queue front to back.
func (ctx *Context) ReadyPIDs() []int {
	out := make([]int, len(ctx.ready))
	copy(out, ctx.ready)
	return out
}

// resource returns the table entry for rid. An out-of-range id is a driver
// bug, not a runtime condition, and aborts the simulation.
func (ctx *Context) resource(rid int) *Resource {
	if rid < 0 || rid >= len(ctx.resources) {
		panic(fmt.Sprintf("sim: resource id %d out of range [0,%d)", rid, len(ctx.resources)))
	}
	return &ctx.resources[rid]
}

// pushReady appends pid to the ready queue tail and marks it READY.
func (ctx *Context) pushReady(pid int) {
	ctx.Proc(pid).Status = model.ProcessReady
	ctx.ready = append(ctx.ready, pid)
}

// popReadyHead removes and returns the ready queue head, or nil when empty.
func (ctx *Context) popReadyHead() *model.Process {
	if len(ctx.ready) == 0 {
		return nil
	}
	pid := ctx.ready[0]
	ctx.ready = ctx.ready[1:]
	return ctx.procs[pid]
}

// takeBest scans the ready queue front to back and removes the process the
// comparison prefers. better(cand, best) must use a strict comparison so the
// first-scanned optimum wins ties. Returns nil when the queue is empty.
func (ctx *Context) takeBest(better func(cand, best *model.Process) bool) *model.Process {
	if len(ctx.ready) == 0 {
		return nil
	}
	bestIdx := 0
	best := ctx.procs[ctx.ready[0]]
	for i := 1; i < len(ctx.ready); i++ {
		cand := ctx.procs[ctx.ready[i]]
		if better(cand, best) {
			bestIdx, best = i, cand
		}
	}
	ctx.ready = append(ctx.ready[:bestIdx], ctx.ready[bestIdx+1:]...)
	return best
}
