package sim

import (
	"fmt"

	"github.com/me/schedsim/pkg/model"
)

// Resource arbitration protocols. Each protocol is a small stateless type
// providing the Acquire/Release half of a Scheduler; the scheduler variants
// embed the one they use.
//
// Acquire is always called on behalf of the current process. Returning false
// means the requester was not admitted: it has been marked WAITING and parked
// in the resource's wait set, and the driver must schedule a replacement.
// Release must be called by the owner; anything else is a contract violation
// and aborts.

// blockCurrent parks the current process at the tail of r's wait set.
func blockCurrent(ctx *Context, r *Resource) {
	cur := ctx.CurrentProc()
	cur.Status = model.ProcessWaiting
	r.waiters = append(r.waiters, cur.PID)
}

// disown verifies the caller owns r and clears ownership.
func disown(ctx *Context, r *Resource) {
	if r.Owner != ctx.Current {
		panic(fmt.Sprintf("sim: release of resource %d by PID %d, owned by PID %d",
			r.ID, ctx.Current, r.Owner))
	}
	r.Owner = model.NoPID
}

// wakeFIFO moves the head of r's wait set (if any) to the ready queue tail.
func wakeFIFO(ctx *Context, r *Resource) *model.Process {
	if len(r.waiters) == 0 {
		return nil
	}
	pid := r.waiters[0]
	r.waiters = r.waiters[1:]
	ctx.pushReady(pid)
	return ctx.Proc(pid)
}

// wakeHighestPrio moves the highest-priority waiter (first maximum in a
// front-to-back scan) to the ready queue tail.
func wakeHighestPrio(ctx *Context, r *Resource) *model.Process {
	if len(r.waiters) == 0 {
		return nil
	}
	bestIdx := 0
	best := ctx.Proc(r.waiters[0])
	for i := 1; i < len(r.waiters); i++ {
		if cand := ctx.Proc(r.waiters[i]); cand.Prio > best.Prio {
			bestIdx, best = i, cand
		}
	}
	r.waiters = append(r.waiters[:bestIdx], r.waiters[bestIdx+1:]...)
	ctx.pushReady(best.PID)
	return best
}

// fcfsProtocol serves resources strictly in requesting order.
type fcfsProtocol struct{}

func (fcfsProtocol) Acquire(ctx *Context, rid int) bool {
	r := ctx.resource(rid)
	if r.Owner == model.NoPID {
		r.Owner = ctx.Current
		return true
	}
	blockCurrent(ctx, r)
	return false
}

func (fcfsProtocol) Release(ctx *Context, rid int) {
	r := ctx.resource(rid)
	disown(ctx, r)
	wakeFIFO(ctx, r)
}

// prioProtocol admits first-come-first-served but wakes the highest-priority
// waiter on release. Used by the plain priority and aging schedulers.
type prioProtocol struct {
	fcfsProtocol
}

func (prioProtocol) Release(ctx *Context, rid int) {
	r := ctx.resource(rid)
	disown(ctx, r)
	wakeHighestPrio(ctx, r)
}

// pcpProtocol implements the priority ceiling protocol: the moment a process
// takes a resource its priority is raised to MaxPrio, so no other process can
// preempt it inside the critical section. Release restores the owner to its
// original priority and wakes the FIFO head.
type pcpProtocol struct{}

func (pcpProtocol) Acquire(ctx *Context, rid int) bool {
	r := ctx.resource(rid)
	if r.Owner == model.NoPID {
		cur := ctx.CurrentProc()
		cur.Prio = MaxPrio
		r.Owner = cur.PID
		return true
	}
	blockCurrent(ctx, r)
	return false
}

func (pcpProtocol) Release(ctx *Context, rid int) {
	r := ctx.resource(rid)
	disown(ctx, r)
	if cur := ctx.CurrentProc(); cur != nil {
		cur.Prio = cur.PrioOrig
	}
	wakeFIFO(ctx, r)
}

// pipProtocol implements priority inheritance: when a requester blocks, the
// owner inherits the requester's priority so it can finish the critical
// section promptly. Inheritance is single-level (the most recent requester's
// priority, no transitive propagation through chains of resources). Release
// always restores the owner to its original priority, not to the value before
// the latest boost, and wakes the highest-priority waiter.
type pipProtocol struct{}

func (pipProtocol) Acquire(ctx *Context, rid int) bool {
	r := ctx.resource(rid)
	if r.Owner == model.NoPID {
		r.Owner = ctx.Current
		return true
	}
	ctx.Proc(r.Owner).Prio = ctx.CurrentProc().Prio
	blockCurrent(ctx, r)
	return false
}

func (pipProtocol) Release(ctx *Context, rid int) {
	r := ctx.resource(rid)
	disown(ctx, r)
	if cur := ctx.CurrentProc(); cur != nil {
		cur.Prio = cur.PrioOrig
	}
	wakeHighestPrio(ctx, r)
}
