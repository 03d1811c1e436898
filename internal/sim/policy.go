package sim

import "github.com/me/schedsim/pkg/model"

// Scheduling policies. Each policy provides the Schedule half of a Scheduler:
// called once per tick, it decides whether the current process keeps the
// processor and otherwise selects (and removes) the next process from the
// ready queue. A nil return tells the driver to idle this tick.
//
// Every policy starts with the same guard: with no current process, or a
// current process that just blocked on a resource (WAITING), the current slot
// contributes nothing and selection proceeds directly.

// currentRunnable returns the current process if it is still a candidate to
// keep or requeue this tick.
func currentRunnable(ctx *Context) *model.Process {
	cur := ctx.CurrentProc()
	if cur == nil || cur.Status == model.ProcessWaiting {
		return nil
	}
	return cur
}

// dispatch marks p RUNNING on its way out of the ready queue.
func dispatch(p *model.Process) *model.Process {
	if p != nil {
		p.Status = model.ProcessRunning
	}
	return p
}

// fifoPolicy runs the current process to completion, then takes the ready
// queue head.
type fifoPolicy struct{}

func (fifoPolicy) Schedule(ctx *Context) *model.Process {
	if cur := currentRunnable(ctx); cur != nil && !cur.Done() {
		return cur
	}
	return dispatch(ctx.popReadyHead())
}

// sjfPolicy is non-preemptive shortest-job-first: the current process runs to
// completion, then the ready process with the smallest total lifespan is
// selected. Strict less-than, so the first-scanned minimum wins ties.
type sjfPolicy struct{}

func (sjfPolicy) Schedule(ctx *Context) *model.Process {
	if cur := currentRunnable(ctx); cur != nil && !cur.Done() {
		return cur
	}
	return dispatch(ctx.takeBest(func(cand, best *model.Process) bool {
		return cand.Lifespan < best.Lifespan
	}))
}

// srtfPolicy is preemptive shortest-remaining-time-first: an unfinished
// current process is requeued at the tail and competes again every tick.
// Because it is appended before the scan, it loses remaining-time ties to any
// ready process scanned earlier.
type srtfPolicy struct{}

func (srtfPolicy) Schedule(ctx *Context) *model.Process {
	if cur := currentRunnable(ctx); cur != nil && !cur.Done() {
		ctx.pushReady(cur.PID)
	}
	return dispatch(ctx.takeBest(func(cand, best *model.Process) bool {
		return cand.Remaining() < best.Remaining()
	}))
}

// rrPolicy is round-robin with an implicit one-tick quantum: the unfinished
// current process is requeued at the tail and the head runs next.
type rrPolicy struct{}

func (rrPolicy) Schedule(ctx *Context) *model.Process {
	if cur := currentRunnable(ctx); cur != nil && !cur.Done() {
		ctx.pushReady(cur.PID)
	}
	return dispatch(ctx.popReadyHead())
}

// prioPolicy requeues the unfinished current process and selects the ready
// process with the highest priority; the first-scanned maximum wins ties.
type prioPolicy struct{}

func (prioPolicy) Schedule(ctx *Context) *model.Process {
	if cur := currentRunnable(ctx); cur != nil && !cur.Done() {
		ctx.pushReady(cur.PID)
	}
	return dispatch(ctx.takeBest(func(cand, best *model.Process) bool {
		return cand.Prio > best.Prio
	}))
}

// agingPolicy is the priority policy with starvation protection: the outgoing
// current process drops back to its original priority before requeueing, and
// the selection scan bumps every ready process (the just-requeued one
// included) by one. A process left waiting therefore gains priority every
// tick until it outranks whatever keeps arriving above it.
type agingPolicy struct{}

func (agingPolicy) Schedule(ctx *Context) *model.Process {
	if cur := currentRunnable(ctx); cur != nil && !cur.Done() {
		cur.Prio = cur.PrioOrig
		ctx.pushReady(cur.PID)
	}
	if len(ctx.ready) == 0 {
		return nil
	}
	bestIdx := 0
	var best *model.Process
	for i, pid := range ctx.ready {
		cand := ctx.Proc(pid)
		cand.Prio++
		if best == nil || cand.Prio > best.Prio {
			bestIdx, best = i, cand
		}
	}
	ctx.ready = append(ctx.ready[:bestIdx], ctx.ready[bestIdx+1:]...)
	return dispatch(best)
}
