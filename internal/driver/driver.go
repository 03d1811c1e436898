// Package driver advances simulated time over a workload: it forks processes
// on schedule, asks the selected scheduler for the process to run each tick,
// fires that process's resource acquisitions and releases at the right points
// of its execution, and records a trace plus per-process metrics.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/me/schedsim/internal/sim"
	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

// Config holds driver configuration.
type Config struct {
	// MaxTicks aborts the simulation if it runs this long without finishing,
	// which is how a deadlocked workload surfaces as an error instead of a
	// spin.
	MaxTicks int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxTicks: 1_000_000}
}

// procStat accumulates the raw per-process timing a run report is built from.
type procStat struct {
	start      int
	firstRun   int
	completion int
}

// Driver runs one workload under one scheduler to completion.
type Driver struct {
	sched  sim.Scheduler
	wl     *workload.Workload
	config Config
	logger *slog.Logger

	sim     *sim.Context
	pending []workload.ProcessSpec // not yet forked, sorted by Start
	held    map[int]map[int]int    // PID -> resource -> release age
	stats   map[int]*procStat
	trace   []model.TraceEvent

	seq       int
	live      int
	lastRan   int
	idleTicks int
	switches  int
}

// New creates a Driver for the given workload and scheduler.
func New(wl *workload.Workload, sched sim.Scheduler, cfg Config, logger *slog.Logger) *Driver {
	pending := make([]workload.ProcessSpec, len(wl.Processes))
	copy(pending, wl.Processes)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Start < pending[j].Start })

	return &Driver{
		sched:   sched,
		wl:      wl,
		config:  cfg,
		logger:  logger.With("component", "driver", "scheduler", sched.Name()),
		sim:     sim.NewContext(wl.Resources),
		pending: pending,
		held:    make(map[int]map[int]int),
		stats:   make(map[int]*procStat),
		lastRan: model.NoPID,
	}
}

// Run executes the simulation to completion and returns the run metrics.
// The context only bounds wall-clock execution; simulated time is ticks.
func (d *Driver) Run(ctx context.Context) (*model.RunMetrics, error) {
	if err := d.sched.Initialize(d.sim); err != nil {
		return nil, fmt.Errorf("initialize scheduler: %w", err)
	}
	defer d.sched.Finalize(d.sim)

	d.logger.Info("simulation started",
		"processes", len(d.pending), "resources", d.wl.Resources)

	for !d.done() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if d.sim.Ticks >= d.config.MaxTicks {
			return nil, fmt.Errorf("simulation exceeded %d ticks (deadlocked workload?)", d.config.MaxTicks)
		}
		d.Step()
	}

	d.logger.Info("simulation finished",
		"ticks", d.sim.Ticks, "switches", d.switches, "idle_ticks", d.idleTicks)

	return d.metrics(), nil
}

// Trace returns the events recorded so far.
func (d *Driver) Trace() []model.TraceEvent {
	return d.trace
}

// Ticks returns the current simulated time.
func (d *Driver) Ticks() int {
	return d.sim.Ticks
}

// done reports whether every process has been forked and completed.
func (d *Driver) done() bool {
	return len(d.pending) == 0 && d.live == 0
}

// Step advances the simulation by exactly one tick. Exposed for tests and
// for the playback UI.
func (d *Driver) Step() {
	d.forkArrivals()

	next := d.pick()
	if next == nil {
		d.event(model.EventIdle, model.NoPID, model.TraceEvent{})
		d.idleTicks++
		d.sim.Ticks++
		return
	}

	st := d.stats[next.PID]
	if st.firstRun < 0 {
		st.firstRun = d.sim.Ticks
	}
	if d.lastRan != model.NoPID && d.lastRan != next.PID {
		d.switches++
	}
	d.lastRan = next.PID

	d.event(model.EventRun, next.PID, model.TraceEvent{Prio: next.Prio})
	next.Age++
	d.sim.Ticks++

	d.releaseDue(next)

	if next.Done() {
		st.completion = d.sim.Ticks
		d.event(model.EventExit, next.PID, model.TraceEvent{})
		d.sim.Current = model.NoPID
		d.sim.Retire(next.PID)
		d.live--
		d.logger.Debug("process exited", "pid", next.PID, "tick", d.sim.Ticks)
	}
}

// forkArrivals admits every pending process whose start tick has come.
func (d *Driver) forkArrivals() {
	for len(d.pending) > 0 && d.pending[0].Start <= d.sim.Ticks {
		spec := d.pending[0]
		d.pending = d.pending[1:]

		p := &model.Process{
			PID:      spec.ID,
			Lifespan: spec.Lifespan,
			Prio:     spec.Priority,
			PrioOrig: spec.Priority,
		}
		d.sim.Admit(p)
		d.stats[p.PID] = &procStat{start: d.sim.Ticks, firstRun: -1}
		d.live++
		d.event(model.EventFork, p.PID, model.TraceEvent{Prio: p.Prio})
		d.logger.Debug("process forked", "pid", p.PID, "tick", d.sim.Ticks)
	}
}

// pick asks the scheduler for the next process until one of them gets past
// its due resource acquisitions, or nobody is runnable. Each denied process
// has left the ready queue for a wait set, so the loop terminates.
func (d *Driver) pick() *model.Process {
	for {
		next := d.sched.Schedule(d.sim)
		if next == nil {
			d.sim.Current = model.NoPID
			return nil
		}
		d.sim.Current = next.PID
		if d.acquireDue(next) {
			return next
		}
	}
}

// acquireDue fires every acquisition that is due at p's current age and not
// already held. Returns false as soon as one is denied, leaving p WAITING.
// A woken process retries here on its next dispatch: its age has not
// advanced, so the same acquisition is still due.
func (d *Driver) acquireDue(p *model.Process) bool {
	spec := d.wl.Spec(p.PID)
	if spec == nil {
		return true
	}
	for _, a := range spec.Acquisitions {
		if a.At != p.Age || d.holds(p.PID, a.Resource) {
			continue
		}
		if !d.sched.Acquire(d.sim, a.Resource) {
			d.event(model.EventBlock, p.PID, model.TraceEvent{Resource: a.Resource})
			d.logger.Debug("process blocked", "pid", p.PID, "resource", a.Resource, "tick", d.sim.Ticks)
			return false
		}
		if d.held[p.PID] == nil {
			d.held[p.PID] = make(map[int]int)
		}
		d.held[p.PID][a.Resource] = a.ReleaseAt()
		d.event(model.EventAcquire, p.PID, model.TraceEvent{Resource: a.Resource, Prio: p.Prio})
	}
	return true
}

// releaseDue releases every resource whose hold window ends at p's new age.
func (d *Driver) releaseDue(p *model.Process) {
	holds := d.held[p.PID]
	if len(holds) == 0 {
		return
	}
	rids := make([]int, 0, len(holds))
	for rid, end := range holds {
		if end == p.Age {
			rids = append(rids, rid)
		}
	}
	sort.Ints(rids)

	for _, rid := range rids {
		before := d.sim.Waiters(rid)
		d.sched.Release(d.sim, rid)
		delete(holds, rid)
		d.event(model.EventRelease, p.PID, model.TraceEvent{Resource: rid, Prio: p.Prio})

		if woken := wokenPID(before, d.sim.Waiters(rid)); woken != model.NoPID {
			d.event(model.EventWake, woken, model.TraceEvent{Resource: rid})
		}
	}
}

// holds reports whether pid currently owns rid.
func (d *Driver) holds(pid, rid int) bool {
	_, ok := d.held[pid][rid]
	return ok
}

// wokenPID returns the single PID present in before but not in after.
func wokenPID(before, after []int) int {
	remaining := make(map[int]bool, len(after))
	for _, pid := range after {
		remaining[pid] = true
	}
	for _, pid := range before {
		if !remaining[pid] {
			return pid
		}
	}
	return model.NoPID
}

// event appends a trace event, filling in seq, tick, kind, and pid.
func (d *Driver) event(kind model.EventKind, pid int, ev model.TraceEvent) {
	ev.Seq = d.seq
	ev.Tick = d.sim.Ticks
	ev.Kind = kind
	ev.PID = pid
	d.seq++
	d.trace = append(d.trace, ev)
}

// metrics assembles the final run report from the accumulated stats.
func (d *Driver) metrics() *model.RunMetrics {
	m := &model.RunMetrics{
		IdleTicks: d.idleTicks,
		Switches:  d.switches,
	}

	pids := make([]int, 0, len(d.stats))
	for pid := range d.stats {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	var sumT, sumW, sumR int
	for _, pid := range pids {
		st := d.stats[pid]
		spec := d.wl.Spec(pid)
		pm := model.ProcessMetrics{
			PID:        pid,
			Start:      st.start,
			Completion: st.completion,
			Turnaround: st.completion - st.start,
			Response:   st.firstRun - st.start,
		}
		pm.Waiting = pm.Turnaround - spec.Lifespan
		m.Processes = append(m.Processes, pm)

		sumT += pm.Turnaround
		sumW += pm.Waiting
		sumR += pm.Response
		if st.completion > m.Makespan {
			m.Makespan = st.completion
		}
	}

	n := float64(len(pids))
	if n > 0 {
		m.AvgTurnaround = float64(sumT) / n
		m.AvgWaiting = float64(sumW) / n
		m.AvgResponse = float64(sumR) / n
	}
	return m
}
