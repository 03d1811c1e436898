package workload

import "fmt"

// Validate checks a workload for the invariants the driver and the policy
// core rely on. The resource-id range check here is what makes out-of-range
// ids at the core boundary unreachable in practice.
func Validate(wl *Workload) error {
	if len(wl.Processes) == 0 {
		return fmt.Errorf("workload has no processes")
	}
	if wl.Resources < 0 {
		return fmt.Errorf("resources must be >= 0, got %d", wl.Resources)
	}

	seen := make(map[int]bool, len(wl.Processes))
	for i := range wl.Processes {
		p := &wl.Processes[i]
		if p.ID < 0 {
			return fmt.Errorf("process[%d]: id must be >= 0, got %d", i, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate process id %d", p.ID)
		}
		seen[p.ID] = true

		if p.Start < 0 {
			return fmt.Errorf("process %d: start must be >= 0, got %d", p.ID, p.Start)
		}
		if p.Lifespan < 1 {
			return fmt.Errorf("process %d: lifespan must be >= 1, got %d", p.ID, p.Lifespan)
		}
		if p.Priority < 0 {
			return fmt.Errorf("process %d: priority must be >= 0, got %d", p.ID, p.Priority)
		}

		held := make(map[int]bool, len(p.Acquisitions))
		for j, a := range p.Acquisitions {
			if a.Resource < 0 || a.Resource >= wl.Resources {
				return fmt.Errorf("process %d: acquisition[%d]: resource %d out of range [0,%d)",
					p.ID, j, a.Resource, wl.Resources)
			}
			if a.At < 0 {
				return fmt.Errorf("process %d: acquisition[%d]: at must be >= 0, got %d", p.ID, j, a.At)
			}
			if a.Duration < 1 {
				return fmt.Errorf("process %d: acquisition[%d]: duration must be >= 1, got %d", p.ID, j, a.Duration)
			}
			if a.ReleaseAt() > p.Lifespan {
				return fmt.Errorf("process %d: acquisition[%d]: hold window [%d,%d) exceeds lifespan %d",
					p.ID, j, a.At, a.ReleaseAt(), p.Lifespan)
			}
			// One live acquisition per resource per process keeps release
			// bookkeeping unambiguous.
			if held[a.Resource] {
				return fmt.Errorf("process %d: resource %d acquired more than once", p.ID, a.Resource)
			}
			held[a.Resource] = true
		}
	}
	return nil
}
