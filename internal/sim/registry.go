package sim

import (
	"fmt"
	"sort"
)

// Canonical scheduler keys, used for selection by the CLI and the API.
const (
	KeyFIFO  = "fifo"
	KeySJF   = "sjf"
	KeySRTF  = "srtf"
	KeyRR    = "rr"
	KeyPrio  = "prio"
	KeyAging = "prio-aging"
	KeyPCP   = "prio-pcp"
	KeyPIP   = "prio-pip"
)

// Registry maps scheduler keys to their Scheduler implementations.
// Registration happens at startup before concurrent access, so no mutex is
// needed.
type Registry struct {
	schedulers map[string]Scheduler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{schedulers: make(map[string]Scheduler)}
}

// Register adds a Scheduler under the given key.
func (r *Registry) Register(key string, s Scheduler) {
	r.schedulers[key] = s
}

// Get returns the Scheduler for the given key or an error if none is
// registered.
func (r *Registry) Get(key string) (Scheduler, error) {
	s, ok := r.schedulers[key]
	if !ok {
		return nil, fmt.Errorf("no scheduler registered for key %q", key)
	}
	return s, nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.schedulers))
	for k := range r.schedulers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultRegistry returns a Registry holding the full catalog of eight
// scheduler variants.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KeyFIFO, fifoScheduler{base: base{name: "FIFO"}})
	r.Register(KeySJF, sjfScheduler{base: base{name: "Shortest-Job First"}})
	r.Register(KeySRTF, srtfScheduler{base: base{name: "Shortest Remaining Time First"}})
	r.Register(KeyRR, rrScheduler{base: base{name: "Round-Robin"}})
	r.Register(KeyPrio, prioScheduler{base: base{name: "Priority"}})
	r.Register(KeyAging, agingScheduler{base: base{name: "Priority + aging"}})
	r.Register(KeyPCP, pcpScheduler{base: base{name: "Priority + PCP Protocol"}})
	r.Register(KeyPIP, pipScheduler{base: base{name: "Priority + PIP Protocol"}})
	return r
}
