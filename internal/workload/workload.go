// Package workload defines the simulation workload: the set of processes to
// fork, when they arrive, how long they run, and which resources they grab at
// which points of their execution. Workloads are YAML documents, optionally
// augmented by a JavaScript generate block for parameterized process sets.
package workload

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Acquisition declares that a process requests a resource once its age
// reaches At, and holds it for Duration ticks of its own execution.
type Acquisition struct {
	Resource int `yaml:"resource" json:"resource"`
	At       int `yaml:"at" json:"at"`
	Duration int `yaml:"duration" json:"duration"`
}

// ReleaseAt returns the age at which the resource is given back.
func (a Acquisition) ReleaseAt() int {
	return a.At + a.Duration
}

// ProcessSpec describes one process to fork during the simulation.
type ProcessSpec struct {
	ID           int           `yaml:"id" json:"id"`
	Start        int           `yaml:"start" json:"start"` // fork tick
	Lifespan     int           `yaml:"lifespan" json:"lifespan"`
	Priority     int           `yaml:"priority" json:"priority"`
	Acquisitions []Acquisition `yaml:"acquisitions,omitempty" json:"acquisitions,omitempty"`
}

// Workload is a full simulation input.
type Workload struct {
	Name      string         `yaml:"name"`
	Resources int            `yaml:"resources"`
	Processes []ProcessSpec  `yaml:"processes"`
	Params    map[string]any `yaml:"params,omitempty"`   // exposed to the generate script
	Generate  string         `yaml:"generate,omitempty"` // JavaScript returning process specs
}

// Parse reads a workload document, runs its generate block (if any) to extend
// the process list, and validates the result.
func Parse(data []byte) (*Workload, error) {
	var wl Workload
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse workload: %w", err)
	}

	if wl.Generate != "" {
		generated, err := runGenerate(wl.Generate, wl.Params)
		if err != nil {
			return nil, fmt.Errorf("generate block: %w", err)
		}
		wl.Processes = append(wl.Processes, generated...)
	}

	if err := Validate(&wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// Spec returns the process spec with the given ID, or nil.
func (w *Workload) Spec(id int) *ProcessSpec {
	for i := range w.Processes {
		if w.Processes[i].ID == id {
			return &w.Processes[i]
		}
	}
	return nil
}
