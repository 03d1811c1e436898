package workload

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// runGenerate evaluates a workload's JavaScript generate block and converts
// its result into process specs. The script sees the workload's params map as
// a global `params` object and must evaluate to an array of objects with the
// ProcessSpec fields, e.g.:
//
//	generate: |
//	  var procs = [];
//	  for (var i = 0; i < params.n; i++) {
//	    procs.push({id: i, start: 0, lifespan: 3 + i, priority: 0});
//	  }
//	  procs;
//
// Each generated spec must carry an explicit id; validation rejects
// duplicates against the literal process list.
func runGenerate(script string, params map[string]any) ([]ProcessSpec, error) {
	vm := goja.New()

	if params == nil {
		params = map[string]any{}
	}
	if err := vm.Set("params", params); err != nil {
		return nil, fmt.Errorf("set params: %w", err)
	}

	value, err := vm.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, fmt.Errorf("script produced no value (did you forget the trailing expression?)")
	}

	// Round-trip through JSON to coerce goja's exported values into specs.
	raw, err := json.Marshal(value.Export())
	if err != nil {
		return nil, fmt.Errorf("marshal script result: %w", err)
	}

	var specs []ProcessSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("script result is not a process list: %w", err)
	}
	return specs, nil
}
