package workload

import (
	"strings"
	"testing"
)

func TestParseLiteralWorkload(t *testing.T) {
	wl, err := Parse([]byte(`
name: basic
resources: 2
processes:
  - {id: 0, start: 0, lifespan: 5, priority: 1}
  - id: 1
    start: 2
    lifespan: 3
    priority: 4
    acquisitions:
      - {resource: 1, at: 0, duration: 2}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if wl.Name != "basic" || wl.Resources != 2 {
		t.Errorf("header = %q/%d, want basic/2", wl.Name, wl.Resources)
	}
	if len(wl.Processes) != 2 {
		t.Fatalf("got %d processes, want 2", len(wl.Processes))
	}

	spec := wl.Spec(1)
	if spec == nil {
		t.Fatal("Spec(1) = nil")
	}
	if len(spec.Acquisitions) != 1 || spec.Acquisitions[0].ReleaseAt() != 2 {
		t.Errorf("acquisitions = %+v, want one releasing at age 2", spec.Acquisitions)
	}
}

func TestParseGenerateBlock(t *testing.T) {
	wl, err := Parse([]byte(`
name: generated
resources: 0
params:
  n: 4
  span: 3
generate: |
  var procs = [];
  for (var i = 0; i < params.n; i++) {
    procs.push({id: i, start: i, lifespan: params.span, priority: i % 2});
  }
  procs;
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(wl.Processes) != 4 {
		t.Fatalf("got %d generated processes, want 4", len(wl.Processes))
	}
	for i, p := range wl.Processes {
		if p.ID != i || p.Start != i || p.Lifespan != 3 {
			t.Errorf("process[%d] = %+v, want id/start %d, lifespan 3", i, p, i)
		}
	}
}

func TestGenerateAppendsToLiteralProcesses(t *testing.T) {
	wl, err := Parse([]byte(`
name: both
resources: 0
processes:
  - {id: 100, start: 0, lifespan: 1, priority: 0}
generate: |
  [{id: 0, start: 0, lifespan: 2, priority: 0}];
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(wl.Processes) != 2 {
		t.Fatalf("got %d processes, want literal + generated = 2", len(wl.Processes))
	}
}

func TestGenerateScriptErrors(t *testing.T) {
	cases := []struct {
		name   string
		doc    string
		errSub string
	}{
		{
			name:   "syntax error",
			doc:    "resources: 0\ngenerate: \"var (\"\n",
			errSub: "generate block",
		},
		{
			name:   "no trailing expression",
			doc:    "resources: 0\ngenerate: \"var x = 1;\"\n",
			errSub: "no value",
		},
		{
			name:   "not a process list",
			doc:    "resources: 0\ngenerate: \"42;\"\n",
			errSub: "not a process list",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.errSub) {
				t.Errorf("error = %v, want substring %q", err, tc.errSub)
			}
		})
	}
}

func TestValidateRejectsBadWorkloads(t *testing.T) {
	cases := []struct {
		name   string
		wl     Workload
		errSub string
	}{
		{
			name:   "empty",
			wl:     Workload{},
			errSub: "no processes",
		},
		{
			name: "duplicate id",
			wl: Workload{Processes: []ProcessSpec{
				{ID: 1, Lifespan: 1}, {ID: 1, Lifespan: 1},
			}},
			errSub: "duplicate process id",
		},
		{
			name: "zero lifespan",
			wl: Workload{Processes: []ProcessSpec{
				{ID: 0, Lifespan: 0},
			}},
			errSub: "lifespan",
		},
		{
			name: "resource out of range",
			wl: Workload{Resources: 1, Processes: []ProcessSpec{
				{ID: 0, Lifespan: 3, Acquisitions: []Acquisition{{Resource: 1, At: 0, Duration: 1}}},
			}},
			errSub: "out of range",
		},
		{
			name: "hold exceeds lifespan",
			wl: Workload{Resources: 1, Processes: []ProcessSpec{
				{ID: 0, Lifespan: 2, Acquisitions: []Acquisition{{Resource: 0, At: 1, Duration: 2}}},
			}},
			errSub: "exceeds lifespan",
		},
		{
			name: "double acquisition of one resource",
			wl: Workload{Resources: 1, Processes: []ProcessSpec{
				{ID: 0, Lifespan: 5, Acquisitions: []Acquisition{
					{Resource: 0, At: 0, Duration: 1},
					{Resource: 0, At: 2, Duration: 1},
				}},
			}},
			errSub: "more than once",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.wl)
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.errSub) {
				t.Errorf("error = %v, want substring %q", err, tc.errSub)
			}
		})
	}
}
