package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/sim"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/pkg/model"
)

const testWorkload = `
name: two-procs
resources: 1
processes:
  - {id: 0, start: 0, lifespan: 3, priority: 0}
  - id: 1
    start: 0
    lifespan: 2
    priority: 1
    acquisitions:
      - {resource: 0, at: 0, duration: 2}
`

func testServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	cfg := config.DefaultServerConfig()
	return New(cfg, st, sim.DefaultRegistry(), logger)
}

// do issues a request against the server and decodes the response envelope.
func do(t *testing.T, srv *Server, method, path string, body any) (int, model.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var resp model.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return rec.Code, resp
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	code, resp := do(t, srv, http.MethodGet, "/healthz", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Status != "ok" || resp.RequestID == "" {
		t.Errorf("envelope = %+v, want ok status with request id", resp)
	}
}

func TestListSchedulers(t *testing.T) {
	srv := testServer(t)

	code, resp := do(t, srv, http.MethodGet, "/api/v1/schedulers", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	var infos []schedulerInfo
	remarshal(t, resp.Data, &infos)
	if len(infos) != 8 {
		t.Fatalf("got %d schedulers, want 8", len(infos))
	}

	byKey := make(map[string]string, len(infos))
	for _, info := range infos {
		byKey[info.Key] = info.Name
	}
	if byKey[sim.KeySRTF] != "Shortest Remaining Time First" {
		t.Errorf("srtf name = %q", byKey[sim.KeySRTF])
	}
	if byKey[sim.KeyPIP] != "Priority + PIP Protocol" {
		t.Errorf("prio-pip name = %q", byKey[sim.KeyPIP])
	}
}

func TestCreateRunAndFetch(t *testing.T) {
	srv := testServer(t)

	code, resp := do(t, srv, http.MethodPost, "/api/v1/runs",
		createRunRequest{Scheduler: sim.KeyRR, Workload: testWorkload})
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %+v)", code, resp.Error)
	}

	var run model.Run
	remarshal(t, resp.Data, &run)
	if run.ID == "" || run.State != model.RunStateCompleted {
		t.Fatalf("run = %+v, want completed run with id", run)
	}
	if run.Metrics == nil || len(run.Metrics.Processes) != 2 {
		t.Fatalf("metrics = %+v, want per-process metrics for 2 processes", run.Metrics)
	}

	code, resp = do(t, srv, http.MethodGet, "/api/v1/runs/"+run.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("get run: status = %d, want 200", code)
	}

	code, resp = do(t, srv, http.MethodGet, "/api/v1/runs/"+run.ID+"/trace", nil)
	if code != http.StatusOK {
		t.Fatalf("get trace: status = %d, want 200", code)
	}
	if resp.Pagination == nil || resp.Pagination.Total == 0 {
		t.Errorf("trace pagination = %+v, want nonzero total", resp.Pagination)
	}

	code, resp = do(t, srv, http.MethodGet, "/api/v1/runs/"+run.ID+"/metrics", nil)
	if code != http.StatusOK {
		t.Fatalf("get metrics: status = %d, want 200", code)
	}
	var m model.RunMetrics
	remarshal(t, resp.Data, &m)
	if m.Makespan == 0 {
		t.Errorf("metrics makespan = 0, want > 0")
	}
}

func TestCreateRunRejectsUnknownScheduler(t *testing.T) {
	srv := testServer(t)

	code, resp := do(t, srv, http.MethodPost, "/api/v1/runs",
		createRunRequest{Scheduler: "lottery", Workload: testWorkload})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrValidation {
		t.Errorf("error = %+v, want validation error", resp.Error)
	}
}

func TestCreateRunRejectsBadWorkload(t *testing.T) {
	srv := testServer(t)

	code, resp := do(t, srv, http.MethodPost, "/api/v1/runs",
		createRunRequest{Scheduler: sim.KeyFIFO, Workload: "processes: []\n"})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrValidation {
		t.Errorf("error = %+v, want validation error", resp.Error)
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv := testServer(t)

	code, resp := do(t, srv, http.MethodGet, "/api/v1/runs/run_missing", nil)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want not-found error", resp.Error)
	}
}

func TestDeleteRun(t *testing.T) {
	srv := testServer(t)

	code, resp := do(t, srv, http.MethodPost, "/api/v1/runs",
		createRunRequest{Scheduler: sim.KeyFIFO, Workload: testWorkload})
	if code != http.StatusCreated {
		t.Fatalf("create: status = %d", code)
	}
	var run model.Run
	remarshal(t, resp.Data, &run)

	code, _ = do(t, srv, http.MethodDelete, "/api/v1/runs/"+run.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("delete: status = %d, want 200", code)
	}

	code, _ = do(t, srv, http.MethodGet, "/api/v1/runs/"+run.ID, nil)
	if code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", code)
	}
}

func TestListRunsPagination(t *testing.T) {
	srv := testServer(t)

	for i := 0; i < 3; i++ {
		code, resp := do(t, srv, http.MethodPost, "/api/v1/runs",
			createRunRequest{Scheduler: sim.KeySJF, Workload: testWorkload})
		if code != http.StatusCreated {
			t.Fatalf("create %d: status = %d (error: %+v)", i, code, resp.Error)
		}
	}

	code, resp := do(t, srv, http.MethodGet, "/api/v1/runs?limit=2", nil)
	if code != http.StatusOK {
		t.Fatalf("list: status = %d, want 200", code)
	}
	if resp.Pagination == nil {
		t.Fatal("list response has no pagination")
	}
	if resp.Pagination.Total != 3 || resp.Pagination.Limit != 2 || !resp.Pagination.HasMore {
		t.Errorf("pagination = %+v, want total 3, limit 2, has_more", resp.Pagination)
	}
}

// remarshal converts the envelope's decoded `data` field into a typed value.
func remarshal(t *testing.T, data any, dst any) {
	t.Helper()
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}
