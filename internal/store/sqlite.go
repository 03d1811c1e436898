package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/schedsim/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// An in-memory database exists per connection; cap the pool so every
	// query sees the same one.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Run CRUD ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	metricsJSON, err := marshalMetrics(run.Metrics)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, scheduler, workload, state, metrics, error, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scheduler, run.Workload, run.State, metricsJSON, run.Error,
		run.CreatedAt.Format(time.RFC3339Nano), formatTimePtr(run.CompletedAt),
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, scheduler, workload, state, metrics, error, created_at, completed_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	opts.Clamp()
	s.logger.Debug("sql", "op", "select", "table", "runs", "state", opts.State, "limit", opts.Limit, "offset", opts.Offset)

	where := ""
	args := []any{}
	if opts.State != "" {
		where = " WHERE state = ?"
		args = append(args, opts.State)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	query := `SELECT id, scheduler, workload, state, metrics, error, created_at, completed_at
		 FROM runs` + where + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "update", "table", "runs", "id", run.ID, "state", run.State)

	// The run lifecycle is append-only: PENDING -> RUNNING -> COMPLETED or
	// FAILED. Guard it here so no caller can rewind a terminal run.
	var prev model.RunState
	err := s.db.QueryRowContext(ctx, `SELECT state FROM runs WHERE id = ?`, run.ID).Scan(&prev)
	if err == sql.ErrNoRows {
		return fmt.Errorf("run %s not found", run.ID)
	}
	if err != nil {
		return err
	}
	if prev != run.State && !prev.CanTransitionTo(run.State) {
		return &model.InvalidTransitionError{
			Entity: "run", ID: run.ID,
			From: prev.String(), To: run.State.String(),
		}
	}

	metricsJSON, err := marshalMetrics(run.Metrics)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET scheduler = ?, workload = ?, state = ?, metrics = ?, error = ?, completed_at = ?
		 WHERE id = ?`,
		run.Scheduler, run.Workload, run.State, metricsJSON, run.Error,
		formatTimePtr(run.CompletedAt), run.ID,
	)
	return err
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM trace_events WHERE run_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

// --- Trace operations ---

func (s *SQLiteStore) AppendTrace(ctx context.Context, runID string, events []model.TraceEvent) error {
	if len(events) == 0 {
		return nil
	}
	s.logger.Debug("sql", "op", "insert", "table", "trace_events", "run_id", runID, "count", len(events))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trace_events (run_id, seq, tick, kind, pid, resource, prio)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, runID, ev.Seq, ev.Tick, ev.Kind, ev.PID, ev.Resource, ev.Prio); err != nil {
			return fmt.Errorf("insert trace event seq %d: %w", ev.Seq, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListTrace(ctx context.Context, runID string, opts model.ListOptions) ([]model.TraceEvent, int, error) {
	opts.Clamp()
	s.logger.Debug("sql", "op", "select", "table", "trace_events", "run_id", runID, "limit", opts.Limit, "offset", opts.Offset)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trace_events WHERE run_id = ?`, runID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count trace events: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, tick, kind, pid, resource, prio FROM trace_events
		 WHERE run_id = ? ORDER BY seq LIMIT ? OFFSET ?`,
		runID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []model.TraceEvent
	for rows.Next() {
		var ev model.TraceEvent
		if err := rows.Scan(&ev.Seq, &ev.Tick, &ev.Kind, &ev.PID, &ev.Resource, &ev.Prio); err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}
	return events, total, rows.Err()
}

// --- helpers ---

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.Run, error) {
	var run model.Run
	var metricsJSON sql.NullString
	var createdAt string
	var completedAt sql.NullString

	err := sc.Scan(&run.ID, &run.Scheduler, &run.Workload, &run.State,
		&metricsJSON, &run.Error, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if metricsJSON.Valid && metricsJSON.String != "" {
		var m model.RunMetrics
		if err := json.Unmarshal([]byte(metricsJSON.String), &m); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
		run.Metrics = &m
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if completedAt.Valid && completedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		run.CompletedAt = &t
	}
	return &run, nil
}

func marshalMetrics(m *model.RunMetrics) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}
	return string(b), nil
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}
