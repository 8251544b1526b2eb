package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/M-Vagrant/apollo/internal/planning"
)

// defaultListLimit bounds ListCycles when the caller passes no limit.
const defaultListLimit = 100

// CycleStore provides persistence for planning cycle records.
type CycleStore struct {
	db *sql.DB
}

// NewCycleStore creates a new CycleStore.
func NewCycleStore(db *sql.DB) *CycleStore {
	return &CycleStore{db: db}
}

// RecordCycle persists one cycle record. It implements
// planning.CycleRecorder.
func (s *CycleStore) RecordCycle(ctx context.Context, rec planning.CycleRecord) error {
	query := `
		INSERT INTO planning_cycles (
			run_id, seq, status, error_kind, error,
			started_at_ns, completed_at_ns, duration_ms,
			pose_x, pose_y, pose_heading,
			obstacle_count, reference_lines, primary_length_m, trajectory_points,
			inputs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.RunID,
		rec.Seq,
		rec.Status,
		nullString(rec.ErrorKind),
		nullString(rec.Error),
		rec.StartedAt.UnixNano(),
		rec.CompletedAt.UnixNano(),
		rec.DurationMS,
		rec.PoseX,
		rec.PoseY,
		rec.PoseHeading,
		rec.ObstacleCount,
		rec.ReferenceLines,
		rec.PrimaryLengthM,
		rec.TrajectoryPoints,
		nullString(string(rec.Inputs)),
	)
	if err != nil {
		return fmt.Errorf("insert cycle %s/%d: %w", rec.RunID, rec.Seq, err)
	}

	return nil
}

// GetCycle retrieves a single cycle by run id and sequence number.
func (s *CycleStore) GetCycle(ctx context.Context, runID string, seq uint32) (*planning.CycleRecord, error) {
	query := cycleColumns + ` WHERE run_id = ? AND seq = ?`

	rec, err := scanCycle(s.db.QueryRowContext(ctx, query, runID, seq))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cycle not found: run %s seq %d", runID, seq)
	}
	if err != nil {
		return nil, fmt.Errorf("get cycle %s/%d: %w", runID, seq, err)
	}

	return rec, nil
}

// ListCycles retrieves the most recent limit cycles of a run, ordered by
// ascending sequence number. A limit of zero or less uses a default.
func (s *CycleStore) ListCycles(ctx context.Context, runID string, limit int) ([]*planning.CycleRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := cycleColumns + ` WHERE run_id = ? ORDER BY seq DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("list cycles for run %s: %w", runID, err)
	}
	defer rows.Close()

	var recs []*planning.CycleRecord
	for rows.Next() {
		rec, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycle rows: %w", err)
	}

	// The query walks newest first to honour the limit; callers get
	// ascending sequence order.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}

	return recs, nil
}

// LatestRunID returns the run id of the most recently started cycle.
func (s *CycleStore) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM planning_cycles ORDER BY started_at_ns DESC, seq DESC LIMIT 1`,
	).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no cycles recorded")
	}
	if err != nil {
		return "", fmt.Errorf("latest run id: %w", err)
	}

	return runID, nil
}

// RunSummary aggregates the recorded cycles of one planner run.
type RunSummary struct {
	RunID         string         `json:"run_id"`
	Cycles        int            `json:"cycles"`
	Failed        int            `json:"failed"`
	AvgDurationMS float64        `json:"avg_duration_ms"`
	MaxDurationMS float64        `json:"max_duration_ms"`
	AvgObstacles  float64        `json:"avg_obstacles"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   time.Time      `json:"completed_at"`
	ErrorKinds    map[string]int `json:"error_kinds,omitempty"`
}

// Summarize computes counts and latency aggregates for a run. A run with
// no recorded cycles yields a summary with Cycles == 0.
func (s *CycleStore) Summarize(ctx context.Context, runID string) (*RunSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(duration_ms), 0),
		       COALESCE(MAX(duration_ms), 0),
		       COALESCE(AVG(obstacle_count), 0),
		       COALESCE(MIN(started_at_ns), 0),
		       COALESCE(MAX(completed_at_ns), 0)
		FROM planning_cycles
		WHERE run_id = ?
	`

	sum := &RunSummary{RunID: runID}
	var startedNs, completedNs int64
	err := s.db.QueryRowContext(ctx, query, planning.CycleStatusFailed, runID).Scan(
		&sum.Cycles,
		&sum.Failed,
		&sum.AvgDurationMS,
		&sum.MaxDurationMS,
		&sum.AvgObstacles,
		&startedNs,
		&completedNs,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize run %s: %w", runID, err)
	}
	if sum.Cycles == 0 {
		return sum, nil
	}
	sum.StartedAt = time.Unix(0, startedNs)
	sum.CompletedAt = time.Unix(0, completedNs)

	kinds, err := s.errorKinds(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(kinds) > 0 {
		sum.ErrorKinds = kinds
	}

	return sum, nil
}

func (s *CycleStore) errorKinds(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(error_kind, ''), COUNT(*)
		FROM planning_cycles
		WHERE run_id = ? AND status = ?
		GROUP BY error_kind
	`, runID, planning.CycleStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("group error kinds for run %s: %w", runID, err)
	}
	defer rows.Close()

	kinds := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan error kind row: %w", err)
		}
		kinds[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error kind rows: %w", err)
	}

	return kinds, nil
}

const cycleColumns = `
	SELECT run_id, seq, status, error_kind, error,
	       started_at_ns, completed_at_ns, duration_ms,
	       pose_x, pose_y, pose_heading,
	       obstacle_count, reference_lines, primary_length_m, trajectory_points,
	       inputs
	FROM planning_cycles`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (*planning.CycleRecord, error) {
	var rec planning.CycleRecord
	var errorKind, errMsg, inputs sql.NullString
	var startedNs, completedNs int64

	err := row.Scan(
		&rec.RunID,
		&rec.Seq,
		&rec.Status,
		&errorKind,
		&errMsg,
		&startedNs,
		&completedNs,
		&rec.DurationMS,
		&rec.PoseX,
		&rec.PoseY,
		&rec.PoseHeading,
		&rec.ObstacleCount,
		&rec.ReferenceLines,
		&rec.PrimaryLengthM,
		&rec.TrajectoryPoints,
		&inputs,
	)
	if err != nil {
		return nil, err
	}

	if errorKind.Valid {
		rec.ErrorKind = errorKind.String
	}
	if errMsg.Valid {
		rec.Error = errMsg.String
	}
	if inputs.Valid && inputs.String != "" {
		rec.Inputs = []byte(inputs.String)
	}
	rec.StartedAt = time.Unix(0, startedNs)
	rec.CompletedAt = time.Unix(0, completedNs)

	return &rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
