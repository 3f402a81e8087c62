package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/stride.report/internal/gait"
)

// ErrNotFound is returned when no analysis matches the request.
var ErrNotFound = errors.New("analysis not found")

// Status is the processing state of an analysis run.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Analysis is one stored run. Report and Params are only set once the run
// succeeded.
type Analysis struct {
	RunID        string       `json:"run_id"`
	Status       Status       `json:"status"`
	Source       string       `json:"source"`
	Report       *gait.Report `json:"report,omitempty"`
	Params       *gait.Params `json:"params,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	ProcessingMS int64        `json:"processing_ms"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// newRunID is replaced in tests that need stable identifiers.
var newRunID = func() string { return uuid.New().String() }

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func fromUnixSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(math.Round(frac*1e6))*1e3).UTC()
}

// CreateSubmission records a pending analysis of source and returns it.
func (db *DB) CreateSubmission(ctx context.Context, source string, now time.Time) (*Analysis, error) {
	a := &Analysis{
		RunID:     newRunID(),
		Status:    StatusPending,
		Source:    source,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO analyses (run_id, status, source, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		a.RunID, a.Status, a.Source, unixSeconds(now), unixSeconds(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return a, nil
}

// NextPendingSubmission returns the most recently updated pending run, or
// ErrNotFound when the queue is empty.
func (db *DB) NextPendingSubmission(ctx context.Context) (*Analysis, error) {
	row := db.QueryRowContext(ctx, selectAnalysis+` WHERE status = ? ORDER BY updated_at DESC, rowid DESC LIMIT 1`, StatusPending)
	return scanAnalysis(row)
}

// MarkProcessed stores the outcome of a successful run and replaces its
// strike events.
func (db *DB) MarkProcessed(ctx context.Context, runID string, report gait.Report, params gait.Params, events []gait.StrikeEvent, took time.Duration, now time.Time) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE analyses SET
			status = ?, fps = ?, frame_count = ?, valid_frames = ?, total_strikes = ?,
			cadence_spm = ?, predominant_pattern = ?, posture = ?, report_json = ?,
			params_json = ?, error_message = NULL, processing_ms = ?, updated_at = ?
		WHERE run_id = ?`,
		StatusSuccess, report.FPS, report.FrameCount, report.ValidFrames, report.TotalStrikes,
		report.Cadence, string(report.PredominantPattern), string(report.Posture), string(reportJSON),
		string(paramsJSON), took.Milliseconds(), unixSeconds(now),
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM strike_events WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear strike events: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO strike_events (run_id, frame, side, pattern, angle_deg) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare strike event insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, runID, e.Frame, e.Side.String(), string(e.Pattern), e.AngleDeg); err != nil {
			return fmt.Errorf("failed to insert strike event at frame %d: %w", e.Frame, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis %s: %w", runID, err)
	}
	logf("stored run %s: %d strikes, %.1f spm", runID, report.TotalStrikes, report.Cadence)
	return nil
}

// MarkFailed records why a run could not be analysed.
func (db *DB) MarkFailed(ctx context.Context, runID, message string, took time.Duration, now time.Time) error {
	res, err := db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, error_message = ?, processing_ms = ?, updated_at = ? WHERE run_id = ?`,
		StatusFailed, message, took.Milliseconds(), unixSeconds(now), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark analysis %s failed: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	logf("run %s failed: %s", runID, message)
	return nil
}

// GetAnalysis returns one run by ID.
func (db *DB) GetAnalysis(ctx context.Context, runID string) (*Analysis, error) {
	return scanAnalysis(db.QueryRowContext(ctx, selectAnalysis+` WHERE run_id = ?`, runID))
}

// ListFilter narrows ListAnalyses.
type ListFilter struct {
	Status Status // empty for all
	Limit  int    // 0 for the default of 100
}

// ListAnalyses returns runs newest first.
func (db *DB) ListAnalyses(ctx context.Context, f ListFilter) ([]Analysis, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query := selectAnalysis
	args := []any{}
	if f.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StrikeEvents returns the stored events of a run in chronological order,
// left before right within a frame.
func (db *DB) StrikeEvents(ctx context.Context, runID string) ([]gait.StrikeEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT frame, side, pattern, angle_deg FROM strike_events WHERE run_id = ?
		 ORDER BY frame, CASE side WHEN 'left' THEN 0 ELSE 1 END`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query strike events: %w", err)
	}
	defer rows.Close()

	var events []gait.StrikeEvent
	for rows.Next() {
		var (
			e       gait.StrikeEvent
			side    string
			pattern string
		)
		if err := rows.Scan(&e.Frame, &side, &pattern, &e.AngleDeg); err != nil {
			return nil, err
		}
		if e.Side, err = gait.ParseSide(side); err != nil {
			return nil, err
		}
		e.Pattern = gait.StrikePattern(pattern)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

const selectAnalysis = `SELECT run_id, status, source, report_json, params_json, error_message,
	processing_ms, created_at, updated_at FROM analyses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	var (
		a          Analysis
		reportJSON sql.NullString
		paramsJSON sql.NullString
		errMsg     sql.NullString
		took       sql.NullInt64
		created    float64
		updated    float64
	)
	err := row.Scan(&a.RunID, &a.Status, &a.Source, &reportJSON, &paramsJSON, &errMsg, &took, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}
	if reportJSON.Valid {
		a.Report = new(gait.Report)
		if err := json.Unmarshal([]byte(reportJSON.String), a.Report); err != nil {
			return nil, fmt.Errorf("failed to decode report of %s: %w", a.RunID, err)
		}
	}
	if paramsJSON.Valid {
		a.Params = new(gait.Params)
		if err := json.Unmarshal([]byte(paramsJSON.String), a.Params); err != nil {
			return nil, fmt.Errorf("failed to decode params of %s: %w", a.RunID, err)
		}
	}
	a.ErrorMessage = errMsg.String
	a.ProcessingMS = took.Int64
	a.CreatedAt = fromUnixSeconds(created)
	a.UpdatedAt = fromUnixSeconds(updated)
	return &a, nil
}
