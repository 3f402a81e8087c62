package db

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stride.report/internal/gait"
	"github.com/banshee-data/stride.report/internal/monitoring"
)

func quietLogs(t *testing.T) {
	t.Helper()
	old := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(old) })
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	quietLogs(t)
	db, err := NewDB(filepath.Join(t.TempDir(), "stride.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sequentialRunIDs(t *testing.T) {
	t.Helper()
	old := newRunID
	n := 0
	newRunID = func() string {
		n++
		return fmt.Sprintf("run-%03d", n)
	}
	t.Cleanup(func() { newRunID = old })
}

var t0 = time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC)

func TestNewDB_AppliesMigrations(t *testing.T) {
	db := newTestDB(t)

	status, err := db.GetMigrationStatus(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(3), status.LatestVersion)
	assert.Equal(t, uint(3), status.CurrentVersion)
	assert.False(t, status.Dirty)
	assert.False(t, status.Pending())

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", strings.ToLower(mode))
}

func TestMigrateDownAndUp(t *testing.T) {
	quietLogs(t)
	db, err := OpenDB(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer db.Close()

	migrations := MigrationsFS()
	v, dirty, err := db.MigrateVersion(migrations)
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateTo(migrations, 2))
	status, err := db.GetMigrationStatus(migrations)
	require.NoError(t, err)
	assert.True(t, status.Pending())

	require.NoError(t, db.MigrateUp(migrations))
	require.NoError(t, db.MigrateDown(migrations))
	v, _, err = db.MigrateVersion(migrations)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)

	require.NoError(t, db.MigrateForce(migrations, 3))
	v, _, err = db.MigrateVersion(migrations)
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
}

func TestLatestMigrationVersion(t *testing.T) {
	v, err := LatestMigrationVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
}

func sampleReport() (gait.Report, []gait.StrikeEvent) {
	events := []gait.StrikeEvent{
		{Frame: 20, Side: gait.Left, Pattern: gait.PatternHeel, AngleDeg: -11.5},
		{Frame: 35, Side: gait.Right, Pattern: gait.PatternMidfoot, AngleDeg: 2},
		{Frame: 35, Side: gait.Left, Pattern: gait.PatternForefoot, AngleDeg: 8.25},
	}
	samples := []gait.PostureSample{
		{Frame: 0, AngleDeg: 3, Category: gait.PostureGood},
		{Frame: 1, AngleDeg: 12, Category: gait.PostureForwardLean},
	}
	ordered := []gait.StrikeEvent{events[0], events[2], events[1]}
	return gait.Summarize(ordered, samples, 100, 30, gait.DefaultParams()), events
}

func TestSubmissionLifecycle(t *testing.T) {
	db := newTestDB(t)
	sequentialRunIDs(t)
	ctx := context.Background()

	a, err := db.CreateSubmission(ctx, "morning.json", t0)
	require.NoError(t, err)
	assert.Equal(t, "run-001", a.RunID)
	assert.Equal(t, StatusPending, a.Status)

	_, err = db.CreateSubmission(ctx, "evening.json", t0.Add(time.Minute))
	require.NoError(t, err)

	next, err := db.NextPendingSubmission(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-002", next.RunID, "most recently updated pending run is picked first")
	assert.Equal(t, "evening.json", next.Source)
	assert.True(t, next.CreatedAt.Equal(t0.Add(time.Minute)), "created_at = %v", next.CreatedAt)

	report, events := sampleReport()
	params := gait.DefaultParams()
	require.NoError(t, db.MarkProcessed(ctx, next.RunID, report, params, events, 1500*time.Millisecond, t0.Add(2*time.Minute)))

	got, err := db.GetAnalysis(ctx, "run-002")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, int64(1500), got.ProcessingMS)
	require.NotNil(t, got.Report)
	assert.Equal(t, report, *got.Report)
	require.NotNil(t, got.Params)
	assert.Equal(t, params, *got.Params)
	assert.Empty(t, got.ErrorMessage)

	stored, err := db.StrikeEvents(ctx, "run-002")
	require.NoError(t, err)
	assert.Equal(t, []gait.StrikeEvent{events[0], events[2], events[1]}, stored)

	next, err = db.NextPendingSubmission(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-001", next.RunID)

	require.NoError(t, db.MarkFailed(ctx, next.RunID, "insufficient valid frames for analysis: 3 of 10 required", 20*time.Millisecond, t0.Add(3*time.Minute)))
	failed, err := db.GetAnalysis(ctx, "run-001")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Nil(t, failed.Report)
	assert.Contains(t, failed.ErrorMessage, "insufficient valid frames")

	_, err = db.NextPendingSubmission(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkProcessedReplacesEvents(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a, err := db.CreateSubmission(ctx, "upload", t0)
	require.NoError(t, err)
	report, events := sampleReport()

	require.NoError(t, db.MarkProcessed(ctx, a.RunID, report, gait.DefaultParams(), events, 0, t0))
	require.NoError(t, db.MarkProcessed(ctx, a.RunID, report, gait.DefaultParams(), events[:1], 0, t0))

	stored, err := db.StrikeEvents(ctx, a.RunID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestUnknownRun(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	report, events := sampleReport()

	_, err := db.GetAnalysis(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.MarkProcessed(ctx, "missing", report, gait.DefaultParams(), events, 0, t0), ErrNotFound)
	assert.ErrorIs(t, db.MarkFailed(ctx, "missing", "boom", 0, t0), ErrNotFound)

	stored, err := db.StrikeEvents(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestListAnalyses(t *testing.T) {
	db := newTestDB(t)
	sequentialRunIDs(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := db.CreateSubmission(ctx, fmt.Sprintf("run%d.json", i), t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}
	require.NoError(t, db.MarkFailed(ctx, "run-002", "bad input", 0, t0))

	all, err := db.ListAnalyses(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "run-004", all[0].RunID)
	assert.Equal(t, "run-001", all[3].RunID)

	pending, err := db.ListAnalyses(ctx, ListFilter{Status: StatusPending, Limit: 2})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "run-004", pending[0].RunID)
	assert.Equal(t, "run-003", pending[1].RunID)

	failed, err := db.ListAnalyses(ctx, ListFilter{Status: StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad input", failed[0].ErrorMessage)
}

func TestForeignKeyRejectsOrphanEvents(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`INSERT INTO strike_events (run_id, frame, side, pattern, angle_deg) VALUES ('ghost', 1, 'left', 'heel', -9)`)
	assert.Error(t, err)
}

func TestAdminRoutes(t *testing.T) {
	db := newTestDB(t)
	_, err := db.CreateSubmission(context.Background(), "upload", t0)
	require.NoError(t, err)

	mux := http.NewServeMux()
	db.AttachAdminRoutes(mux)

	// tsweb debug handlers only answer loopback callers.
	req := httptest.NewRequest(http.MethodGet, "/debug/backup", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/gzip", rec.Header().Get("Content-Type"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "SQLite format 3"), "backup should be a sqlite file")
}

func TestDatabaseStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a, err := db.CreateSubmission(ctx, "upload", t0)
	require.NoError(t, err)
	report, events := sampleReport()
	require.NoError(t, db.MarkProcessed(ctx, a.RunID, report, gait.DefaultParams(), events, 0, t0))

	stats, err := db.GetDatabaseStats(ctx)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, ts := range stats.Tables {
		counts[ts.Name] = ts.Rows
	}
	assert.Equal(t, int64(1), counts["analyses"])
	assert.Equal(t, int64(3), counts["strike_events"])
	assert.Contains(t, counts, "schema_migrations")

	mux := http.NewServeMux()
	db.AttachAdminRoutes(mux)
	req := httptest.NewRequest(http.MethodGet, "/debug/db-stats", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"strike_events"`)
}

func TestUnixSecondsRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 1, 7, 30, 15, 123456000, time.UTC)
	assert.True(t, fromUnixSeconds(unixSeconds(ts)).Equal(ts))
}
