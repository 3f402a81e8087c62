package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stride.report/internal/db"
	"github.com/banshee-data/stride.report/internal/gait"
	"github.com/banshee-data/stride.report/internal/httputil"
	"github.com/banshee-data/stride.report/internal/testutil"
)

func TestClient_AgainstServer(t *testing.T) {
	ts := setupTestServer(t, 0)
	srv := httptest.NewServer(ts.mux)
	defer srv.Close()
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	a, err := c.Upload(ctx, testutil.StrideSequence(), "track day")
	require.NoError(t, err)
	assert.Equal(t, db.StatusSuccess, a.Status)
	assert.Equal(t, "track day", a.Source)

	d, err := c.Analysis(ctx, a.RunID)
	require.NoError(t, err)
	assert.Len(t, d.Events, 3)

	report, err := c.Report(ctx, a.RunID)
	require.NoError(t, err)
	assert.Contains(t, report, "Running Form Analysis")

	require.NoError(t, os.WriteFile(filepath.Join(ts.inbox, "run.json"), documentBody(t, testutil.StrideSequence()).Bytes(), 0o644))
	sub, err := c.Submit(ctx, "run.json")
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, sub.Status)

	_, err = c.Submit(ctx, "missing.json")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Message, "missing.json")
}

func TestClient_InsufficientFrames(t *testing.T) {
	ts := setupTestServer(t, 0)
	srv := httptest.NewServer(ts.mux)
	defer srv.Close()

	_, err := NewClient(srv.URL).Upload(context.Background(), gait.NewSequence(30, 40), "")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
}

func TestClient_MockDoer(t *testing.T) {
	mock := &httputil.MockDoer{}
	mock.AddResponse(http.StatusAccepted, `{"run_id":"run-001","status":"pending","source":"a.json"}`)
	mock.AddResponse(http.StatusInternalServerError, "boom")
	mock.AddError(errors.New("connection refused"))

	c := &Client{BaseURL: "http://stride.local", HTTP: mock}
	ctx := context.Background()

	a, err := c.Submit(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "run-001", a.RunID)

	require.Len(t, mock.Requests, 1)
	req := mock.Requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "http://stride.local/api/submissions", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_name":"a.json"}`, string(body))

	_, err = c.Report(ctx, "run-001")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "boom", se.Message)

	_, err = c.Analysis(ctx, "run-001")
	assert.ErrorContains(t, err, "connection refused")
}
