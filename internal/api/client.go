package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/banshee-data/stride.report/internal/db"
	"github.com/banshee-data/stride.report/internal/gait"
	"github.com/banshee-data/stride.report/internal/httputil"
	"github.com/banshee-data/stride.report/internal/poseio"
)

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

// Client talks to a running stride server.
type Client struct {
	BaseURL string
	HTTP    httputil.Doer
}

// NewClient returns a client for baseURL using http.DefaultClient.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *string:
		*v = string(data)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Submit queues fileName from the server's inbox for background analysis.
func (c *Client) Submit(ctx context.Context, fileName string) (*db.Analysis, error) {
	var a db.Analysis
	if err := c.do(ctx, http.MethodPost, "/api/submissions", SubmissionRequest{FileName: fileName}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Upload sends seq for synchronous analysis.
func (c *Client) Upload(ctx context.Context, seq gait.Sequence, source string) (*db.Analysis, error) {
	path := "/api/analyses"
	if source != "" {
		path += "?source=" + url.QueryEscape(source)
	}
	var a db.Analysis
	if err := c.do(ctx, http.MethodPost, path, poseio.NewDocument(seq), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Analysis fetches one run with its strike events.
func (c *Client) Analysis(ctx context.Context, runID string) (*AnalysisDetail, error) {
	var d AnalysisDetail
	if err := c.do(ctx, http.MethodGet, "/api/analyses/"+url.PathEscape(runID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Report fetches the text report of a finished run.
func (c *Client) Report(ctx context.Context, runID string) (string, error) {
	var s string
	err := c.do(ctx, http.MethodGet, "/api/analyses/"+url.PathEscape(runID)+"/report", nil, &s)
	return s, err
}
