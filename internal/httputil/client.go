// Package httputil holds the small HTTP helpers shared by the API server and
// its client.
package httputil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Doer is the part of *http.Client the API client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// MockDoer records requests and replays queued responses.
type MockDoer struct {
	mu        sync.Mutex
	Requests  []*http.Request
	responses []mockResponse
}

type mockResponse struct {
	status int
	body   string
	err    error
}

// AddResponse queues a response for the next request.
func (m *MockDoer) AddResponse(status int, body string) *MockDoer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{status: status, body: body})
	return m
}

// AddError queues a transport error for the next request.
func (m *MockDoer) AddError(err error) *MockDoer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{err: err})
	return m
}

// Do records req and returns the next queued response, or an empty 200 once
// the queue is drained.
func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)

	resp := mockResponse{status: http.StatusOK}
	if len(m.responses) > 0 {
		resp, m.responses = m.responses[0], m.responses[1:]
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(bytes.NewBufferString(resp.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}
