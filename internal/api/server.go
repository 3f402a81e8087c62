// Package api serves stored gait analyses over HTTP and accepts new keypoint
// sequences for analysis.
package api

import (
	"net/http"

	"github.com/banshee-data/stride.report/internal/db"
	"github.com/banshee-data/stride.report/internal/httputil"
	"github.com/banshee-data/stride.report/internal/runner"
)

// DefaultMaxUploadBytes bounds a keypoint upload when no limit is configured.
const DefaultMaxUploadBytes = 64 << 20

// Server answers the analysis API from the store and the runner.
type Server struct {
	db        *db.DB
	runner    *runner.Runner
	maxUpload int64
}

// NewServer returns a Server. A non-positive maxUploadBytes means
// DefaultMaxUploadBytes.
func NewServer(store *db.DB, r *runner.Runner, maxUploadBytes int64) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{
		db:        store,
		runner:    r,
		maxUpload: maxUploadBytes,
	}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyses", s.createAnalysis)
	mux.HandleFunc("GET /api/analyses", s.listAnalyses)
	mux.HandleFunc("GET /api/analyses/{id}", s.showAnalysis)
	mux.HandleFunc("GET /api/analyses/{id}/report", s.showReport)
	mux.HandleFunc("GET /api/analyses/{id}/cadence", s.showCadenceChart)
	mux.HandleFunc("POST /api/submissions", s.createSubmission)
	mux.HandleFunc("GET /api/version", s.showVersion)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSONError(w, status, msg)
}
