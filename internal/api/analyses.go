package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/stride.report/internal/charts"
	"github.com/banshee-data/stride.report/internal/db"
	"github.com/banshee-data/stride.report/internal/gait"
	"github.com/banshee-data/stride.report/internal/httputil"
	"github.com/banshee-data/stride.report/internal/poseio"
	"github.com/banshee-data/stride.report/internal/runner"
	"github.com/banshee-data/stride.report/internal/units"
	"github.com/banshee-data/stride.report/internal/version"
)

// AnalysisDetail is a stored run with its strike events. Cadence repeats
// the report cadence in CadenceUnits and is absent until the run succeeds.
type AnalysisDetail struct {
	db.Analysis
	Events       []gait.StrikeEvent `json:"events"`
	Cadence      *float64           `json:"cadence,omitempty"`
	CadenceUnits string             `json:"cadence_units"`
}

// SubmissionRequest queues a keypoint file already present in the inbox.
type SubmissionRequest struct {
	FileName string `json:"file_name"`
}

// statusForAnalysisError maps an analysis failure onto an HTTP status.
func statusForAnalysisError(err error) int {
	switch {
	case errors.Is(err, httputil.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, gait.ErrInsufficientValidFrames):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gait.ErrInputUnavailable):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) createAnalysis(w http.ResponseWriter, r *http.Request) {
	var doc poseio.Document
	if err := httputil.DecodeJSONBody(w, r, s.maxUpload, &doc); err != nil {
		if !errors.Is(err, httputil.ErrBodyTooLarge) {
			err = fmt.Errorf("%w: %v", gait.ErrInputUnavailable, err)
		}
		s.writeJSONError(w, statusForAnalysisError(err), err.Error())
		return
	}
	seq, err := doc.SequenceWithin(s.runner.MaxFrameCount())
	if err != nil {
		s.writeJSONError(w, statusForAnalysisError(err), err.Error())
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}
	a, err := s.runner.Process(r.Context(), source, seq)
	if err != nil {
		status := statusForAnalysisError(err)
		if a != nil {
			// The failed run is stored; return it with the error status.
			httputil.WriteJSON(w, status, a)
			return
		}
		s.writeJSONError(w, status, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	var req SubmissionRequest
	if err := httputil.DecodeJSONBody(w, r, 4096, &req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FileName == "" {
		s.writeJSONError(w, http.StatusBadRequest, "file_name is required")
		return
	}

	a, err := s.runner.Submit(r.Context(), req.FileName)
	switch {
	case errors.Is(err, runner.ErrSubmissionFileMissing):
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		// Names that escape the inbox are reported as bad requests.
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, a)
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	var f db.ListFilter
	q := r.URL.Query()
	switch st := db.Status(q.Get("status")); st {
	case "", db.StatusPending, db.StatusSuccess, db.StatusFailed:
		f.Status = st
	default:
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'status' parameter")
		return
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		f.Limit = limit
	}

	runs, err := s.db.ListAnalyses(r.Context(), f)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to list analyses: %v", err))
		return
	}
	if runs == nil {
		runs = []db.Analysis{}
	}
	httputil.WriteJSON(w, http.StatusOK, runs)
}

// lookup loads the run named in the path, writing the error response itself
// when it returns nil.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *db.Analysis {
	a, err := s.db.GetAnalysis(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return nil
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load analysis: %v", err))
		return nil
	}
	return a
}

// lookupReport is lookup restricted to runs that have a report.
func (s *Server) lookupReport(w http.ResponseWriter, r *http.Request) *db.Analysis {
	a := s.lookup(w, r)
	if a == nil {
		return nil
	}
	if a.Report == nil {
		s.writeJSONError(w, http.StatusConflict,
			fmt.Sprintf("analysis %s has no report (status %s)", a.RunID, a.Status))
		return nil
	}
	return a
}

func (s *Server) showAnalysis(w http.ResponseWriter, r *http.Request) {
	cadenceUnits := units.SPM
	if u := r.URL.Query().Get("units"); u != "" {
		if !units.IsValid(u) {
			s.writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid 'units' parameter, must be one of: %s", units.GetValidUnitsString()))
			return
		}
		cadenceUnits = u
	}

	a := s.lookup(w, r)
	if a == nil {
		return
	}
	events, err := s.db.StrikeEvents(r.Context(), a.RunID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load strike events: %v", err))
		return
	}
	if events == nil {
		events = []gait.StrikeEvent{}
	}
	detail := AnalysisDetail{Analysis: *a, Events: events, CadenceUnits: cadenceUnits}
	if a.Report != nil {
		c := units.ConvertCadence(a.Report.Cadence, cadenceUnits)
		detail.Cadence = &c
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) showReport(w http.ResponseWriter, r *http.Request) {
	a := s.lookupReport(w, r)
	if a == nil {
		return
	}
	httputil.WriteText(w, http.StatusOK, a.Report.Format())
}

func (s *Server) showCadenceChart(w http.ResponseWriter, r *http.Request) {
	a := s.lookupReport(w, r)
	if a == nil {
		return
	}
	events, err := s.db.StrikeEvents(r.Context(), a.RunID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load strike events: %v", err))
		return
	}

	stride := 1
	if v := r.URL.Query().Get("stride"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'stride' parameter")
			return
		}
		stride = n
	}

	metrics := gait.NewReplay(events, nil, a.Report.FrameCount, a.Report.FPS).Collect()
	// Posture samples are not stored; the final frame carries the report's shares.
	if n := len(metrics); n > 0 {
		metrics[n-1].PosturePercentages = a.Report.PosturePercentages
	}
	page := charts.ReplayPage{
		Title:   "Run " + a.RunID,
		Metrics: metrics,
		Stride:  stride,
	}
	body, err := page.RenderHTML()
	if err != nil {
		logf("render cadence chart for %s: %v", a.RunID, err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}
	httputil.WriteHTML(w, body)
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, version.Current())
}
