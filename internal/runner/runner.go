// Package runner executes analyses end to end: decode keypoints, run the
// gait pipeline, persist the outcome and write diagnostic artefacts.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/stride.report/internal/config"
	"github.com/banshee-data/stride.report/internal/db"
	"github.com/banshee-data/stride.report/internal/fsutil"
	"github.com/banshee-data/stride.report/internal/gait"
	"github.com/banshee-data/stride.report/internal/monitoring"
	"github.com/banshee-data/stride.report/internal/poseio"
	"github.com/banshee-data/stride.report/internal/security"
	"github.com/banshee-data/stride.report/internal/timeutil"
)

var logf = monitoring.Component("runner")

var (
	// ErrNoPending is returned by ProcessNextPending when the queue is empty.
	ErrNoPending = errors.New("no pending submissions")
	// ErrSubmissionFileMissing is returned by Submit for an absent keypoint file.
	ErrSubmissionFileMissing = errors.New("submission file not found")
)

// Store is the persistence the runner needs. *db.DB implements it.
type Store interface {
	CreateSubmission(ctx context.Context, source string, now time.Time) (*db.Analysis, error)
	NextPendingSubmission(ctx context.Context) (*db.Analysis, error)
	MarkProcessed(ctx context.Context, runID string, report gait.Report, params gait.Params, events []gait.StrikeEvent, took time.Duration, now time.Time) error
	MarkFailed(ctx context.Context, runID, message string, took time.Duration, now time.Time) error
	GetAnalysis(ctx context.Context, runID string) (*db.Analysis, error)
}

// Options configure a Runner.
type Options struct {
	Params gait.Params
	// InboxDir holds keypoint files named by submissions.
	InboxDir string
	// PlotsDir receives per-run artefacts. Empty disables them.
	PlotsDir          string
	ReplayChartStride int
	// Timeout bounds one analysis. Zero means no limit.
	Timeout time.Duration
	// Decode supplies the frame rate for CSV inputs and the frame limit
	// for every input.
	Decode poseio.DecodeOptions
}

// OptionsFromConfig maps the analysis config onto runner options.
func OptionsFromConfig(cfg *config.AnalysisConfig) Options {
	return Options{
		Params:            ParamsFromConfig(cfg),
		PlotsDir:          cfg.GetPlotsDir(),
		ReplayChartStride: cfg.GetReplayChartStride(),
		Timeout:           cfg.GetProcessTimeout(),
		Decode: poseio.DecodeOptions{
			FPS:           cfg.GetCSVFPS(),
			MaxFrameCount: cfg.GetMaxFrameCount(),
		},
	}
}

// ParamsFromConfig returns the analysis thresholds in cfg.
func ParamsFromConfig(cfg *config.AnalysisConfig) gait.Params {
	return gait.Params{
		Window:             cfg.GetWindow(),
		MinValidFrames:     cfg.GetMinValidFrames(),
		StrikeDeadZoneDeg:  cfg.GetStrikeDeadZoneDeg(),
		PostureForwardDeg:  cfg.GetPostureForwardLimitDeg(),
		PostureBackwardDeg: cfg.GetPostureBackwardLimitDeg(),
	}
}

// Runner ties the analysis pipeline to storage and the filesystem.
type Runner struct {
	store    Store
	fs       fsutil.FileSystem
	clock    timeutil.Clock
	analyzer *gait.Analyzer
	opts     Options
}

// New validates the options and returns a Runner.
func New(store Store, fs fsutil.FileSystem, clock timeutil.Clock, opts Options) (*Runner, error) {
	analyzer, err := gait.NewAnalyzer(opts.Params)
	if err != nil {
		return nil, err
	}
	if opts.ReplayChartStride < 1 {
		opts.ReplayChartStride = 1
	}
	return &Runner{store: store, fs: fs, clock: clock, analyzer: analyzer, opts: opts}, nil
}

// MaxFrameCount is the longest sequence the runner accepts.
func (r *Runner) MaxFrameCount() int {
	if r.opts.Decode.MaxFrameCount <= 0 {
		return poseio.DefaultMaxFrameCount
	}
	return r.opts.Decode.MaxFrameCount
}

// Params returns the thresholds the runner analyses with.
func (r *Runner) Params() gait.Params {
	return r.analyzer.Params()
}

// Result is a completed analysis.
type Result struct {
	Detection *gait.Detection
	Report    gait.Report
}

// Analyze runs the pipeline on seq, checking ctx between phases.
func (r *Runner) Analyze(ctx context.Context, seq gait.Sequence) (*Result, error) {
	buffered, err := r.analyzer.Buffer(seq)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	det := buffered.Detect()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{Detection: det, Report: det.Report()}, nil
}

// ReadSequence decodes the keypoint file at path.
func (r *Runner) ReadSequence(path string) (gait.Sequence, error) {
	format, err := poseio.FormatFromPath(path)
	if err != nil {
		return gait.Sequence{}, err
	}
	f, err := r.fs.Open(path)
	if err != nil {
		return gait.Sequence{}, fmt.Errorf("%w: %v", gait.ErrInputUnavailable, err)
	}
	defer f.Close()
	return poseio.Decode(f, format, r.opts.Decode)
}

// AnalyzeFile reads and analyses one keypoint file.
func (r *Runner) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	seq, err := r.ReadSequence(path)
	if err != nil {
		return nil, err
	}
	return r.Analyze(ctx, seq)
}

// Submit queues a pending analysis of fileName, which must exist inside the
// inbox directory.
func (r *Runner) Submit(ctx context.Context, fileName string) (*db.Analysis, error) {
	path, err := security.ResolveWithin(r.opts.InboxDir, fileName)
	if err != nil {
		return nil, err
	}
	if !fsutil.Exists(r.fs, path) {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionFileMissing, fileName)
	}
	a, err := r.store.CreateSubmission(ctx, fileName, r.clock.Now())
	if err != nil {
		return nil, err
	}
	logf("queued %s as run %s", fileName, a.RunID)
	return a, nil
}

// Process records and synchronously analyses an uploaded sequence. Analysis
// failures are stored on the run and also returned.
func (r *Runner) Process(ctx context.Context, source string, seq gait.Sequence) (*db.Analysis, error) {
	a, err := r.store.CreateSubmission(ctx, source, r.clock.Now())
	if err != nil {
		return nil, err
	}
	return r.finish(ctx, a, func(ctx context.Context) (*Result, error) {
		return r.Analyze(ctx, seq)
	})
}

// ProcessNextPending analyses the most recently updated pending submission.
// It returns ErrNoPending when there is nothing to do. A failed analysis is
// recorded on the run and returned alongside it.
func (r *Runner) ProcessNextPending(ctx context.Context) (*db.Analysis, error) {
	a, err := r.store.NextPendingSubmission(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoPending
	}
	if err != nil {
		return nil, err
	}
	logf("processing run %s (%s)", a.RunID, a.Source)
	return r.finish(ctx, a, func(ctx context.Context) (*Result, error) {
		path, err := security.ResolveWithin(r.opts.InboxDir, a.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", gait.ErrInputUnavailable, err)
		}
		return r.AnalyzeFile(ctx, path)
	})
}

func (r *Runner) finish(ctx context.Context, a *db.Analysis, analyze func(context.Context) (*Result, error)) (*db.Analysis, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	sw := timeutil.StartStopwatch(r.clock)
	res, err := analyze(ctx)
	if err == nil {
		err = r.WriteArtifacts(a.RunID, res)
	}
	took := sw.Elapsed()

	// Record the outcome even if ctx expired during analysis.
	storeCtx := context.WithoutCancel(ctx)
	if err != nil {
		if ferr := r.store.MarkFailed(storeCtx, a.RunID, err.Error(), took, r.clock.Now()); ferr != nil {
			return nil, errors.Join(err, ferr)
		}
		stored, gerr := r.store.GetAnalysis(storeCtx, a.RunID)
		if gerr != nil {
			return nil, errors.Join(err, gerr)
		}
		return stored, err
	}

	if err := r.store.MarkProcessed(storeCtx, a.RunID, res.Report, r.Params(), res.Detection.Events, took, r.clock.Now()); err != nil {
		return nil, err
	}
	return r.store.GetAnalysis(storeCtx, a.RunID)
}

// ArtifactDir is where artefacts of runID are written, or "" when disabled.
func (r *Runner) ArtifactDir(runID string) string {
	if r.opts.PlotsDir == "" {
		return ""
	}
	return filepath.Join(r.opts.PlotsDir, security.SanitizeFilename(runID))
}
