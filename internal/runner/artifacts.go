package runner

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/stride.report/internal/charts"
	"github.com/banshee-data/stride.report/internal/poseio"
)

// Artefact file names inside a run's directory.
const (
	AnklePlotFile  = "ankle.png"
	MetricsFile    = "metrics.jsonl"
	ReplayPageFile = "replay.html"
)

// WriteArtifacts writes the metrics JSONL, replay page and ankle plot of res
// into ArtifactDir(runID). It does nothing when artefacts are disabled.
func (r *Runner) WriteArtifacts(runID string, res *Result) error {
	dir := r.ArtifactDir(runID)
	if dir == "" {
		return nil
	}
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artefact dir: %w", err)
	}

	det := res.Detection
	err := r.writeFile(filepath.Join(dir, MetricsFile), func(w io.Writer) error {
		_, err := poseio.WriteFrameMetrics(w, det.Replay())
		return err
	})
	if err != nil {
		return err
	}

	page := charts.ReplayPage{
		Title:   "Run " + runID,
		Metrics: det.Replay().Collect(),
		Stride:  r.opts.ReplayChartStride,
	}
	if err := r.writeFile(filepath.Join(dir, ReplayPageFile), page.Render); err != nil {
		return err
	}

	err = r.writeFile(filepath.Join(dir, AnklePlotFile), func(w io.Writer) error {
		return charts.WriteAnklePNG(w, det, "Ankle height, run "+runID)
	})
	if err != nil {
		return err
	}
	logf("wrote artefacts for run %s to %s", runID, dir)
	return nil
}

func (r *Runner) writeFile(path string, write func(io.Writer) error) error {
	f, err := r.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
