package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/stride.report/internal/db"
	"github.com/banshee-data/stride.report/internal/fsutil"
	"github.com/banshee-data/stride.report/internal/poseio"
	"github.com/banshee-data/stride.report/internal/runner"
	"github.com/banshee-data/stride.report/internal/timeutil"
)

func runAnalyze(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "Analysis config JSON (defaults built in)")
	dbPath := fs.String("db", "", "Store the run in this SQLite database")
	fps := fs.Float64("fps", 0, "Frame rate of a CSV input (overrides csv_fps)")
	metricsPath := fs.String("metrics", "", "Write per-frame metrics as JSON Lines to this file ('-' for stdout)")
	plotsDir := fs.String("plots", "", "Write plots and replay chart under this directory")
	asJSON := fs.Bool("json", false, "Print the report as a flat JSON record")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: analyze takes exactly one keypoint file", errUsage)
	}
	input := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	opts := runner.OptionsFromConfig(cfg)
	if *fps != 0 {
		opts.Decode.FPS = *fps
	}
	opts.InboxDir = filepath.Dir(input)
	if *plotsDir != "" {
		opts.PlotsDir = *plotsDir
	}

	var store runner.Store
	if *dbPath != "" {
		d, err := db.NewDB(*dbPath)
		if err != nil {
			return err
		}
		defer d.Close()
		store = d
	}

	r, err := runner.New(store, fsutil.OSFileSystem{}, timeutil.RealClock{}, opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	clock := timeutil.RealClock{}
	sw := timeutil.StartStopwatch(clock)
	res, err := r.AnalyzeFile(ctx, input)
	if err != nil {
		return err
	}
	took := sw.Elapsed()

	runName := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if store != nil {
		a, err := store.CreateSubmission(ctx, filepath.Base(input), sw.Started())
		if err != nil {
			return err
		}
		err = store.MarkProcessed(ctx, a.RunID, res.Report, r.Params(), res.Detection.Events, took, clock.Now())
		if err != nil {
			return err
		}
		runName = a.RunID
		fmt.Fprintf(os.Stderr, "stored run %s in %s\n", a.RunID, *dbPath)
	}

	if err := r.WriteArtifacts(runName, res); err != nil {
		return err
	}
	if *metricsPath != "" {
		if err := writeMetrics(*metricsPath, out, res); err != nil {
			return err
		}
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report.Fields())
	}
	_, err = io.WriteString(out, res.Report.Format())
	return err
}

func writeMetrics(path string, stdout io.Writer, res *runner.Result) error {
	if path == "-" {
		_, err := poseio.WriteFrameMetrics(stdout, res.Detection.Replay())
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := poseio.WriteFrameMetrics(f, res.Detection.Replay()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
