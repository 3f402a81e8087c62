package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/stride.report/internal/api"
	"github.com/banshee-data/stride.report/internal/db"
	"github.com/banshee-data/stride.report/internal/fsutil"
	"github.com/banshee-data/stride.report/internal/runner"
	"github.com/banshee-data/stride.report/internal/timeutil"
)

// openRunner loads config, opens the database and builds a runner over the
// local filesystem. The caller closes the returned database.
func openRunner(configPath, dbPath, inbox string) (*db.DB, *runner.Runner, int64, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, 0, err
	}
	store, err := db.NewDB(dbPath)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to connect to database: %w", err)
	}
	opts := runner.OptionsFromConfig(cfg)
	opts.InboxDir = inbox
	r, err := runner.New(store, fsutil.OSFileSystem{}, timeutil.RealClock{}, opts)
	if err != nil {
		store.Close()
		return nil, nil, 0, err
	}
	return store, r, cfg.GetMaxUploadBytes(), nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listen := fs.String("listen", ":8080", "Listen address")
	dbPath := fs.String("db", "stride.db", "Path to the SQLite database file")
	configPath := fs.String("config", "", "Analysis config JSON (defaults built in)")
	inbox := fs.String("inbox", "inbox", "Directory holding submitted keypoint files")
	poll := fs.Duration("poll", 30*time.Second, "Pending submission poll interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *listen == "" {
		return fmt.Errorf("%w: listen address is required", errUsage)
	}

	store, r, maxUpload, err := openRunner(*configPath, *dbPath, *inbox)
	if err != nil {
		return err
	}
	defer store.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *poll > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Poll(ctx, *poll); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("pending poller stopped: %v", err)
			}
			log.Print("poll routine terminated")
		}()
	}

	mux := api.NewServer(store, r, maxUpload).ServeMux()
	store.AttachAdminRoutes(mux)

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	wg.Wait()
	log.Printf("Graceful shutdown complete")

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	default:
		return nil
	}
}

func runProcessPending(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("process-pending", flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", "stride.db", "Path to the SQLite database file")
	configPath := fs.String("config", "", "Analysis config JSON (defaults built in)")
	inbox := fs.String("inbox", "inbox", "Directory holding submitted keypoint files")
	all := fs.Bool("all", false, "Keep going until no pending submissions remain")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	store, r, _, err := openRunner(*configPath, *dbPath, *inbox)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if *all {
		n, err := r.DrainPending(ctx)
		fmt.Fprintf(out, "processed %d submission(s)\n", n)
		return err
	}

	a, err := r.ProcessNextPending(ctx)
	switch {
	case errors.Is(err, runner.ErrNoPending):
		fmt.Fprintln(out, "No pending submissions found.")
		return nil
	case a != nil:
		fmt.Fprintf(out, "run %s (%s): %s in %dms\n", a.RunID, a.Source, a.Status, a.ProcessingMS)
	}
	return err
}

func runSubmit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(out)
	server := fs.String("server", "http://localhost:8080", "Base URL of a running stride server")
	timeout := fs.Duration("timeout", 30*time.Second, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: submit takes exactly one inbox file name", errUsage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	a, err := api.NewClient(*server).Submit(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "queued %s as run %s\n", a.Source, a.RunID)
	return nil
}

func runMigrate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", "stride.db", "Path to the SQLite database file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return db.RunMigrateCommand(fs.Args(), *dbPath, out)
}
