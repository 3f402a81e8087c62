package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/stride.report/internal/config"
	"github.com/banshee-data/stride.report/internal/version"
)

var showVersion = flag.Bool("version", false, "Print version and exit")

// errUsage is returned when the command line cannot be acted on.
var errUsage = errors.New("invalid usage")

func main() {
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if flag.NArg() < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(flag.Arg(0), flag.Args()[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatalf("stride %s: %v", flag.Arg(0), err)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "analyze":
		return runAnalyze(args, out)
	case "serve":
		return runServe(args)
	case "process-pending":
		return runProcessPending(args, out)
	case "submit":
		return runSubmit(args, out)
	case "migrate":
		return runMigrate(args, out)
	case "version":
		fmt.Fprintln(out, version.String())
		return nil
	case "help":
		printUsage(out)
		return nil
	}
	printUsage(out)
	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `stride - running gait analysis from pose keypoints

Usage: stride <command> [options]

Commands:
  analyze <file>    Analyse a keypoint file (.json or .csv) and print the report
  serve             Run the HTTP API and the pending submission poller
  process-pending   Analyse the most recently updated pending submission
  submit <file>     Queue an inbox file on a running server
  migrate <action>  Manage the database schema (up, down, to, force, status)
  version           Show version information
  help              Show this help message

Run 'stride <command> -h' for command flags.
`)
}

// loadConfig reads path, or returns the built-in defaults when path is empty.
func loadConfig(path string) (*config.AnalysisConfig, error) {
	if path == "" {
		return config.DefaultAnalysisConfig(), nil
	}
	return config.LoadAnalysisConfig(path)
}
