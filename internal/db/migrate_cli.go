package db

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
)

// ErrUnknownMigrateAction is returned for an unrecognised migrate action.
var ErrUnknownMigrateAction = errors.New("unknown migrate action")

// RunMigrateCommand handles "stride migrate <action> [version]" against the
// database at dbPath using the embedded migrations.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return fmt.Errorf("%w: none given", ErrUnknownMigrateAction)
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	migrations := MigrationsFS()
	switch action := args[0]; action {
	case "up":
		if err := database.MigrateUp(migrations); err != nil {
			return err
		}
	case "down":
		if err := database.MigrateDown(migrations); err != nil {
			return err
		}
	case "to", "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: stride migrate %s <version>", action)
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version number %q: %w", args[1], err)
		}
		if action == "to" {
			err = database.MigrateTo(migrations, uint(v))
		} else {
			err = database.MigrateForce(migrations, int(v))
		}
		if err != nil {
			return err
		}
	case "status":
	case "help":
		PrintMigrateHelp(out)
		return nil
	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("%w: %s", ErrUnknownMigrateAction, action)
	}
	return printMigrateStatus(database, migrations, out)
}

func printMigrateStatus(database *DB, migrations fs.FS, out io.Writer) error {
	status, err := database.GetMigrationStatus(migrations)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "=== Migration Status ===")
	fmt.Fprintf(out, "Current version: %d\n", status.CurrentVersion)
	fmt.Fprintf(out, "Latest version:  %d\n", status.LatestVersion)
	fmt.Fprintf(out, "Dirty: %v\n", status.Dirty)
	if status.Dirty {
		fmt.Fprintln(out, "A migration failed mid-execution. Inspect the database, then run: stride migrate force <version>")
	} else if status.Pending() {
		fmt.Fprintf(out, "Outstanding migrations: %d (run: stride migrate up)\n", status.LatestVersion-status.CurrentVersion)
	}
	return nil
}

// PrintMigrateHelp writes usage for the migrate subcommand.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprint(out, `Usage: stride migrate <action> [version]

Actions:
  up              Apply all pending migrations
  down            Roll back the most recent migration
  to <version>    Migrate up or down to a specific version
  force <version> Set the recorded version without migrating (recovery only)
  status          Show current and latest schema versions
  help            Show this help
`)
}
