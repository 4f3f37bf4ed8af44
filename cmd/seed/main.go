// Package main provides a tool to seed the configured storage backend with
// sample events.
//
// It writes the built-in events, or the events of a YAML seed file, and can
// append the VEVENTs of an iCalendar file on top. Records that already exist
// are left alone unless -force is given.
//
// Usage:
//
//	STORAGE_BACKEND=sqlite go run ./cmd/seed
//	go run ./cmd/seed -file events.yaml -ics meetup.ics -force
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/eventboard/eventboard-server/internal/config"
	"github.com/eventboard/eventboard-server/internal/di/providers"
	"github.com/eventboard/eventboard-server/internal/domain"
	domainerrors "github.com/eventboard/eventboard-server/internal/errors"
	"github.com/eventboard/eventboard-server/internal/export"
	"github.com/eventboard/eventboard-server/internal/id"
	"github.com/eventboard/eventboard-server/internal/logger"
	"github.com/eventboard/eventboard-server/internal/seed"
	"github.com/eventboard/eventboard-server/internal/service"
	"github.com/eventboard/eventboard-server/internal/store"
)

var (
	seedFile = flag.String("file", "", "YAML seed file (default: built-in sample events)")
	icsFile  = flag.String("ics", "", "iCalendar file whose events are appended")
	force    = flag.Bool("force", false, "Overwrite existing records")
)

// errRecordExists stops a seed run that would overwrite data without -force.
var errRecordExists = errors.New("record already exists, use -force to overwrite")

// options are the parsed command-line flags.
type options struct {
	seedFile string
	icsFile  string
	force    bool
}

func main() {
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logs := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
	})

	backend, err := providers.OpenBackend(cfg.Storage, logs.Logger)
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", cfg.Storage.Backend, err)
	}

	st := store.New(backend, store.Options{Logger: logs.Logger})
	opts := options{seedFile: *seedFile, icsFile: *icsFile, force: *force}

	// os.Exit skips deferred calls, so the store is closed first.
	runErr := run(context.Background(), st, opts, cfg.Storage.Backend, logs.Logger, os.Stdout)
	if err := st.Close(); err != nil {
		logs.Error("Failed to close storage", "error", err)
	}
	if runErr != nil {
		log.Printf("Seed failed: %v", runErr)
		os.Exit(1)
	}
}

// run writes the seed records into st and appends the calendar import, if any.
func run(ctx context.Context, st *store.Store, opts options, backendName string, logs *slog.Logger, out io.Writer) error {
	if !opts.force {
		for _, key := range store.Keys() {
			exists, err := st.Exists(ctx, key)
			if err != nil {
				return fmt.Errorf("check %s record: %w", key, err)
			}
			if exists {
				return fmt.Errorf("%q: %w", key, errRecordExists)
			}
		}
	}

	events := seed.Default()
	if opts.seedFile != "" {
		var err error
		events, err = seed.LoadFile(opts.seedFile)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
	}

	if err := st.SaveEvents(ctx, events); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	if err := st.SaveBookmarks(ctx, []int64{}); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}
	fmt.Fprintf(out, "Seeded %d events into %s storage\n", len(events), backendName)

	if opts.icsFile != "" {
		imported, skipped, err := importCalendar(ctx, st, opts.icsFile, logs, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported %d calendar events (%d skipped)\n", imported, skipped)
	}
	return nil
}

// importCalendar adds every VEVENT of path through the event service, so
// imported events get fresh ids and the same validation as the add form.
func importCalendar(ctx context.Context, st *store.Store, path string, logs *slog.Logger, out io.Writer) (imported, skipped int, err error) {
	f, err := os.Open(path) //#nosec G304 -- path comes from the command line
	if err != nil {
		return 0, 0, fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	inputs, err := export.ParseICS(f)
	if err != nil {
		return 0, 0, fmt.Errorf("parse calendar %s: %w", path, err)
	}

	svc := service.NewEventService(st, id.NewClockSequence(time.Now), nil, nil, nil, logs)
	svc.Load(ctx)

	for _, in := range inputs {
		if _, _, err := svc.AddEvent(ctx, in); err != nil {
			if domainerrors.CodeOf(err) == domainerrors.CodeStorage {
				return imported, skipped, fmt.Errorf("import %q: %w", describe(in), err)
			}
			fmt.Fprintf(out, "  skipped %q: %v\n", describe(in), err)
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped, nil
}

func describe(in domain.NewEvent) string {
	if in.Name == "" {
		return "(unnamed)"
	}
	return in.Name
}
