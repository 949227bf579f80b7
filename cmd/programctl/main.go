// Command programctl manages adaptive training programs stored in SQLite.
//
// Usage:
//
//	programctl create -goal strength -days 4 -start 2024-01-01 -increment 2.5
//	programctl today -date 2024-01-02
//	programctl complete -workout w42 -day <day id>
//	programctl show | archive | restore -plan <id> | delete -plan <id>
//	programctl skip -day <id> | move -day <id> -date 2024-01-05 | reset -day <id>
//	programctl context -workout w42
//
// Workouts, daily health and wearable scores are read from the YAML dataset in PROGRAM_DATASET. Health
// data is also read from Postgres when PROGRAM_HEALTH_DSN is set.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/realronaldrump/workout-app-sub002/internal/dataset"
	"github.com/realronaldrump/workout-app-sub002/internal/envstruct"
	"github.com/realronaldrump/workout-app-sub002/internal/errors"
	"github.com/realronaldrump/workout-app-sub002/internal/flightrecorder"
	"github.com/realronaldrump/workout-app-sub002/internal/health"
	"github.com/realronaldrump/workout-app-sub002/internal/logging"
	"github.com/realronaldrump/workout-app-sub002/internal/musclegroup"
	"github.com/realronaldrump/workout-app-sub002/internal/program"
	"github.com/realronaldrump/workout-app-sub002/internal/sqlite"
)

type config struct {
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"PROGRAM_SQLITE_URL" envDefault:"./program.sqlite3"`
	// Dataset is the optional path to a YAML dataset of workouts, health and wearable scores.
	Dataset string `env:"PROGRAM_DATASET" envDefault:""`
	// HealthDSN is the optional Postgres connection string of a FreeReps database.
	HealthDSN string `env:"PROGRAM_HEALTH_DSN" envDefault:""`
	// UserID selects the FreeReps user whose health data is read.
	UserID int `env:"PROGRAM_USER_ID" envDefault:"1"`
	// HealthWindowDays is how far back health data is read from Postgres.
	HealthWindowDays int    `env:"PROGRAM_HEALTH_WINDOW_DAYS" envDefault:"60"`
	LogLevel         string `env:"PROGRAM_LOG_LEVEL" envDefault:"info"`
	// TracesDir enables the flight recorder. Commands slower than SlowCommandMillis leave a trace there.
	TracesDir         string `env:"PROGRAM_TRACES_DIR" envDefault:""`
	SlowCommandMillis int    `env:"PROGRAM_SLOW_COMMAND_MS" envDefault:"2000"`
}

var errNotApplied = errors.NewSentinel("nothing changed")

type app struct {
	logger *slog.Logger
	store  *program.Store
	inputs dataset.Dataset
	now    func() time.Time
	out    io.Writer
}

func run(
	ctx context.Context,
	lookupEnv func(string) (string, bool),
	args []string,
	stdout io.Writer,
	stderr io.Writer,
) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "parse log level")
	}
	logger := logging.New(stderr, level)

	if len(args) == 0 {
		return errors.Wrap(errUsage, "missing command")
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return errors.Wrap(errUsage, "unknown command", slog.String("command", args[0]))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()

	persister := program.NewPersister(sqlite.NewBlobStore(db), logger)
	defer persister.Wait()

	store := program.NewStore(program.StoreConfig{
		Generator:      program.NewGenerator(musclegroup.Resolve),
		Autoregulation: program.NewAutoregulation(program.DefaultAutoregulationConfig()),
		Persister:      persister,
		Logger:         logger,
		Now:            time.Now,
	})
	if err = store.Load(ctx); err != nil {
		return errors.Wrap(err, "load store")
	}

	inputs, err := loadInputs(ctx, cfg, logger)
	if err != nil {
		return err
	}

	a := &app{
		logger: logger,
		store:  store,
		inputs: inputs,
		now:    time.Now,
		out:    stdout,
	}
	runCmd := func() error { return recoverPanic(func() error { return cmd(ctx, a, args[1:]) }) }
	if cfg.TracesDir != "" {
		var rec *flightrecorder.Recorder
		if rec, err = flightrecorder.New(flightrecorder.Config{
			Logger:          logger,
			MinAge:          0,
			MaxBytes:        0,
			TracesDirectory: cfg.TracesDir,
			Cooldown:        0,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = rec.Start(ctx); err != nil {
			return err
		}
		defer rec.Stop(ctx)
		threshold := time.Duration(cfg.SlowCommandMillis) * time.Millisecond
		unwatched := runCmd
		runCmd = func() error { return rec.Watch(ctx, args[0], threshold, unwatched) }
	}
	if err = runCmd(); err != nil {
		return errors.Wrap(err, args[0])
	}
	return nil
}

// loadInputs reads the YAML dataset and the Postgres health data concurrently. Postgres values take
// precedence over the dataset for days present in both.
func loadInputs(ctx context.Context, cfg config, logger *slog.Logger) (dataset.Dataset, error) {
	var (
		ds        dataset.Dataset
		fromPG    program.HealthData
		g, gctx   = errgroup.WithContext(ctx)
		windowEnd = time.Now().AddDate(0, 0, 1)
	)

	if cfg.Dataset != "" {
		g.Go(func() error {
			var err error
			ds, err = dataset.Load(cfg.Dataset)
			return err
		})
	}
	if cfg.HealthDSN != "" {
		g.Go(func() error {
			src, err := health.Connect(gctx, cfg.HealthDSN, logger)
			if err != nil {
				return errors.Wrap(err, "connect health database")
			}
			defer src.Close()
			fromPG, err = src.Load(gctx, cfg.UserID, windowEnd.AddDate(0, 0, -cfg.HealthWindowDays), windowEnd)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return dataset.Dataset{}, errors.Wrap(err, "load inputs")
	}

	if ds.Health == nil {
		ds.Health = make(program.HealthData, len(fromPG))
	}
	maps.Copy(ds.Health, fromPG)
	logger.LogAttrs(ctx, slog.LevelDebug, "loaded inputs",
		slog.Int("workouts", len(ds.Workouts)),
		slog.Int("health_days", len(ds.Health)),
		slog.Int("wearable_days", len(ds.Wearable)))
	return ds, nil
}

// recoverPanic runs fn and turns a panic into an error pointing at the panicking line. Deferred cleanup
// in run, such as waiting for snapshot writes, still happens.
func recoverPanic(fn func() error) (err error) {
	defer func() {
		if excp := recover(); excp != nil {
			err = errors.DecoratePanic(excp)
		}
	}()
	return fn()
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode output")
	}
	return nil
}

func main() {
	ctx := context.Background()
	if err := run(ctx, os.LookupEnv, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		logger := logging.New(os.Stderr, slog.LevelError)
		logger.LogAttrs(ctx, slog.LevelError, "programctl failed", errors.SlogError(err))
		if errors.Is(err, errUsage) {
			_, _ = io.WriteString(os.Stderr, usage)
		}
		os.Exit(1)
	}
}
