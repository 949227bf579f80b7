// Package flightrecorder keeps a rolling runtime trace and writes it to disk when an operation runs
// slower than expected.
package flightrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
)

const (
	defaultMinAge   = time.Minute
	defaultMaxBytes = 16 * 1024 * 1024
	defaultCooldown = 10 * time.Minute
)

// Recorder owns a runtime/trace flight recorder.
type Recorder struct {
	logger          *slog.Logger
	flightRecorder  *trace.FlightRecorder
	tracesDirectory string
	cooldown        time.Duration
	now             func() time.Time
	// lastCapture is the Unix time of the last written trace.
	lastCapture atomic.Int64
}

// Config configures a Recorder. Zero durations and sizes use the defaults.
type Config struct {
	Logger          *slog.Logger
	MinAge          time.Duration
	MaxBytes        uint64
	TracesDirectory string
	// Cooldown is the minimum time between two written traces.
	Cooldown time.Duration
}

// New creates a recorder writing into cfg.TracesDirectory, creating the directory when missing.
func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.TracesDirectory == "" {
		return nil, errors.New("traces directory is required")
	}

	stat, err := os.Stat(cfg.TracesDirectory)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(cfg.TracesDirectory, 0o700); err != nil {
			return nil, errors.Wrap(err, "create traces directory")
		}
	case err != nil:
		return nil, errors.Wrap(err, "stat traces directory")
	case !stat.IsDir():
		return nil, errors.Wrap(errors.New("not a directory"), "traces directory",
			slog.String("path", cfg.TracesDirectory))
	}

	minAge := cfg.MinAge
	if minAge == 0 {
		minAge = defaultMinAge
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = defaultCooldown
	}

	return &Recorder{
		logger:          cfg.Logger,
		flightRecorder:  trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: minAge, MaxBytes: maxBytes}),
		tracesDirectory: cfg.TracesDirectory,
		cooldown:        cooldown,
		now:             time.Now,
		lastCapture:     atomic.Int64{},
	}, nil
}

// Start begins recording. Only one recorder may be active in a process.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.flightRecorder.Start(); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "flight recorder started",
		slog.String("dir", r.tracesDirectory),
		slog.Duration("cooldown", r.cooldown))
	return nil
}

// Stop ends recording.
func (r *Recorder) Stop(ctx context.Context) {
	r.flightRecorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelDebug, "flight recorder stopped")
}

// Watch runs fn and captures a trace labelled label when it takes longer than threshold. The error of
// fn is returned unchanged.
func (r *Recorder) Watch(ctx context.Context, label string, threshold time.Duration, fn func() error) error {
	start := r.now()
	err := fn()
	if elapsed := r.now().Sub(start); elapsed > threshold {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "slow operation",
			slog.String("operation", label),
			slog.Duration("elapsed", elapsed),
			slog.Duration("threshold", threshold))
		r.Capture(ctx, label)
	}
	return err
}

// Capture writes the recorded trace to <label>-<timestamp>.trace and returns the file path. Nothing is
// written within the cooldown of the previous capture.
func (r *Recorder) Capture(ctx context.Context, label string) (string, bool) {
	now := r.now().Unix()
	last := r.lastCapture.Load()
	if last > 0 && time.Duration(now-last)*time.Second < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture due to cooldown",
			slog.Time("last_capture", time.Unix(last, 0)))
		return "", false
	}
	if !r.lastCapture.CompareAndSwap(last, now) {
		return "", false
	}

	timestamp := time.Unix(now, 0).UTC().Format("20060102-150405")
	path := filepath.Join(r.tracesDirectory, fmt.Sprintf("%s-%s.trace", label, timestamp))
	if err := r.writeTrace(path); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "capture trace", errors.SlogError(err))
		return "", false
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace", slog.String("file", path))
	return path, true
}

func (r *Recorder) writeTrace(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create trace file", slog.String("file", path))
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close trace file", slog.String("file", path))
		}
	}()
	if _, err = r.flightRecorder.WriteTo(file); err != nil {
		return errors.Wrap(err, "write trace", slog.String("file", path))
	}
	return nil
}
