package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
)

// initialOptimize analyzes every table once, as recommended for long-lived connections.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) initialOptimize(ctx context.Context) error {
	if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize = 0x10002;"); err != nil {
		return errors.Wrap(err, "initial optimize")
	}
	return nil
}

// startDatabaseOptimizer runs PRAGMA optimize every interval until ctx is done.
func (db *Database) startDatabaseOptimizer(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		start := time.Now()
		if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			if ctx.Err() == nil {
				db.logger.LogAttrs(ctx, slog.LevelError, "optimize database", errors.SlogError(err))
			}
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
	}
}
