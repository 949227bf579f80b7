// Package health reads daily recovery signals from a FreeReps-style Postgres database and folds them
// into per-day snapshots for readiness scoring.
package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
	"github.com/realronaldrump/workout-app-sub002/internal/program"
)

// Metric names in the health_metrics table.
const (
	MetricRestingHeartRate     = "resting_heart_rate"
	MetricHeartRateVariability = "heart_rate_variability"
)

// Source loads health data for one user.
type Source struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*Source, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return &Source{pool: pool, logger: logger}, nil
}

// Close closes the connection pool.
func (s *Source) Close() {
	s.pool.Close()
}

// sleepRow is one sleep session. TotalSleep is in hours.
type sleepRow struct {
	Date       time.Time
	TotalSleep float64
}

// metricRow is one health metric sample.
type metricRow struct {
	Time  time.Time
	Name  string
	Value float64
}

// Load returns the daily health snapshots for userID in [start, end).
func (s *Source) Load(ctx context.Context, userID int, start, end time.Time) (program.HealthData, error) {
	sleep, err := s.querySleep(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	metrics, err := s.queryMetrics(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	data := foldDaily(sleep, metrics)
	s.logger.LogAttrs(ctx, slog.LevelDebug, "loaded health data",
		slog.Int("user_id", userID),
		slog.Int("sleep_sessions", len(sleep)),
		slog.Int("metric_samples", len(metrics)),
		slog.Int("days", len(data)))
	return data, nil
}

func (s *Source) querySleep(ctx context.Context, userID int, start, end time.Time) ([]sleepRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, total_sleep
		 FROM sleep_sessions
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date ASC`,
		start, end, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query sleep sessions")
	}
	result, err := pgx.CollectRows(rows, pgx.RowToStructByPos[sleepRow])
	if err != nil {
		return nil, errors.Wrap(err, "scan sleep sessions")
	}
	return result, nil
}

func (s *Source) queryMetrics(ctx context.Context, userID int, start, end time.Time) ([]metricRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT time, metric_name, COALESCE(qty, avg_val)
		 FROM health_metrics
		 WHERE metric_name = ANY($1) AND time >= $2 AND time < $3 AND user_id = $4
		   AND COALESCE(qty, avg_val) IS NOT NULL
		 ORDER BY time ASC`,
		[]string{MetricRestingHeartRate, MetricHeartRateVariability}, start, end, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query health metrics")
	}
	result, err := pgx.CollectRows(rows, pgx.RowToStructByPos[metricRow])
	if err != nil {
		return nil, errors.Wrap(err, "scan health metrics")
	}
	return result, nil
}

// foldDaily sums sleep per calendar day and averages each metric per calendar day.
func foldDaily(sleep []sleepRow, metrics []metricRow) program.HealthData {
	data := make(program.HealthData)

	for _, row := range sleep {
		day := program.CalendarDay(row.Date)
		h := data[day]
		total := row.TotalSleep
		if h.SleepHours != nil {
			total += *h.SleepHours
		}
		h.SleepHours = &total
		data[day] = h
	}

	type key struct {
		day  time.Time
		name string
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	for _, row := range metrics {
		k := key{day: program.CalendarDay(row.Time), name: row.Name}
		sums[k] += row.Value
		counts[k]++
	}
	for k, sum := range sums {
		avg := sum / float64(counts[k])
		h := data[k.day]
		switch k.name {
		case MetricRestingHeartRate:
			h.RestingHeartRate = &avg
		case MetricHeartRateVariability:
			h.HeartRateVariability = &avg
		default:
			continue
		}
		data[k.day] = h
	}
	return data
}
