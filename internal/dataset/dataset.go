// Package dataset loads workout history, daily health snapshots and wearable scores from a YAML
// document.
//
// Example:
//
//	workouts:
//	  - id: w1
//	    date: 2024-01-01T18:00:00Z
//	    name: Upper
//	    exercises:
//	      - name: Bench Press
//	        sets:
//	          - {weight: 100, reps: 5}
//	health:
//	  2024-01-01: {sleep_hours: 7.5, resting_heart_rate: 58, heart_rate_variability: 48}
//	wearable:
//	  2024-01-01: 72
package dataset

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
	"github.com/realronaldrump/workout-app-sub002/internal/program"
)

const dayLayout = "2006-01-02"

var ErrInvalid = errors.NewSentinel("invalid dataset")

// Dataset is the external input to plan generation, readiness and completion.
type Dataset struct {
	Workouts []program.Workout
	Health   program.HealthData
	Wearable program.WearableScores
}

type document struct {
	Workouts []program.Workout             `yaml:"workouts"`
	Health   map[string]program.DailyHealth `yaml:"health"`
	Wearable map[string]float64            `yaml:"wearable"`
}

// Load reads the dataset at path.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, errors.Wrap(err, "read dataset", slog.String("path", path))
	}
	ds, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Dataset{}, errors.Wrap(err, "parse dataset", slog.String("path", path))
	}
	return ds, nil
}

// Parse decodes a dataset document. Unknown fields are rejected. Workouts are returned oldest first.
func Parse(r io.Reader) (Dataset, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Dataset{}, fmt.Errorf("decode yaml: %w", err)
	}

	ds := Dataset{
		Workouts: doc.Workouts,
		Health:   make(program.HealthData, len(doc.Health)),
		Wearable: make(program.WearableScores, len(doc.Wearable)),
	}

	seen := make(map[string]bool, len(doc.Workouts))
	for i, w := range doc.Workouts {
		if w.ID == "" {
			return Dataset{}, fmt.Errorf("%w: workout %d has no id", ErrInvalid, i)
		}
		if seen[w.ID] {
			return Dataset{}, fmt.Errorf("%w: duplicate workout id %q", ErrInvalid, w.ID)
		}
		seen[w.ID] = true
		if w.Date.IsZero() {
			return Dataset{}, fmt.Errorf("%w: workout %q has no date", ErrInvalid, w.ID)
		}
	}
	slices.SortStableFunc(ds.Workouts, func(a, b program.Workout) int {
		return cmp.Compare(a.Date.UnixNano(), b.Date.UnixNano())
	})

	for key, h := range doc.Health {
		day, err := parseDay(key)
		if err != nil {
			return Dataset{}, err
		}
		ds.Health[day] = h
	}
	for key, score := range doc.Wearable {
		day, err := parseDay(key)
		if err != nil {
			return Dataset{}, err
		}
		if score < 0 || score > 100 {
			return Dataset{}, fmt.Errorf("%w: wearable score %v on %s outside 0..100", ErrInvalid, score, key)
		}
		ds.Wearable[day] = score
	}
	return ds, nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q: %w", ErrInvalid, s, err)
	}
	return program.CalendarDay(t), nil
}
