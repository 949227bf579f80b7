// Package program builds periodized multi-week training plans and keeps them up to date as sessions
// are completed, skipped or moved.
package program

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Plan defaults.
const (
	ProgramWeeks            = 8
	MaxExercisesPerDay      = 5
	DefaultWeightIncrement  = 2.5
	DefaultFailureThreshold = 2
	DefaultDeloadFactor     = 0.9
)

// PlanRequest holds the user's choices for a new plan.
type PlanRequest struct {
	Name             string    `json:"name,omitempty"`
	Goal             Goal      `json:"goal"`
	DaysPerWeek      int       `json:"daysPerWeek"`
	StartDate        time.Time `json:"startDate"`
	WeightIncrement  float64   `json:"weightIncrement"`
	FailureThreshold int       `json:"failureThreshold"`
}

// Generator turns workout history into a new plan. It holds no state besides its collaborators and
// is safe for concurrent use.
type Generator struct {
	resolve MuscleGroupResolver
	newID   func() uuid.UUID
	now     func() time.Time
}

// NewGenerator creates a generator that classifies exercises with resolve.
func NewGenerator(resolve MuscleGroupResolver) *Generator {
	return &Generator{
		resolve: resolve,
		newID:   uuid.New,
		now:     time.Now,
	}
}

// exerciseStats is the frequency and recency summary of one exercise in the history.
type exerciseStats struct {
	key         string
	displayName string
	count       int
	lastDate    time.Time
	// topWeight is the heaviest set of the most recent occurrence.
	topWeight float64
}

// Generate produces a complete plan. It never fails: missing history falls back to the exercise
// catalog and unset targets.
func (g *Generator) Generate(history []Workout, req PlanRequest) ProgramPlan {
	daysPerWeek, split := splitForDays(req.DaysPerWeek)
	rule := ProgressionRule{
		WeightIncrement:  req.WeightIncrement,
		FailureThreshold: req.FailureThreshold,
		DeloadFactor:     DefaultDeloadFactor,
	}
	if rule.WeightIncrement <= 0 {
		rule.WeightIncrement = DefaultWeightIncrement
	}
	if rule.FailureThreshold <= 0 {
		rule.FailureThreshold = DefaultFailureThreshold
	}
	name := req.Name
	if name == "" {
		name = "Adaptive " + req.Goal.Title()
	}

	stats := buildExerciseStats(history)
	candidates := g.buildCandidateIndex(stats)
	ranked := rankByFrequency(stats)

	templates := splitTemplates[split]
	selections := make([][]string, len(templates))
	for i, tmpl := range templates {
		selections[i] = selectExercises(tmpl, candidates, ranked, stats)
	}

	setCount, repLower, repUpper := goalParameters(req.Goal)
	start := CalendarDay(req.StartDate)
	offsets := dayOffsets[daysPerWeek]

	weeks := make([]ProgramWeek, 0, ProgramWeeks)
	for w := range ProgramWeeks {
		weekStart := start.AddDate(0, 0, 7*w) //nolint:mnd // days in a week.
		week := ProgramWeek{
			WeekNumber: w + 1,
			StartDate:  weekStart,
			EndDate:    weekStart.AddDate(0, 0, 6), //nolint:mnd // last day of the week.
			Days:       make([]ProgramDayPlan, 0, daysPerWeek),
		}
		for d, tmpl := range templates {
			exercises := make([]PlannedExerciseTarget, 0, len(selections[d]))
			for _, exName := range selections[d] {
				exercises = append(exercises, PlannedExerciseTarget{
					ExerciseName:  exName,
					SetCount:      setCount,
					RepRangeLower: repLower,
					RepRangeUpper: repUpper,
					TargetWeight:  weekWeight(stats[normalizeExerciseName(exName)], weekMultipliers[w], rule.WeightIncrement),
					FailureStreak: 0,
				})
			}
			week.Days = append(week.Days, ProgramDayPlan{
				ID:                 g.newID(),
				WeekNumber:         w + 1,
				DayNumber:          d + 1,
				ScheduledDate:      weekStart.AddDate(0, 0, offsets[d]),
				Focus:              tmpl.focus,
				Exercises:          exercises,
				State:              DayPlanned,
				CompletionDate:     nil,
				CompletedWorkoutID: nil,
				MovedFromDate:      nil,
			})
		}
		weeks = append(weeks, week)
	}

	return ProgramPlan{
		ID:                g.newID(),
		Name:              name,
		Goal:              req.Goal,
		SplitType:         split,
		DaysPerWeek:       daysPerWeek,
		StartDate:         start,
		Weeks:             weeks,
		ProgressionRule:   rule,
		CompletionRecords: []ProgramCompletionRecord{},
		ArchivedAt:        nil,
		UpdatedAt:         g.now(),
	}
}

// weekWeight scales the rounded base weight by the week's multiplier. Exercises without history get
// no target weight.
func weekWeight(stats *exerciseStats, multiplier, increment float64) *float64 {
	if stats == nil || stats.topWeight <= 0 {
		return nil
	}
	base := roundToIncrement(stats.topWeight, increment)
	w := roundToIncrement(base*multiplier, increment)
	return &w
}

// buildExerciseStats indexes the history by normalized exercise name. An exercise logged several times
// in one workout counts as one occurrence.
func buildExerciseStats(history []Workout) map[string]*exerciseStats {
	stats := make(map[string]*exerciseStats)
	for _, workout := range history {
		occurrences := make(map[string]*exerciseStats)
		var order []string
		for _, ex := range workout.Exercises {
			key := normalizeExerciseName(ex.Name)
			if key == "" {
				continue
			}
			occ, ok := occurrences[key]
			if !ok {
				occ = &exerciseStats{key: key, displayName: ex.Name}
				occurrences[key] = occ
				order = append(order, key)
			}
			occ.topWeight = max(occ.topWeight, heaviestSet(ex.Sets))
		}

		for _, key := range order {
			occ := occurrences[key]
			s, ok := stats[key]
			if !ok {
				s = &exerciseStats{key: key}
				stats[key] = s
			}
			s.count++
			if s.displayName == "" || !workout.Date.Before(s.lastDate) {
				s.lastDate = workout.Date
				s.displayName = occ.displayName
				s.topWeight = occ.topWeight
			}
		}
	}
	return stats
}

func heaviestSet(sets []WorkoutSet) float64 {
	var top float64
	for _, set := range sets {
		top = max(top, set.Weight)
	}
	return top
}

// compareStats orders by frequency, then recency, then name so generation is deterministic.
func compareStats(a, b *exerciseStats) int {
	if c := cmp.Compare(b.count, a.count); c != 0 {
		return c
	}
	if c := b.lastDate.Compare(a.lastDate); c != 0 {
		return c
	}
	return cmp.Compare(a.key, b.key)
}

// rankByFrequency returns history exercise display names, most frequent first.
func rankByFrequency(stats map[string]*exerciseStats) []string {
	all := make([]*exerciseStats, 0, len(stats))
	for _, s := range stats {
		all = append(all, s)
	}
	slices.SortFunc(all, compareStats)
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.displayName
	}
	return names
}

// buildCandidateIndex maps each muscle group to exercise names from history and the catalog.
func (g *Generator) buildCandidateIndex(stats map[string]*exerciseStats) map[MuscleGroup][]string {
	pool := make(map[string]*exerciseStats, len(stats)+len(exerciseCatalog))
	for key, s := range stats {
		pool[key] = s
	}
	for _, name := range exerciseCatalog {
		key := normalizeExerciseName(name)
		if _, ok := pool[key]; !ok {
			pool[key] = &exerciseStats{key: key, displayName: name}
		}
	}

	byGroup := make(map[MuscleGroup][]*exerciseStats)
	if g.resolve != nil {
		for _, s := range pool {
			for _, group := range g.resolve(s.displayName) {
				byGroup[group] = append(byGroup[group], s)
			}
		}
	}

	index := make(map[MuscleGroup][]string, len(byGroup))
	for group, list := range byGroup {
		slices.SortFunc(list, compareStats)
		names := make([]string, len(list))
		for i, s := range list {
			names[i] = s.displayName
		}
		index[group] = names
	}
	return index
}

// selectExercises picks up to MaxExercisesPerDay unique names for a day template.
func selectExercises(
	tmpl dayTemplate,
	candidates map[MuscleGroup][]string,
	ranked []string,
	stats map[string]*exerciseStats,
) []string {
	selected := make([]string, 0, MaxExercisesPerDay)
	seen := make(map[string]bool)
	add := func(name string) bool {
		key := normalizeExerciseName(name)
		if key == "" || seen[key] {
			return false
		}
		seen[key] = true
		if s, ok := stats[key]; ok {
			name = s.displayName
		}
		selected = append(selected, name)
		return true
	}

	for _, group := range tmpl.groups {
		if len(selected) == MaxExercisesPerDay {
			return selected
		}
		for _, name := range candidates[group] {
			if add(name) {
				break
			}
		}
	}
	for _, list := range [][]string{tmpl.fallbacks, ranked} {
		for _, name := range list {
			if len(selected) == MaxExercisesPerDay {
				return selected
			}
			add(name)
		}
	}
	return selected
}
