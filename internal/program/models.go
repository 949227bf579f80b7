package program

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Goal is the training outcome a plan is built for.
type Goal string

const (
	GoalStrength    Goal = "strength"
	GoalHypertrophy Goal = "hypertrophy"
	GoalEndurance   Goal = "endurance"
	GoalGeneral     Goal = "general"
)

// Title returns the goal for display, e.g. "Strength".
func (g Goal) Title() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// SplitType is the weekly split archetype chosen from the training frequency.
type SplitType string

const (
	SplitFullBody     SplitType = "full_body"
	SplitUpperLower   SplitType = "upper_lower"
	SplitPushPullLegs SplitType = "push_pull_legs"
)

// MuscleGroup is a coarse muscle group an exercise trains.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleQuads      MuscleGroup = "quads"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleCore       MuscleGroup = "core"
)

// MuscleGroupResolver maps an exercise name to the muscle groups it trains. It must be pure.
type MuscleGroupResolver func(exerciseName string) []MuscleGroup

// DayState is the position of a scheduled day in its completion state machine.
type DayState string

const (
	DayPlanned   DayState = "planned"
	DayMoved     DayState = "moved"
	DayCompleted DayState = "completed"
	DaySkipped   DayState = "skipped"
)

// open reports whether the day can still be trained, moved or skipped.
func (s DayState) open() bool {
	return s == DayPlanned || s == DayMoved
}

// ReadinessBand is the coarse classification of a readiness score.
type ReadinessBand string

const (
	ReadinessLow      ReadinessBand = "low"
	ReadinessModerate ReadinessBand = "moderate"
	ReadinessHigh     ReadinessBand = "high"
)

// ProgressionRule governs how targets move after each completed session.
type ProgressionRule struct {
	WeightIncrement  float64 `json:"weightIncrement"`
	FailureThreshold int     `json:"failureThreshold"`
	// DeloadFactor multiplies the target weight once the failure streak reaches FailureThreshold.
	DeloadFactor float64 `json:"deloadFactor"`
}

// PlannedExerciseTarget is the prescription for one exercise on one day.
type PlannedExerciseTarget struct {
	ExerciseName  string `json:"exerciseName"`
	SetCount      int    `json:"setCount"`
	RepRangeLower int    `json:"repRangeLower"`
	RepRangeUpper int    `json:"repRangeUpper"`
	// TargetWeight is nil until history or a first completion provides a working weight.
	TargetWeight  *float64 `json:"targetWeight,omitempty"`
	FailureStreak int      `json:"failureStreak"`
}

func (t PlannedExerciseTarget) clone() PlannedExerciseTarget {
	if t.TargetWeight != nil {
		w := *t.TargetWeight
		t.TargetWeight = &w
	}
	return t
}

// ProgramDayPlan is a single scheduled session. CompletedWorkoutID is set if and only if State is
// DayCompleted.
type ProgramDayPlan struct {
	ID                 uuid.UUID               `json:"id"`
	WeekNumber         int                     `json:"weekNumber"`
	DayNumber          int                     `json:"dayNumber"`
	ScheduledDate      time.Time               `json:"scheduledDate"`
	Focus              string                  `json:"focus"`
	Exercises          []PlannedExerciseTarget `json:"exercises"`
	State              DayState                `json:"state"`
	CompletionDate     *time.Time              `json:"completionDate,omitempty"`
	CompletedWorkoutID *string                 `json:"completedWorkoutId,omitempty"`
	MovedFromDate      *time.Time              `json:"movedFromDate,omitempty"`
}

func (d ProgramDayPlan) clone() ProgramDayPlan {
	exercises := make([]PlannedExerciseTarget, len(d.Exercises))
	for i, ex := range d.Exercises {
		exercises[i] = ex.clone()
	}
	d.Exercises = exercises
	d.CompletionDate = cloneTime(d.CompletionDate)
	d.MovedFromDate = cloneTime(d.MovedFromDate)
	if d.CompletedWorkoutID != nil {
		id := *d.CompletedWorkoutID
		d.CompletedWorkoutID = &id
	}
	return d
}

// ProgramWeek groups the days of one calendar week of a plan.
type ProgramWeek struct {
	WeekNumber int              `json:"weekNumber"`
	StartDate  time.Time        `json:"startDate"`
	EndDate    time.Time        `json:"endDate"`
	Days       []ProgramDayPlan `json:"days"`
}

// ProgramCompletionRecord is appended once per completed day and never modified.
type ProgramCompletionRecord struct {
	PlanID                  uuid.UUID     `json:"planId"`
	DayID                   uuid.UUID     `json:"dayId"`
	WorkoutID               string        `json:"workoutId"`
	CompletedAt             time.Time     `json:"completedAt"`
	ReadinessScore          float64       `json:"readinessScore"`
	ReadinessBand           ReadinessBand `json:"readinessBand"`
	AdherenceRatio          float64       `json:"adherenceRatio"`
	SuccessfulExerciseCount int           `json:"successfulExerciseCount"`
	TotalExerciseCount      int           `json:"totalExerciseCount"`
}

// ProgramPlan is a periodized multi-week program. At most one plan has a nil ArchivedAt.
type ProgramPlan struct {
	ID                uuid.UUID                 `json:"id"`
	Name              string                    `json:"name"`
	Goal              Goal                      `json:"goal"`
	SplitType         SplitType                 `json:"splitType"`
	DaysPerWeek       int                       `json:"daysPerWeek"`
	StartDate         time.Time                 `json:"startDate"`
	Weeks             []ProgramWeek             `json:"weeks"`
	ProgressionRule   ProgressionRule           `json:"progressionRule"`
	CompletionRecords []ProgramCompletionRecord `json:"completionRecords"`
	ArchivedAt        *time.Time                `json:"archivedAt,omitempty"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

// Clone returns a deep copy that shares no mutable state with p.
func (p ProgramPlan) Clone() ProgramPlan {
	weeks := make([]ProgramWeek, len(p.Weeks))
	for i, w := range p.Weeks {
		days := make([]ProgramDayPlan, len(w.Days))
		for j, d := range w.Days {
			days[j] = d.clone()
		}
		w.Days = days
		weeks[i] = w
	}
	p.Weeks = weeks
	p.CompletionRecords = append([]ProgramCompletionRecord(nil), p.CompletionRecords...)
	p.ArchivedAt = cloneTime(p.ArchivedAt)
	return p
}

// ReadinessSnapshot summarizes same-day recovery signals. It is derived on demand and never persisted.
type ReadinessSnapshot struct {
	Score float64       `json:"score"`
	Band  ReadinessBand `json:"band"`
}

// WorkoutSet is one logged set.
type WorkoutSet struct {
	Weight float64 `json:"weight" yaml:"weight"`
	Reps   int     `json:"reps" yaml:"reps"`
}

// WorkoutExercise is one exercise of a logged workout.
type WorkoutExercise struct {
	Name string       `json:"name" yaml:"name"`
	Sets []WorkoutSet `json:"sets" yaml:"sets"`
}

// Workout is a completed workout from the external history.
type Workout struct {
	ID        string            `json:"id" yaml:"id"`
	Date      time.Time         `json:"date" yaml:"date"`
	Name      string            `json:"name" yaml:"name"`
	Exercises []WorkoutExercise `json:"exercises" yaml:"exercises"`
}

// DailyHealth is the pre-aggregated health snapshot for one calendar day. Any field may be missing.
type DailyHealth struct {
	SleepHours           *float64 `json:"sleepHours,omitempty" yaml:"sleep_hours"`
	RestingHeartRate     *float64 `json:"restingHeartRate,omitempty" yaml:"resting_heart_rate"`
	HeartRateVariability *float64 `json:"heartRateVariability,omitempty" yaml:"heart_rate_variability"`
}

// HealthData maps a calendar day (midnight UTC, see [CalendarDay]) to its health snapshot.
type HealthData map[time.Time]DailyHealth

// WearableScores maps a calendar day to a third-party daily wellness score on a 0-100 scale.
type WearableScores map[time.Time]float64

// ProgramTodayPlan answers "what should I train today".
type ProgramTodayPlan struct {
	PlanID            uuid.UUID               `json:"planId"`
	Day               ProgramDayPlan          `json:"day"`
	AdjustedExercises []PlannedExerciseTarget `json:"adjustedExercises"`
	Readiness         ReadinessSnapshot       `json:"readiness"`
}

// ProgramWorkoutContext annotates a logged workout with the plan day it fulfilled.
type ProgramWorkoutContext struct {
	PlanID         uuid.UUID     `json:"planId"`
	PlanName       string        `json:"planName"`
	DayID          uuid.UUID     `json:"dayId"`
	WeekNumber     int           `json:"weekNumber"`
	DayNumber      int           `json:"dayNumber"`
	Focus          string        `json:"focus"`
	ScheduledDate  time.Time     `json:"scheduledDate"`
	ReadinessScore float64       `json:"readinessScore"`
	ReadinessBand  ReadinessBand `json:"readinessBand"`
	AdherenceRatio float64       `json:"adherenceRatio"`
	Archived       bool          `json:"archived"`
}

// CalendarDay normalizes t to midnight UTC of its own calendar day. Health maps are keyed by it.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sameDay reports whether a and b fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	return CalendarDay(a).Equal(CalendarDay(b))
}

// normalizeExerciseName folds case and collapses whitespace so "Bench  press" matches "bench press".
func normalizeExerciseName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// roundToIncrement rounds weight to the nearest multiple of increment. A non-positive increment
// leaves the weight untouched.
func roundToIncrement(weight, increment float64) float64 {
	if increment <= 0 {
		return weight
	}
	return math.Round(weight/increment) * increment
}

// floorToIncrement rounds weight down to a multiple of increment. A non-positive increment leaves the
// weight untouched.
func floorToIncrement(weight, increment float64) float64 {
	if increment <= 0 {
		return weight
	}
	return math.Floor(weight/increment+weightEpsilon) * increment
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
