package program

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
	"github.com/realronaldrump/workout-app-sub002/internal/logging"
)

// StoreConfig holds the collaborators of a Store. Persister and Now are optional.
type StoreConfig struct {
	Generator      *Generator
	Autoregulation *Autoregulation
	Persister      *Persister
	Logger         *slog.Logger
	Now            func() time.Time
}

// Store owns the active plan and the archive. All methods are safe for concurrent use; mutations are
// serialized and each one schedules a snapshot write.
//
// Operations never return errors. Unknown ids, transitions from the wrong state and workouts without a
// planning hint are no-ops, reported through the bool result so callers can tell them apart from
// applied changes.
type Store struct {
	gen       *Generator
	autoreg   *Autoregulation
	persister *Persister
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	active   *ProgramPlan
	archived []ProgramPlan
}

// NewStore creates an empty store. Call Load to restore persisted state.
func NewStore(cfg StoreConfig) *Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		gen:       cfg.Generator,
		autoreg:   cfg.Autoregulation,
		persister: cfg.Persister,
		logger:    cfg.Logger,
		now:       now,
		mu:        sync.Mutex{},
		active:    nil,
		archived:  nil,
	}
}

// CompletionInput describes a logged workout and the planning hints captured when it was started.
type CompletionInput struct {
	Workout          Workout
	PlannedProgramID *uuid.UUID
	PlannedDayID     *uuid.UUID
	// PlannedDayDate is the scheduled date of the day the session was started from.
	PlannedDayDate *time.Time
	// PlannedTargets are the targets shown at session start. They take precedence over the live
	// targets, which may have been propagated since.
	PlannedTargets []PlannedExerciseTarget
}

// hasPlanningHint reports whether the workout was started from the plan.
func (in CompletionInput) hasPlanningHint() bool {
	return in.PlannedProgramID != nil || in.PlannedDayID != nil || in.PlannedDayDate != nil
}

// Load restores the persisted snapshot, replacing in-memory state. A missing snapshot leaves the
// store empty.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	data, found, err := s.persister.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load snapshot")
	}
	if !found {
		return nil
	}
	var snap snapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return errors.Wrap(err, "unmarshal snapshot")
	}
	if snap.SchemaVersion != SnapshotSchemaVersion {
		return errors.Wrap(errors.New("unsupported schema version"), "load snapshot",
			slog.Int("schema_version", snap.SchemaVersion))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = snap.ActivePlan
	s.archived = snap.ArchivedPlans
	s.sortArchive()
	return nil
}

// CreatePlan generates a plan from history and makes it active. A previously active plan is archived.
//
// health does not shape the plan: targets adapt to readiness per session through TodayPlan. It is only
// used to log the readiness band on the start date.
func (s *Store) CreatePlan(ctx context.Context, req PlanRequest, history []Workout, health HealthData) ProgramPlan {
	plan := s.gen.Generate(history, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.archiveActiveLocked(ctx)
	}
	plan.UpdatedAt = s.now()
	s.active = &plan
	s.persistLocked(ctx)

	readiness := s.autoreg.Readiness(health, nil, plan.StartDate)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "created plan",
		slog.String("plan_id", plan.ID.String()),
		slog.String("goal", string(plan.Goal)),
		slog.Int("days_per_week", plan.DaysPerWeek),
		slog.Int("history_workouts", len(history)),
		slog.String("start_readiness", string(readiness.Band)))
	return plan.Clone()
}

// ArchiveActivePlan moves the active plan to the archive.
func (s *Store) ArchiveActivePlan(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return false
	}
	s.archiveActiveLocked(ctx)
	s.persistLocked(ctx)
	return true
}

func (s *Store) archiveActiveLocked(ctx context.Context) {
	now := s.now()
	plan := *s.active
	plan.ArchivedAt = &now
	plan.UpdatedAt = now
	s.archived = append(s.archived, plan)
	s.sortArchive()
	s.active = nil
	s.logger.LogAttrs(ctx, slog.LevelInfo, "archived plan", slog.String("plan_id", plan.ID.String()))
}

// RestoreArchivedPlan reactivates an archived plan. The currently active plan, if any, is archived.
func (s *Store) RestoreArchivedPlan(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.archiveIndex(id)
	if i < 0 {
		return false
	}
	plan := s.archived[i]
	s.archived = slices.Delete(s.archived, i, i+1)
	if s.active != nil {
		s.archiveActiveLocked(ctx)
	}
	plan.ArchivedAt = nil
	plan.UpdatedAt = s.now()
	s.active = &plan
	s.persistLocked(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "restored plan", slog.String("plan_id", id.String()))
	return true
}

// DeleteArchivedPlan permanently removes a plan from the archive. The active plan cannot be deleted.
func (s *Store) DeleteArchivedPlan(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.archiveIndex(id)
	if i < 0 {
		return false
	}
	s.archived = slices.Delete(s.archived, i, i+1)
	s.persistLocked(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "deleted archived plan", slog.String("plan_id", id.String()))
	return true
}

// TodayPlan selects the day to train on referenceDate with readiness-adjusted targets. ok is false when
// there is no active plan or every day is completed or skipped.
func (s *Store) TodayPlan(
	_ context.Context,
	referenceDate time.Time,
	health HealthData,
	wearable WearableScores,
) (ProgramTodayPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ProgramTodayPlan{}, false
	}
	loc, ok := resolveTodayDay(s.active, referenceDate)
	if !ok {
		return ProgramTodayPlan{}, false
	}
	day := loc.in(s.active).clone()
	readiness := s.autoreg.Readiness(health, wearable, referenceDate)
	return ProgramTodayPlan{
		PlanID:            s.active.ID,
		Day:               day,
		AdjustedExercises: s.autoreg.AdjustedTargets(day.Exercises, readiness, s.active.ProgressionRule.WeightIncrement),
		Readiness:         readiness,
	}, true
}

// RecordCompletion marks the plan day a workout fulfilled as completed, evaluates each exercise and
// propagates the resulting targets to later days.
//
// A workout without any planning hint, one hinted for a different plan, one already recorded against
// the plan, or one resolving to an already completed day leaves the store untouched and returns ok
// false.
func (s *Store) RecordCompletion(
	ctx context.Context,
	in CompletionInput,
	health HealthData,
	wearable WearableScores,
) (ProgramCompletionRecord, bool) {
	if !in.hasPlanningHint() {
		return ProgramCompletionRecord{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan := s.active
	if plan == nil {
		return ProgramCompletionRecord{}, false
	}
	if in.PlannedProgramID != nil && *in.PlannedProgramID != plan.ID {
		return ProgramCompletionRecord{}, false
	}
	if workoutRecorded(plan, in.Workout.ID) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "workout already recorded", slog.String("workout_id", in.Workout.ID))
		return ProgramCompletionRecord{}, false
	}
	loc, ok := resolveCompletionDay(plan, in)
	if !ok {
		return ProgramCompletionRecord{}, false
	}
	day := loc.in(plan)
	ctx = logging.WithAttrs(ctx,
		slog.String("plan_id", plan.ID.String()),
		slog.String("day_id", day.ID.String()),
		slog.String("workout_id", in.Workout.ID))

	completedAt := in.Workout.Date
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	if !day.complete(in.Workout.ID, completedAt) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "day already closed", slog.String("state", string(day.State)))
		return ProgramCompletionRecord{}, false
	}

	sessionTargets := make(map[string]PlannedExerciseTarget, len(in.PlannedTargets))
	for _, t := range in.PlannedTargets {
		sessionTargets[normalizeExerciseName(t.ExerciseName)] = t
	}
	performed := make(map[string][]WorkoutSet)
	for _, ex := range in.Workout.Exercises {
		key := normalizeExerciseName(ex.Name)
		performed[key] = append(performed[key], ex.Sets...)
	}

	next := make(map[string]PlannedExerciseTarget, len(day.Exercises))
	successful := 0
	for _, live := range day.Exercises {
		key := normalizeExerciseName(live.ExerciseName)
		target, found := sessionTargets[key]
		if !found {
			target = live
		}
		eval := s.autoreg.EvaluateCompletion(target, performed[key], plan.ProgressionRule)
		if eval.WasSuccessful {
			successful++
		}
		next[key] = eval.NextTarget
	}

	readiness := s.autoreg.Readiness(health, wearable, completedAt)
	total := len(day.Exercises)
	adherence := 0.0
	if total > 0 {
		adherence = float64(successful) / float64(total)
	}
	record := ProgramCompletionRecord{
		PlanID:                  plan.ID,
		DayID:                   day.ID,
		WorkoutID:               in.Workout.ID,
		CompletedAt:             completedAt,
		ReadinessScore:          readiness.Score,
		ReadinessBand:           readiness.Band,
		AdherenceRatio:          adherence,
		SuccessfulExerciseCount: successful,
		TotalExerciseCount:      total,
	}
	plan.CompletionRecords = append(plan.CompletionRecords, record)
	updated := propagateTargets(plan, loc, next)
	plan.UpdatedAt = s.now()
	s.persistLocked(ctx)

	s.logger.LogAttrs(ctx, slog.LevelInfo, "recorded completion",
		slog.Int("successful", successful),
		slog.Int("total", total),
		slog.Int("propagated_targets", updated),
		slog.String("readiness", string(readiness.Band)))
	return record, true
}

// workoutRecorded reports whether plan already holds a completion of workoutID.
func workoutRecorded(plan *ProgramPlan, workoutID string) bool {
	for _, rec := range plan.CompletionRecords {
		if rec.WorkoutID == workoutID {
			return true
		}
	}
	for _, loc := range dayLocations(plan) {
		if id := loc.in(plan).CompletedWorkoutID; id != nil && *id == workoutID {
			return true
		}
	}
	return false
}

// SkipDay marks a planned or moved day of the active plan as skipped.
func (s *Store) SkipDay(ctx context.Context, dayID uuid.UUID) bool {
	return s.transitionDay(ctx, dayID, "skipped day", func(d *ProgramDayPlan) bool {
		return d.skip(s.now())
	})
}

// MoveDay reschedules a planned or moved day of the active plan.
func (s *Store) MoveDay(ctx context.Context, dayID uuid.UUID, newDate time.Time) bool {
	return s.transitionDay(ctx, dayID, "moved day", func(d *ProgramDayPlan) bool {
		return d.move(newDate)
	})
}

// ResetDayToPlanned returns a skipped or moved day of the active plan to its original schedule.
func (s *Store) ResetDayToPlanned(ctx context.Context, dayID uuid.UUID) bool {
	return s.transitionDay(ctx, dayID, "reset day", func(d *ProgramDayPlan) bool {
		return d.resetToPlanned()
	})
}

func (s *Store) transitionDay(
	ctx context.Context,
	dayID uuid.UUID,
	msg string,
	transition func(*ProgramDayPlan) bool,
) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return false
	}
	loc, ok := findDay(s.active, dayID)
	if !ok {
		return false
	}
	day := loc.in(s.active)
	if !transition(day) {
		return false
	}
	s.active.UpdatedAt = s.now()
	s.persistLocked(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg,
		slog.String("plan_id", s.active.ID.String()),
		slog.String("day_id", dayID.String()),
		slog.String("state", string(day.State)))
	return true
}

// WorkoutContext finds the plan day a logged workout completed. It scans the active plan and then the
// archive linearly.
func (s *Store) WorkoutContext(workoutID string) (ProgramWorkoutContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans := make([]*ProgramPlan, 0, len(s.archived)+1)
	if s.active != nil {
		plans = append(plans, s.active)
	}
	for i := range s.archived {
		plans = append(plans, &s.archived[i])
	}

	for _, plan := range plans {
		for _, loc := range dayLocations(plan) {
			d := loc.in(plan)
			if d.CompletedWorkoutID == nil || *d.CompletedWorkoutID != workoutID {
				continue
			}
			wc := ProgramWorkoutContext{
				PlanID:         plan.ID,
				PlanName:       plan.Name,
				DayID:          d.ID,
				WeekNumber:     d.WeekNumber,
				DayNumber:      d.DayNumber,
				Focus:          d.Focus,
				ScheduledDate:  d.ScheduledDate,
				ReadinessScore: 0,
				ReadinessBand:  "",
				AdherenceRatio: 0,
				Archived:       plan.ArchivedAt != nil,
			}
			for _, rec := range plan.CompletionRecords {
				if rec.DayID == d.ID && rec.WorkoutID == workoutID {
					wc.ReadinessScore = rec.ReadinessScore
					wc.ReadinessBand = rec.ReadinessBand
					wc.AdherenceRatio = rec.AdherenceRatio
				}
			}
			return wc, true
		}
	}
	return ProgramWorkoutContext{}, false
}

// ActivePlan returns a copy of the active plan.
func (s *Store) ActivePlan() (ProgramPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ProgramPlan{}, false
	}
	return s.active.Clone(), true
}

// ArchivedPlans returns copies of the archived plans, most recently archived first.
func (s *Store) ArchivedPlans() []ProgramPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	plans := make([]ProgramPlan, len(s.archived))
	for i, p := range s.archived {
		plans[i] = p.Clone()
	}
	return plans
}

func (s *Store) archiveIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.archived, func(p ProgramPlan) bool { return p.ID == id })
}

// sortArchive orders the archive by archive date, falling back to update date, newest first.
func (s *Store) sortArchive() {
	slices.SortStableFunc(s.archived, func(a, b ProgramPlan) int {
		return archiveDate(b).Compare(archiveDate(a))
	})
}

func archiveDate(p ProgramPlan) time.Time {
	if p.ArchivedAt != nil {
		return *p.ArchivedAt
	}
	return p.UpdatedAt
}

// persistLocked schedules a snapshot of the current state. The caller must hold s.mu so revisions
// follow mutation order.
func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	archived := s.archived
	if archived == nil {
		archived = []ProgramPlan{}
	}
	data, err := json.Marshal(snapshot{
		ActivePlan:    s.active,
		ArchivedPlans: archived,
		SchemaVersion: SnapshotSchemaVersion,
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "marshal snapshot", errors.SlogError(err))
		return
	}
	s.persister.Schedule(ctx, data)
}
