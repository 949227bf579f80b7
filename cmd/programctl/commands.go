package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
	"github.com/realronaldrump/workout-app-sub002/internal/program"
)

const dateLayout = "2006-01-02"

const usage = `usage: programctl <command> [flags]

commands:
  create   generate a new active plan from the workout history
  show     print the active plan and the archive
  today    print the day to train with readiness-adjusted targets
  complete record a workout against the active plan
  skip     skip a planned day
  move     move a planned day to another date
  reset    reset a day back to planned
  archive  archive the active plan
  restore  make an archived plan active again
  delete   delete an archived plan
  context  print the plan day a workout fulfilled
`

var errUsage = errors.NewSentinel("usage")

type command func(ctx context.Context, a *app, args []string) error

//nolint:gochecknoglobals // command table
var commands = map[string]command{
	"create":   createCmd,
	"show":     showCmd,
	"today":    todayCmd,
	"complete": completeCmd,
	"skip":     skipCmd,
	"move":     moveCmd,
	"reset":    resetCmd,
	"archive":  archiveCmd,
	"restore":  restoreCmd,
	"delete":   deleteCmd,
	"context":  contextCmd,
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return program.CalendarDay(fallback), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %w", errUsage, value, err)
	}
	return t, nil
}

func parseID(flagName, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%w: -%s is required", errUsage, flagName)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: -%s: %w", errUsage, flagName, err)
	}
	return id, nil
}

type appliedResult struct {
	Applied bool `json:"applied"`
}

func (a *app) printApplied(applied bool) error {
	if err := a.print(appliedResult{Applied: applied}); err != nil {
		return err
	}
	if !applied {
		return errNotApplied
	}
	return nil
}

func createCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create")
	name := fs.String("name", "", "plan name")
	goal := fs.String("goal", string(program.GoalGeneral), "strength, hypertrophy, endurance or general")
	days := fs.Int("days", 3, "training days per week (3 to 5)") //nolint:mnd
	start := fs.String("start", "", "first day of the plan, defaults to today")
	increment := fs.Float64("increment", program.DefaultWeightIncrement, "weight increment")
	threshold := fs.Int("threshold", program.DefaultFailureThreshold, "failed sessions before a deload")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	startDate, err := parseDate(*start, a.now())
	if err != nil {
		return err
	}

	req := program.PlanRequest{
		Name:             *name,
		Goal:             program.Goal(*goal),
		DaysPerWeek:      *days,
		StartDate:        startDate,
		WeightIncrement:  *increment,
		FailureThreshold: *threshold,
	}
	plan := a.store.CreatePlan(ctx, req, a.inputs.Workouts, a.inputs.Health)
	return a.print(plan)
}

type overview struct {
	Active   *program.ProgramPlan  `json:"active"`
	Archived []program.ProgramPlan `json:"archived"`
}

func showCmd(_ context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet("show"), args); err != nil {
		return err
	}
	var out overview
	if plan, ok := a.store.ActivePlan(); ok {
		out.Active = &plan
	}
	out.Archived = a.store.ArchivedPlans()
	return a.print(out)
}

func todayCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("today")
	date := fs.String("date", "", "reference date, defaults to today")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := parseDate(*date, a.now())
	if err != nil {
		return err
	}
	today, ok := a.store.TodayPlan(ctx, ref, a.inputs.Health, a.inputs.Wearable)
	if !ok {
		return errors.Wrap(errNotApplied, "no day to train", slog.String("date", ref.Format(dateLayout)))
	}
	return a.print(today)
}

func completeCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("complete")
	workoutID := fs.String("workout", "", "id of the workout in the dataset")
	planID := fs.String("plan", "", "plan the session was started from")
	dayID := fs.String("day", "", "plan day the session was started from")
	dayDate := fs.String("date", "", "scheduled date of the plan day the session was started from")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *workoutID == "" {
		return fmt.Errorf("%w: -workout is required", errUsage)
	}

	in := program.CompletionInput{}
	found := false
	for _, w := range a.inputs.Workouts {
		if w.ID == *workoutID {
			in.Workout = w
			found = true
			break
		}
	}
	if !found {
		return errors.Wrap(errNotApplied, "workout not in dataset", slog.String("workout_id", *workoutID))
	}
	if *planID != "" {
		id, err := parseID("plan", *planID)
		if err != nil {
			return err
		}
		in.PlannedProgramID = &id
	}
	if *dayID != "" {
		id, err := parseID("day", *dayID)
		if err != nil {
			return err
		}
		in.PlannedDayID = &id
	}
	if *dayDate != "" {
		d, err := parseDate(*dayDate, time.Time{})
		if err != nil {
			return err
		}
		in.PlannedDayDate = &d
	}

	record, ok := a.store.RecordCompletion(ctx, in, a.inputs.Health, a.inputs.Wearable)
	if !ok {
		return a.printApplied(false)
	}
	return a.print(record)
}

func dayFlagSet(name string) (*flag.FlagSet, *string) {
	fs := newFlagSet(name)
	return fs, fs.String("day", "", "plan day id")
}

func skipCmd(ctx context.Context, a *app, args []string) error {
	fs, day := dayFlagSet("skip")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := parseID("day", *day)
	if err != nil {
		return err
	}
	return a.printApplied(a.store.SkipDay(ctx, id))
}

func moveCmd(ctx context.Context, a *app, args []string) error {
	fs, day := dayFlagSet("move")
	date := fs.String("date", "", "new date")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := parseID("day", *day)
	if err != nil {
		return err
	}
	if *date == "" {
		return fmt.Errorf("%w: -date is required", errUsage)
	}
	newDate, err := parseDate(*date, time.Time{})
	if err != nil {
		return err
	}
	return a.printApplied(a.store.MoveDay(ctx, id, newDate))
}

func resetCmd(ctx context.Context, a *app, args []string) error {
	fs, day := dayFlagSet("reset")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := parseID("day", *day)
	if err != nil {
		return err
	}
	return a.printApplied(a.store.ResetDayToPlanned(ctx, id))
}

func archiveCmd(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet("archive"), args); err != nil {
		return err
	}
	return a.printApplied(a.store.ArchiveActivePlan(ctx))
}

func restoreCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("restore")
	plan := fs.String("plan", "", "archived plan id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := parseID("plan", *plan)
	if err != nil {
		return err
	}
	return a.printApplied(a.store.RestoreArchivedPlan(ctx, id))
}

func deleteCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("delete")
	plan := fs.String("plan", "", "archived plan id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := parseID("plan", *plan)
	if err != nil {
		return err
	}
	return a.printApplied(a.store.DeleteArchivedPlan(ctx, id))
}

func contextCmd(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("context")
	workoutID := fs.String("workout", "", "workout id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *workoutID == "" {
		return fmt.Errorf("%w: -workout is required", errUsage)
	}
	wc, ok := a.store.WorkoutContext(*workoutID)
	if !ok {
		return errors.Wrap(errNotApplied, "workout not linked to a plan", slog.String("workout_id", *workoutID))
	}
	return a.print(wc)
}
