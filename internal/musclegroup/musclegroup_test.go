package musclegroup_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/realronaldrump/workout-app-sub002/internal/musclegroup"
	"github.com/realronaldrump/workout-app-sub002/internal/program"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		want []program.MuscleGroup
	}{
		{"Back Squat", []program.MuscleGroup{program.MuscleQuads, program.MuscleGlutes}},
		{"  bulgarian   SPLIT squat ", []program.MuscleGroup{program.MuscleQuads, program.MuscleGlutes}},
		{"Romanian Deadlift", []program.MuscleGroup{program.MuscleHamstrings, program.MuscleGlutes}},
		{"Deadlift", []program.MuscleGroup{program.MuscleHamstrings, program.MuscleGlutes, program.MuscleBack}},
		{"Leg Curl", []program.MuscleGroup{program.MuscleHamstrings}},
		{"Barbell Curl", []program.MuscleGroup{program.MuscleBiceps}},
		{"Bench Press", []program.MuscleGroup{program.MuscleChest, program.MuscleTriceps}},
		{"Incline Dumbbell Press", []program.MuscleGroup{program.MuscleChest, program.MuscleTriceps}},
		{"Overhead Press", []program.MuscleGroup{program.MuscleShoulders, program.MuscleTriceps}},
		{"Lateral Raise", []program.MuscleGroup{program.MuscleShoulders}},
		{"Standing Calf Raise", []program.MuscleGroup{program.MuscleCalves}},
		{"Hanging Leg Raise", []program.MuscleGroup{program.MuscleCore}},
		{"Triceps Pushdown", []program.MuscleGroup{program.MuscleTriceps}},
		{"Pull-Up", []program.MuscleGroup{program.MuscleBack, program.MuscleBiceps}},
		{"Seated Cable Row", []program.MuscleGroup{program.MuscleBack}},
		{"Upright Row", []program.MuscleGroup{program.MuscleShoulders}},
		{"Juggling", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, musclegroup.Resolve(tt.name)); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.name, diff)
			}
		})
	}
}

func TestResolve_ReturnsCopy(t *testing.T) {
	first := musclegroup.Resolve("Bench Press")
	first[0] = program.MuscleCalves
	if got := musclegroup.Resolve("Bench Press"); got[0] != program.MuscleChest {
		t.Errorf("lookup table mutated through result: %v", got)
	}
}

func TestCatalogIsClassified(t *testing.T) {
	plan := program.NewGenerator(musclegroup.Resolve).Generate(nil, program.PlanRequest{
		Goal:        program.GoalGeneral,
		DaysPerWeek: 5,
	})
	for _, day := range plan.Weeks[0].Days {
		for _, ex := range day.Exercises {
			if len(musclegroup.Resolve(ex.ExerciseName)) == 0 {
				t.Errorf("%s on %s has no muscle group", ex.ExerciseName, day.Focus)
			}
		}
	}
}
