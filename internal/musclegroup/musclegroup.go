// Package musclegroup classifies exercises by the muscle groups they train, based on keywords in the
// exercise name.
package musclegroup

import (
	"slices"
	"strings"

	"github.com/realronaldrump/workout-app-sub002/internal/program"
)

type rule struct {
	keywords []string
	groups   []program.MuscleGroup
}

// rules are matched in order. The first matching rule wins so specific names must precede generic ones.
//
//nolint:gochecknoglobals // read-only lookup table.
var rules = []rule{
	{[]string{"romanian deadlift", "rdl", "stiff leg", "good morning"}, []program.MuscleGroup{program.MuscleHamstrings, program.MuscleGlutes}},
	{[]string{"deadlift"}, []program.MuscleGroup{program.MuscleHamstrings, program.MuscleGlutes, program.MuscleBack}},
	{[]string{"leg curl", "hamstring curl", "nordic"}, []program.MuscleGroup{program.MuscleHamstrings}},
	{[]string{"hip thrust", "glute bridge", "kickback"}, []program.MuscleGroup{program.MuscleGlutes}},
	{[]string{"squat", "lunge", "split squat", "step up", "step-up"}, []program.MuscleGroup{program.MuscleQuads, program.MuscleGlutes}},
	{[]string{"leg press", "leg extension", "hack"}, []program.MuscleGroup{program.MuscleQuads}},
	{[]string{"calf"}, []program.MuscleGroup{program.MuscleCalves}},
	{[]string{"leg raise", "plank", "crunch", "ab wheel", "sit-up", "sit up", "pallof"}, []program.MuscleGroup{program.MuscleCore}},
	{[]string{"overhead press", "shoulder press", "military press", "arnold", "push press"}, []program.MuscleGroup{program.MuscleShoulders, program.MuscleTriceps}},
	{[]string{"lateral raise", "front raise", "rear delt", "face pull", "upright row"}, []program.MuscleGroup{program.MuscleShoulders}},
	{[]string{"bench", "incline", "decline", "chest press", "push-up", "push up", "fly", "flye", "dip"}, []program.MuscleGroup{program.MuscleChest, program.MuscleTriceps}},
	{[]string{"pushdown", "skull crusher", "triceps", "tricep"}, []program.MuscleGroup{program.MuscleTriceps}},
	{[]string{"curl"}, []program.MuscleGroup{program.MuscleBiceps}},
	{[]string{"pull-up", "pull up", "pullup", "chin-up", "chin up", "chinup"}, []program.MuscleGroup{program.MuscleBack, program.MuscleBiceps}},
	{[]string{"row", "pulldown", "pull-down", "pullover", "shrug"}, []program.MuscleGroup{program.MuscleBack}},
}

// Resolve returns the muscle groups trained by the named exercise, or nil if the name is not recognized.
// It satisfies [program.MuscleGroupResolver].
func Resolve(name string) []program.MuscleGroup {
	normalized := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	for _, r := range rules {
		if slices.ContainsFunc(r.keywords, func(k string) bool { return strings.Contains(normalized, k) }) {
			return slices.Clone(r.groups)
		}
	}
	return nil
}
