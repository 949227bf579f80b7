package program

// dayTemplate describes one training day of a split archetype.
type dayTemplate struct {
	focus     string
	groups    []MuscleGroup
	fallbacks []string
}

// exerciseCatalog is the fixed exercise pool used when history is missing or thin.
//
//nolint:gochecknoglobals // read-only lookup table.
var exerciseCatalog = []string{
	"Back Squat",
	"Front Squat",
	"Leg Press",
	"Romanian Deadlift",
	"Deadlift",
	"Hip Thrust",
	"Leg Curl",
	"Standing Calf Raise",
	"Bench Press",
	"Incline Dumbbell Press",
	"Overhead Press",
	"Lateral Raise",
	"Barbell Row",
	"Pull-Up",
	"Lat Pulldown",
	"Seated Cable Row",
	"Barbell Curl",
	"Triceps Pushdown",
	"Plank",
	"Hanging Leg Raise",
}

//nolint:gochecknoglobals // read-only lookup table.
var splitTemplates = map[SplitType][]dayTemplate{
	SplitFullBody: {
		{
			focus:     "Full Body A",
			groups:    []MuscleGroup{MuscleQuads, MuscleChest, MuscleBack, MuscleShoulders, MuscleCore},
			fallbacks: []string{"Back Squat", "Bench Press", "Barbell Row", "Overhead Press", "Plank"},
		},
		{
			focus:     "Full Body B",
			groups:    []MuscleGroup{MuscleHamstrings, MuscleBack, MuscleChest, MuscleTriceps, MuscleBiceps},
			fallbacks: []string{"Romanian Deadlift", "Pull-Up", "Incline Dumbbell Press", "Triceps Pushdown", "Barbell Curl"},
		},
		{
			focus:     "Full Body C",
			groups:    []MuscleGroup{MuscleGlutes, MuscleShoulders, MuscleBack, MuscleQuads, MuscleCalves},
			fallbacks: []string{"Deadlift", "Overhead Press", "Lat Pulldown", "Leg Press", "Standing Calf Raise"},
		},
	},
	SplitUpperLower: {
		{
			focus:     "Upper A",
			groups:    []MuscleGroup{MuscleChest, MuscleBack, MuscleShoulders, MuscleTriceps, MuscleBiceps},
			fallbacks: []string{"Bench Press", "Barbell Row", "Overhead Press", "Triceps Pushdown", "Barbell Curl"},
		},
		{
			focus:     "Lower A",
			groups:    []MuscleGroup{MuscleQuads, MuscleHamstrings, MuscleGlutes, MuscleCalves, MuscleCore},
			fallbacks: []string{"Back Squat", "Romanian Deadlift", "Hip Thrust", "Standing Calf Raise", "Plank"},
		},
		{
			focus:     "Upper B",
			groups:    []MuscleGroup{MuscleBack, MuscleChest, MuscleShoulders, MuscleBiceps, MuscleTriceps},
			fallbacks: []string{"Pull-Up", "Incline Dumbbell Press", "Lateral Raise", "Barbell Curl", "Triceps Pushdown"},
		},
		{
			focus:     "Lower B",
			groups:    []MuscleGroup{MuscleHamstrings, MuscleQuads, MuscleGlutes, MuscleCalves, MuscleCore},
			fallbacks: []string{"Deadlift", "Front Squat", "Leg Curl", "Standing Calf Raise", "Hanging Leg Raise"},
		},
	},
	SplitPushPullLegs: {
		{
			focus:     "Push",
			groups:    []MuscleGroup{MuscleChest, MuscleShoulders, MuscleTriceps},
			fallbacks: []string{"Bench Press", "Overhead Press", "Incline Dumbbell Press", "Lateral Raise", "Triceps Pushdown"},
		},
		{
			focus:     "Pull",
			groups:    []MuscleGroup{MuscleBack, MuscleBiceps},
			fallbacks: []string{"Barbell Row", "Pull-Up", "Seated Cable Row", "Lat Pulldown", "Barbell Curl"},
		},
		{
			focus:     "Legs",
			groups:    []MuscleGroup{MuscleQuads, MuscleHamstrings, MuscleGlutes, MuscleCalves},
			fallbacks: []string{"Back Squat", "Romanian Deadlift", "Leg Press", "Leg Curl", "Standing Calf Raise"},
		},
		{
			focus:     "Upper",
			groups:    []MuscleGroup{MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps},
			fallbacks: []string{"Bench Press", "Barbell Row", "Overhead Press", "Barbell Curl", "Triceps Pushdown"},
		},
		{
			focus:     "Lower",
			groups:    []MuscleGroup{MuscleQuads, MuscleHamstrings, MuscleGlutes, MuscleCore},
			fallbacks: []string{"Front Squat", "Deadlift", "Hip Thrust", "Leg Curl", "Hanging Leg Raise"},
		},
	},
}

// dayOffsets places each training day of a week relative to the week's first day.
//
//nolint:gochecknoglobals // read-only lookup table.
var dayOffsets = map[int][]int{
	3: {0, 2, 4},       //nolint:mnd // Mon/Wed/Fri.
	4: {0, 1, 3, 4},    //nolint:mnd // Mon/Tue/Thu/Fri.
	5: {0, 1, 2, 4, 5}, //nolint:mnd // Mon/Tue/Wed/Fri/Sat.
}

// weekMultipliers is the periodization curve. The last week is a deload.
//
//nolint:gochecknoglobals // read-only lookup table.
var weekMultipliers = []float64{0.95, 1.00, 1.02, 1.04, 1.06, 1.08, 1.10, 0.90}

// goalParameters returns set count and rep range for a goal.
func goalParameters(goal Goal) (int, int, int) {
	switch goal {
	case GoalStrength:
		return 4, 3, 6 //nolint:mnd // heavy low-rep work.
	case GoalEndurance:
		return 3, 12, 15 //nolint:mnd // light high-rep work.
	case GoalHypertrophy, GoalGeneral:
		return 3, 8, 12 //nolint:mnd // moderate rep range.
	}
	return 3, 8, 12 //nolint:mnd // unknown goals train like general.
}

// splitForDays clamps the weekly frequency to 3..5 and picks the matching split archetype.
func splitForDays(daysPerWeek int) (int, SplitType) {
	switch {
	case daysPerWeek <= 3: //nolint:mnd // minimum frequency.
		return 3, SplitFullBody //nolint:mnd // minimum frequency.
	case daysPerWeek == 4: //nolint:mnd // upper/lower frequency.
		return 4, SplitUpperLower //nolint:mnd // upper/lower frequency.
	default:
		return 5, SplitPushPullLegs //nolint:mnd // maximum frequency.
	}
}
