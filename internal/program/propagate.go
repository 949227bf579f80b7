package program

// propagateTargets copies each next target onto every later open day of the plan that trains the same
// exercise. Only TargetWeight and FailureStreak are overwritten. It returns the number of targets updated.
func propagateTargets(plan *ProgramPlan, from dayLoc, next map[string]PlannedExerciseTarget) int {
	origin := from.in(plan).ScheduledDate
	updated := 0
	for _, loc := range dayLocations(plan) {
		d := loc.in(plan)
		if !d.State.open() || !d.ScheduledDate.After(origin) {
			continue
		}
		for i := range d.Exercises {
			target, ok := next[normalizeExerciseName(d.Exercises[i].ExerciseName)]
			if !ok {
				continue
			}
			d.Exercises[i].TargetWeight = target.clone().TargetWeight
			d.Exercises[i].FailureStreak = target.FailureStreak
			updated++
		}
	}
	return updated
}
