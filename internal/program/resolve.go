package program

import (
	"time"

	"github.com/google/uuid"
)

// dayLoc addresses a day inside a plan's weeks.
type dayLoc struct {
	week int
	day  int
}

// dayLocations flattens the plan into one slice of day addresses in schedule order.
func dayLocations(plan *ProgramPlan) []dayLoc {
	var locs []dayLoc
	for w := range plan.Weeks {
		for d := range plan.Weeks[w].Days {
			locs = append(locs, dayLoc{week: w, day: d})
		}
	}
	return locs
}

func (l dayLoc) in(plan *ProgramPlan) *ProgramDayPlan {
	return &plan.Weeks[l.week].Days[l.day]
}

// findDay locates a day by id.
func findDay(plan *ProgramPlan, id uuid.UUID) (dayLoc, bool) {
	for _, loc := range dayLocations(plan) {
		if loc.in(plan).ID == id {
			return loc, true
		}
	}
	return dayLoc{}, false
}

// dayMatcher is one strategy for resolving which day a logged workout fulfilled.
type dayMatcher func(plan *ProgramPlan, in CompletionInput) (dayLoc, bool)

// completionMatchers are tried in order and the first match wins.
//
//nolint:gochecknoglobals // fixed strategy order.
var completionMatchers = []dayMatcher{
	matchByDayID,
	matchByPlannedDate,
	matchNearest,
}

func resolveCompletionDay(plan *ProgramPlan, in CompletionInput) (dayLoc, bool) {
	for _, match := range completionMatchers {
		if loc, ok := match(plan, in); ok {
			return loc, true
		}
	}
	return dayLoc{}, false
}

// matchByDayID matches any day with the hinted id, including completed ones so a repeated
// completion resolves to the same day and is rejected there.
func matchByDayID(plan *ProgramPlan, in CompletionInput) (dayLoc, bool) {
	if in.PlannedDayID == nil {
		return dayLoc{}, false
	}
	return findDay(plan, *in.PlannedDayID)
}

// matchByPlannedDate matches an open day currently scheduled on the hinted calendar day.
func matchByPlannedDate(plan *ProgramPlan, in CompletionInput) (dayLoc, bool) {
	if in.PlannedDayDate == nil {
		return dayLoc{}, false
	}
	for _, loc := range dayLocations(plan) {
		d := loc.in(plan)
		if d.State.open() && sameDay(d.ScheduledDate, *in.PlannedDayDate) {
			return loc, true
		}
	}
	return dayLoc{}, false
}

// matchNearest matches the open day closest in time to the workout. Ties go to the earlier day.
func matchNearest(plan *ProgramPlan, in CompletionInput) (dayLoc, bool) {
	var (
		best     dayLoc
		bestDist time.Duration
		found    bool
	)
	for _, loc := range dayLocations(plan) {
		d := loc.in(plan)
		if !d.State.open() {
			continue
		}
		dist := absDuration(d.ScheduledDate.Sub(in.Workout.Date))
		if !found || dist < bestDist || (dist == bestDist && d.ScheduledDate.Before(best.in(plan).ScheduledDate)) {
			best, bestDist, found = loc, dist, true
		}
	}
	return best, found
}

// todayMatchers pick the day to train on a reference date, in order of preference.
//
//nolint:gochecknoglobals // fixed strategy order.
var todayMatchers = []func(plan *ProgramPlan, ref time.Time) (dayLoc, bool){
	// Scheduled on the reference day.
	func(plan *ProgramPlan, ref time.Time) (dayLoc, bool) {
		return earliestOpen(plan, func(d *ProgramDayPlan) bool { return sameDay(d.ScheduledDate, ref) })
	},
	// Most overdue.
	func(plan *ProgramPlan, ref time.Time) (dayLoc, bool) {
		return earliestOpen(plan, func(d *ProgramDayPlan) bool { return CalendarDay(d.ScheduledDate).Before(CalendarDay(ref)) })
	},
	// Nearest upcoming.
	func(plan *ProgramPlan, ref time.Time) (dayLoc, bool) {
		return earliestOpen(plan, func(d *ProgramDayPlan) bool { return CalendarDay(d.ScheduledDate).After(CalendarDay(ref)) })
	},
	func(plan *ProgramPlan, _ time.Time) (dayLoc, bool) {
		return earliestOpen(plan, func(*ProgramDayPlan) bool { return true })
	},
}

func resolveTodayDay(plan *ProgramPlan, ref time.Time) (dayLoc, bool) {
	for _, match := range todayMatchers {
		if loc, ok := match(plan, ref); ok {
			return loc, true
		}
	}
	return dayLoc{}, false
}

// earliestOpen returns the planned or moved day with the earliest scheduled date that satisfies keep.
func earliestOpen(plan *ProgramPlan, keep func(*ProgramDayPlan) bool) (dayLoc, bool) {
	var (
		best  dayLoc
		found bool
	)
	for _, loc := range dayLocations(plan) {
		d := loc.in(plan)
		if !d.State.open() || !keep(d) {
			continue
		}
		if !found || d.ScheduledDate.Before(best.in(plan).ScheduledDate) {
			best, found = loc, true
		}
	}
	return best, found
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
