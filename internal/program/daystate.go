package program

import "time"

// Day state transitions. Each reports whether it was applied; a transition whose precondition does
// not hold leaves the day untouched.
//
//	planned ──move──▶ moved ──move──▶ moved
//	planned|moved ──complete──▶ completed
//	planned|moved ──skip──▶ skipped
//	moved|skipped ──resetToPlanned──▶ planned

func (d *ProgramDayPlan) skip(at time.Time) bool {
	if !d.State.open() {
		return false
	}
	d.State = DaySkipped
	d.CompletionDate = &at
	return true
}

func (d *ProgramDayPlan) move(newDate time.Time) bool {
	if !d.State.open() {
		return false
	}
	newDate = CalendarDay(newDate)
	if d.State == DayPlanned {
		original := d.ScheduledDate
		d.MovedFromDate = &original
	}
	d.ScheduledDate = newDate
	d.State = DayMoved
	return true
}

func (d *ProgramDayPlan) complete(workoutID string, at time.Time) bool {
	if !d.State.open() {
		return false
	}
	d.State = DayCompleted
	d.CompletedWorkoutID = &workoutID
	d.CompletionDate = &at
	return true
}

// resetToPlanned returns a skipped or moved day to its original schedule.
func (d *ProgramDayPlan) resetToPlanned() bool {
	if d.State != DaySkipped && d.State != DayMoved {
		return false
	}
	if d.MovedFromDate != nil {
		d.ScheduledDate = *d.MovedFromDate
	}
	d.State = DayPlanned
	d.CompletionDate = nil
	d.CompletedWorkoutID = nil
	d.MovedFromDate = nil
	return true
}
