// Package aggregate keeps derived counters consistent with child state.
// Every recount is a full recomputation from the children, never an
// incremental patch, so the "derived = pure function of children"
// invariant stays trivially checkable and crash safe.
package aggregate

import (
	"fmt"

	"github.com/resolvefit/backend/internal/resolution"
)

// RecountWeek recomputes a weekly plan's derived counters from its daily
// workouts. It fails with a ConsistencyError when a child workout's date
// falls outside the week's range.
func RecountWeek(week *resolution.WeeklyPlan, workouts []*resolution.DailyWorkout) error {
	for _, w := range workouts {
		if !week.ContainsDate(w.Date) {
			return &resolution.ConsistencyError{
				Message: fmt.Sprintf(
					"workout [%s] dated %s outside week %d range",
					w.ID, w.Date.Format("2006-01-02"), week.WeekNumber,
				),
			}
		}
	}

	completed := 0
	totalMinutes := 0
	for _, w := range workouts {
		if w.Completed != nil {
			completed++
			totalMinutes += w.Completed.ActualDurationMinutes
		}
	}

	week.WorkoutsPlanned = len(workouts)
	week.WorkoutsCompleted = completed
	week.TotalMinutesCompleted = totalMinutes

	// adherence denominator is what was actually scheduled, a fully
	// rescheduled-away week yields 0, not NaN
	if week.WorkoutsPlanned == 0 {
		week.AdherenceRate = 0
	} else {
		week.AdherenceRate = float64(completed) / float64(week.WorkoutsPlanned)
	}

	week.CompletionPercentage = clampPercentage(completed, week.TargetWorkouts)
	week.RemainingWorkouts = week.TargetWorkouts - completed
	if week.RemainingWorkouts < 0 {
		week.RemainingWorkouts = 0
	}

	return nil
}

// RecountPhase recomputes a phase's derived counters from its weekly
// plans. Adherence is weighted by each week's planned workout count. The
// displayed completion percentage clamps at 100 but the raw completed
// count is preserved.
func RecountPhase(phase *resolution.QuarterlyPhase, weeks []*resolution.WeeklyPlan) {
	completed := 0
	planned := 0
	for _, w := range weeks {
		completed += w.WorkoutsCompleted
		planned += w.WorkoutsPlanned
	}

	phase.WorkoutsCompleted = completed
	if planned == 0 {
		phase.AdherenceRate = 0
	} else {
		phase.AdherenceRate = float64(completed) / float64(planned)
	}
	phase.CompletionPercentage = clampPercentage(completed, phase.TargetWorkouts)
}

// RecountGoal recomputes the goal's progress from the clock position.
func RecountGoal(goal *resolution.YearlyGoal) {
	if goal.TotalWeeks == 0 {
		goal.ProgressPercentage = 0
		return
	}
	progress := float64(goal.CurrentWeek) / float64(goal.TotalWeeks) * 100
	if progress > 100 {
		progress = 100
	}
	goal.ProgressPercentage = progress
}

// VerifyWeekSequence checks that the global week numbers of a goal's
// weekly plans form a gapless sequence starting at 1.
func VerifyWeekSequence(weeks []*resolution.WeeklyPlan) error {
	for i, w := range weeks {
		if w.WeekNumber != i+1 {
			return &resolution.ConsistencyError{
				Message: fmt.Sprintf(
					"week sequence broken: position %d holds week number %d", i+1, w.WeekNumber,
				),
			}
		}
	}
	return nil
}

func clampPercentage(completed, target int) float64 {
	if target == 0 {
		return 0
	}
	pct := float64(completed) / float64(target) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
