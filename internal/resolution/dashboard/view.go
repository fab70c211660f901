// Package dashboard projects the goal hierarchy into read models for the
// app's home screen. Projections are rebuilt from the store on demand and
// cached per goal, engine events invalidate the cache.
package dashboard

import (
	"time"

	"github.com/resolvefit/backend/internal/resolution"
)

// View is the full home screen projection for one goal.
type View struct {
	Goal          *resolution.YearlyGoal       `json:"goal"`
	CurrentPhase  *resolution.QuarterlyPhase   `json:"current_phase,omitempty"`
	CurrentWeek   *WeekView                    `json:"current_week,omitempty"`
	UpcomingWeeks []*resolution.WeeklyPlan     `json:"upcoming_weeks"`
	AllPhases     []*resolution.QuarterlyPhase `json:"all_phases"`
	GeneratedAt   time.Time                    `json:"generated_at"`
}

type QuarterView struct {
	Phase *resolution.QuarterlyPhase `json:"phase"`
	Weeks []*resolution.WeeklyPlan   `json:"weeks"`
}

type WeekView struct {
	Week     *resolution.WeeklyPlan `json:"week"`
	Workouts []*WorkoutView         `json:"workouts"`
}

// WorkoutView decorates a daily workout with its derived status, which is
// not serialized on the entity itself.
type WorkoutView struct {
	Workout   *resolution.DailyWorkout         `json:"workout"`
	Status    resolution.WorkoutStatus         `json:"status"`
	DayOfWeek string                           `json:"day_of_week"`
	History   []*resolution.ModificationRecord `json:"history,omitempty"`
}

func newWorkoutView(workout *resolution.DailyWorkout) *WorkoutView {
	return &WorkoutView{
		Workout:   workout,
		Status:    workout.Status(),
		DayOfWeek: workout.DayOfWeek(),
	}
}
