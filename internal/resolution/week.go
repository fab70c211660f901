package resolution

import (
	"time"
)

type WeekStatus string

const (
	WeekStatusUpcoming  WeekStatus = "upcoming"
	WeekStatusActive    WeekStatus = "active"
	WeekStatusCompleted WeekStatus = "completed"
)

// WeeklyPlan owns the daily workouts of one calendar week. WeekNumber is
// global and gapless within the goal, QuarterWeek restarts at 1 per phase.
type WeeklyPlan struct {
	ID                    string     `json:"id"`
	PhaseID               string     `json:"phase_id"`
	GoalID                string     `json:"goal_id"`
	WeekNumber            int        `json:"week_number"`
	QuarterWeek           int        `json:"quarter_week"`
	StartDate             time.Time  `json:"start_date"`
	EndDate               time.Time  `json:"end_date"`
	TargetWorkouts        int        `json:"target_workouts"`
	TargetDurationMinutes int        `json:"target_duration_minutes"`
	Focus                 string     `json:"focus"`
	EstimatedDifficulty   string     `json:"estimated_difficulty"`
	RiskLevel             string     `json:"risk_level"`
	Status                WeekStatus `json:"status"`

	// derived from child daily workouts
	WorkoutsPlanned       int     `json:"workouts_planned"`
	WorkoutsCompleted     int     `json:"workouts_completed"`
	TotalMinutesCompleted int     `json:"total_minutes_completed"`
	AdherenceRate         float64 `json:"adherence_rate"`
	CompletionPercentage  float64 `json:"completion_percentage"`
	RemainingWorkouts     int     `json:"remaining_workouts"`
}

// ContainsDate reports whether d falls within [StartDate, EndDate],
// compared by calendar day.
func (w *WeeklyPlan) ContainsDate(d time.Time) bool {
	day := truncateToDay(d)
	return !day.Before(truncateToDay(w.StartDate)) && !day.After(truncateToDay(w.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
