package resolution

import (
	"time"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusAbandoned:
		return true
	default:
		return false
	}
}

// YearlyGoal is the root of a resolution hierarchy. Derived fields
// (ProgressPercentage, ConfidenceScore) are recomputed from children and
// the clock position, never set directly.
type YearlyGoal struct {
	ID                 string     `json:"id"`
	ResolutionText     string     `json:"resolution_text"`
	StartDate          time.Time  `json:"start_date"`
	TargetDate         time.Time  `json:"target_date"`
	CurrentWeek        int        `json:"current_week"`
	TotalWeeks         int        `json:"total_weeks"`
	ProgressPercentage float64    `json:"progress_percentage"`
	ConfidenceScore    *float64   `json:"confidence_score,omitempty"`
	Status             GoalStatus `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (g *YearlyGoal) IsActive() bool {
	return g.Status == GoalStatusActive
}
