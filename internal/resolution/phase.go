package resolution

type PhaseStatus string

const (
	PhaseStatusPending   PhaseStatus = "pending"
	PhaseStatusActive    PhaseStatus = "active"
	PhaseStatusCompleted PhaseStatus = "completed"
)

type Milestone struct {
	Week int    `json:"week"`
	Goal string `json:"goal"`
}

// QuarterlyPhase covers a contiguous, non-overlapping slice of the goal's
// week numbering. WeekStart and WeekEnd are global week numbers, inclusive.
type QuarterlyPhase struct {
	ID                   string      `json:"id"`
	GoalID               string      `json:"goal_id"`
	Quarter              int         `json:"quarter"`
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	WeekStart            int         `json:"week_start"`
	WeekEnd              int         `json:"week_end"`
	TargetWorkouts       int         `json:"target_workouts"`
	FocusAreas           []string    `json:"focus_areas"`
	Milestones           []Milestone `json:"milestones"`
	RiskFactors          []string    `json:"risk_factors"`
	ProtectiveStrategies []string    `json:"protective_strategies"`
	Status               PhaseStatus `json:"status"`

	// derived from child weekly plans
	WorkoutsCompleted    int     `json:"workouts_completed"`
	AdherenceRate        float64 `json:"adherence_rate"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// ContainsWeek reports whether the global week number falls in this phase.
func (p *QuarterlyPhase) ContainsWeek(weekNumber int) bool {
	return weekNumber >= p.WeekStart && weekNumber <= p.WeekEnd
}

// WeekCount is the number of weekly plans this phase materializes.
func (p *QuarterlyPhase) WeekCount() int {
	return p.WeekEnd - p.WeekStart + 1
}
