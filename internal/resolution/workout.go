package resolution

import (
	"time"
)

type WorkoutStatus string

const (
	WorkoutStatusScheduled WorkoutStatus = "scheduled"
	WorkoutStatusCompleted WorkoutStatus = "completed"
	WorkoutStatusSkipped   WorkoutStatus = "skipped"
	WorkoutStatusModified  WorkoutStatus = "modified"
)

type Intensity string

const (
	IntensityEasy      Intensity = "easy"
	IntensityModerate  Intensity = "moderate"
	IntensityHard      Intensity = "hard"
	IntensityThreshold Intensity = "threshold"
)

func (i Intensity) Valid() bool {
	switch i {
	case IntensityEasy, IntensityModerate, IntensityHard, IntensityThreshold:
		return true
	default:
		return false
	}
}

// intensityRank orders intensities for change classification.
var intensityRank = map[Intensity]int{
	IntensityEasy:      1,
	IntensityModerate:  2,
	IntensityHard:      3,
	IntensityThreshold: 4,
}

// PlannedWorkout holds the prescription for a day, as produced by the
// planner (or a later modification).
type PlannedWorkout struct {
	Type            string    `json:"type"`
	DurationMinutes int       `json:"duration_minutes"`
	Intensity       Intensity `json:"intensity"`
	Target          string    `json:"target"`
	Exercises       []string  `json:"exercises,omitempty"`
}

// ContextSnapshot captures the user's self-reported state at planning time.
type ContextSnapshot struct {
	SleepQuality string `json:"sleep_quality,omitempty"`
	StressLevel  int    `json:"stress_level"`
	Soreness     int    `json:"soreness"`
	Energy       string `json:"energy,omitempty"`
}

// CompletedOutcome is present only on a completed workout.
type CompletedOutcome struct {
	ActualDurationMinutes int       `json:"actual_duration_minutes"`
	PerceivedIntensity    Intensity `json:"perceived_intensity,omitempty"`
	HowItFelt             string    `json:"how_it_felt,omitempty"`
	RPE                   int       `json:"rpe,omitempty"`
	Difficulty            string    `json:"difficulty,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
	ResolvedAt            time.Time `json:"resolved_at"`
}

// SkippedOutcome is present only on a skipped workout. Reason is mandatory.
type SkippedOutcome struct {
	Reason     string    `json:"reason"`
	Notes      string    `json:"notes,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// DailyWorkout is the leaf of the hierarchy. At most one of Completed and
// Skipped is non-nil, and the status is derived from them rather than
// stored, so an outcome on a scheduled workout is unrepresentable.
type DailyWorkout struct {
	ID      string    `json:"id"`
	WeekID  string    `json:"week_id"`
	PhaseID string    `json:"phase_id"` // lookup key, ownership stays with the week
	GoalID  string    `json:"goal_id"`
	Date    time.Time `json:"date"`

	Planned     PlannedWorkout  `json:"planned"`
	Context     ContextSnapshot `json:"context"`
	WasModified bool            `json:"was_modified"`

	Completed *CompletedOutcome `json:"completed,omitempty"`
	Skipped   *SkippedOutcome   `json:"skipped,omitempty"`
}

func (w *DailyWorkout) Status() WorkoutStatus {
	switch {
	case w.Completed != nil:
		return WorkoutStatusCompleted
	case w.Skipped != nil:
		return WorkoutStatusSkipped
	case w.WasModified:
		return WorkoutStatusModified
	default:
		return WorkoutStatusScheduled
	}
}

// IsTerminal reports whether an outcome has been recorded.
func (w *DailyWorkout) IsTerminal() bool {
	return w.Completed != nil || w.Skipped != nil
}

func (w *DailyWorkout) DayOfWeek() string {
	return w.Date.Weekday().String()
}
