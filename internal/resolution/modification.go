package resolution

import (
	"time"
)

type ModificationLevel string

const (
	LevelGoal    ModificationLevel = "goal"
	LevelPhase   ModificationLevel = "phase"
	LevelWeek    ModificationLevel = "week"
	LevelWorkout ModificationLevel = "workout"
)

func (l ModificationLevel) Valid() bool {
	switch l {
	case LevelGoal, LevelPhase, LevelWeek, LevelWorkout:
		return true
	default:
		return false
	}
}

type ModificationType string

const (
	ModTypeReschedule      ModificationType = "reschedule"
	ModTypeIntensityChange ModificationType = "intensity_change"
	ModTypeDurationChange  ModificationType = "duration_change"
	ModTypeTypeChange      ModificationType = "type_change"
	ModTypeTargetChange    ModificationType = "target_change"
	ModTypeCancel          ModificationType = "cancel"
)

type IntensityShift string

const (
	IntensityIncreased IntensityShift = "increased"
	IntensityDecreased IntensityShift = "decreased"
	IntensityUnchanged IntensityShift = "unchanged"
)

// ClassifyIntensityShift compares planned intensities on the easy < moderate
// < hard < threshold scale.
func ClassifyIntensityShift(from, to Intensity) IntensityShift {
	switch {
	case intensityRank[to] > intensityRank[from]:
		return IntensityIncreased
	case intensityRank[to] < intensityRank[from]:
		return IntensityDecreased
	default:
		return IntensityUnchanged
	}
}

// Modification is a requested change to one plan level. Actor and Reason
// are mandatory, the rest depends on Type.
type Modification struct {
	Actor    string           `json:"actor"`
	Type     ModificationType `json:"type"`
	Reason   string           `json:"reason"`
	Override bool             `json:"override,omitempty"`

	NewDate            *time.Time `json:"new_date,omitempty"`
	NewDurationMinutes *int       `json:"new_duration_minutes,omitempty"`
	NewIntensity       *Intensity `json:"new_intensity,omitempty"`
	NewWorkoutType     *string    `json:"new_workout_type,omitempty"`
	NewTargetWorkouts  *int       `json:"new_target_workouts,omitempty"`
}

// ModificationRecord is the append-only audit entry produced by applying a
// Modification. Records are never updated or deleted.
type ModificationRecord struct {
	ID             string            `json:"id"`
	Level          ModificationLevel `json:"level"`
	TargetID       string            `json:"target_id"`
	GoalID         string            `json:"goal_id"`
	Actor          string            `json:"actor"`
	Type           ModificationType  `json:"type"`
	Reason         string            `json:"reason"`
	AdjustedValue  string            `json:"adjusted_value,omitempty"`
	IntensityShift IntensityShift    `json:"intensity_shift,omitempty"`
	Override       bool              `json:"override,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
