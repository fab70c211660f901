package planner

import (
	"context"

	"github.com/resolvefit/backend/internal/resolution"
)

const (
	defaultWeeklyWorkouts = 3
	defaultWeeklyMinutes  = 90
	defaultWorkoutMinutes = 30
	defaultWorkoutType    = "strength"
	defaultWorkoutTarget  = "full body"
	defaultIntensity      = "moderate"
)

var quarterBlueprints = []struct {
	name        string
	description string
	focusAreas  []string
	difficulty  string
	riskLevel   string
}{
	{
		name:        "Foundation",
		description: "Build the habit and a consistent training base",
		focusAreas:  []string{"consistency", "technique", "habit building"},
		difficulty:  "beginner",
		riskLevel:   "low",
	},
	{
		name:        "Progression",
		description: "Increase volume and intensity week over week",
		focusAreas:  []string{"progressive overload", "endurance"},
		difficulty:  "intermediate",
		riskLevel:   "medium",
	},
	{
		name:        "Mastery",
		description: "Consolidate gains and sharpen weak points",
		focusAreas:  []string{"strength", "skill refinement"},
		difficulty:  "intermediate",
		riskLevel:   "medium",
	},
	{
		name:        "Acceleration",
		description: "Peak toward the yearly goal",
		focusAreas:  []string{"peaking", "goal specificity"},
		difficulty:  "advanced",
		riskLevel:   "high",
	},
}

// Static is the minimal safe planner: four quarters, three workouts a
// week on Monday, Wednesday and Friday. It never fails and serves as the
// fail-open fallback for smarter planners.
type Static struct{}

func NewStatic() Static {
	return Static{}
}

func (Static) PhaseTemplates(_ context.Context, _ string, totalWeeks int) ([]PhaseTemplate, error) {
	if totalWeeks < len(quarterBlueprints) {
		totalWeeks = len(quarterBlueprints)
	}

	quarters := len(quarterBlueprints)
	base := totalWeeks / quarters
	remainder := totalWeeks % quarters

	var phases []PhaseTemplate
	weekStart := 1
	for q := 0; q < quarters; q++ {
		length := base
		if q < remainder {
			length++
		}
		weekEnd := weekStart + length - 1
		blueprint := quarterBlueprints[q]

		phases = append(phases, PhaseTemplate{
			Quarter:        q + 1,
			Name:           blueprint.name,
			Description:    blueprint.description,
			WeekStart:      weekStart,
			WeekEnd:        weekEnd,
			TargetWorkouts: length * defaultWeeklyWorkouts,
			FocusAreas:     blueprint.focusAreas,
			Milestones: []resolution.Milestone{
				{Week: weekEnd, Goal: "finish the " + blueprint.name + " phase on schedule"},
			},
			RiskFactors:          []string{"schedule disruption", "loss of motivation"},
			ProtectiveStrategies: []string{"fixed training days", "weekly review"},
		})
		weekStart = weekEnd + 1
	}
	return phases, nil
}

func (Static) WeekTemplate(_ context.Context, phase PhaseTemplate, _ int) (WeekTemplate, error) {
	difficulty := "moderate"
	riskLevel := "low"
	if phase.Quarter >= 1 && phase.Quarter <= len(quarterBlueprints) {
		difficulty = quarterBlueprints[phase.Quarter-1].difficulty
		riskLevel = quarterBlueprints[phase.Quarter-1].riskLevel
	}

	focus := phase.Name
	if len(phase.FocusAreas) > 0 {
		focus = phase.FocusAreas[0]
	}

	week := WeekTemplate{
		Focus:                 focus,
		EstimatedDifficulty:   difficulty,
		RiskLevel:             riskLevel,
		TargetWorkouts:        defaultWeeklyWorkouts,
		TargetDurationMinutes: defaultWeeklyMinutes,
	}
	// Monday, Wednesday, Friday
	for _, dayOffset := range []int{0, 2, 4} {
		week.Workouts = append(week.Workouts, WorkoutTemplate{
			DayOffset:       dayOffset,
			Type:            defaultWorkoutType,
			DurationMinutes: defaultWorkoutMinutes,
			Intensity:       defaultIntensity,
			Target:          defaultWorkoutTarget,
		})
	}
	return week, nil
}
