// Package planner supplies phase and week templates for materialization.
// The engine treats the planner as an opaque data source and fails open
// to a minimal safe template rather than blocking progression.
package planner

import (
	"context"

	"github.com/resolvefit/backend/internal/resolution"
)

// WorkoutTemplate prescribes one daily workout, DayOffset is days from
// the week's start date.
type WorkoutTemplate struct {
	DayOffset       int      `json:"day_offset"`
	Type            string   `json:"type"`
	DurationMinutes int      `json:"duration_minutes"`
	Intensity       string   `json:"intensity"`
	Target          string   `json:"target"`
	Exercises       []string `json:"exercises,omitempty"`
}

type WeekTemplate struct {
	Focus                 string            `json:"focus"`
	EstimatedDifficulty   string            `json:"estimated_difficulty"`
	RiskLevel             string            `json:"risk_level"`
	TargetWorkouts        int               `json:"target_workouts"`
	TargetDurationMinutes int               `json:"target_duration_minutes"`
	Workouts              []WorkoutTemplate `json:"workouts"`
}

type PhaseTemplate struct {
	Quarter              int                    `json:"quarter"`
	Name                 string                 `json:"name"`
	Description          string                 `json:"description"`
	WeekStart            int                    `json:"week_start"`
	WeekEnd              int                    `json:"week_end"`
	TargetWorkouts       int                    `json:"target_workouts"`
	FocusAreas           []string               `json:"focus_areas"`
	Milestones           []resolution.Milestone `json:"milestones"`
	RiskFactors          []string               `json:"risk_factors"`
	ProtectiveStrategies []string               `json:"protective_strategies"`
}

type Planner interface {
	// PhaseTemplates splits the goal's weeks into quarterly phases.
	PhaseTemplates(ctx context.Context, resolutionText string, totalWeeks int) ([]PhaseTemplate, error)
	// WeekTemplate prescribes one weekly plan within a phase.
	WeekTemplate(ctx context.Context, phase PhaseTemplate, weekNumber int) (WeekTemplate, error)
}
