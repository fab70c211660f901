package aggregate

import (
	"testing"

	"github.com/resolvefit/backend/internal/resolution"

	"github.com/stretchr/testify/assert"
)

func TestTrailingAdherence(t *testing.T) {
	strategy := NewTrailingAdherence(4)
	goal := &resolution.YearlyGoal{CurrentWeek: 4, TotalWeeks: 52}

	weeks := []*resolution.WeeklyPlan{
		{WeekNumber: 1, AdherenceRate: 1.0},
		{WeekNumber: 2, AdherenceRate: 1.0},
		{WeekNumber: 3, AdherenceRate: 0.5},
		{WeekNumber: 4, AdherenceRate: 0.0},
	}

	// weights 1..4 on the lived weeks: (1 + 2 + 1.5 + 0) / 10
	got := strategy.Confidence(goal, weeks, nil)
	assert.InDelta(t, 0.45, got, 1e-9)
}

func TestTrailingAdherence_noLivedWeeks(t *testing.T) {
	strategy := NewTrailingAdherence(4)
	goal := &resolution.YearlyGoal{CurrentWeek: 0, TotalWeeks: 52}

	got := strategy.Confidence(goal, nil, nil)
	assert.Equal(t, 0.5, got)
}

func TestTrailingAdherence_windowsOnlyRecentWeeks(t *testing.T) {
	strategy := NewTrailingAdherence(2)
	goal := &resolution.YearlyGoal{CurrentWeek: 3, TotalWeeks: 52}

	weeks := []*resolution.WeeklyPlan{
		{WeekNumber: 1, AdherenceRate: 0.0}, // outside the window
		{WeekNumber: 2, AdherenceRate: 1.0},
		{WeekNumber: 3, AdherenceRate: 1.0},
	}

	got := strategy.Confidence(goal, weeks, nil)
	assert.Equal(t, 1.0, got)
}

func TestTrailingAdherence_ignoresUpcomingWeeks(t *testing.T) {
	strategy := NewTrailingAdherence(4)
	goal := &resolution.YearlyGoal{CurrentWeek: 1, TotalWeeks: 52}

	weeks := []*resolution.WeeklyPlan{
		{WeekNumber: 1, AdherenceRate: 1.0},
		{WeekNumber: 2, AdherenceRate: 0.0}, // not lived yet
	}

	got := strategy.Confidence(goal, weeks, nil)
	assert.Equal(t, 1.0, got)
}

func TestLifeEventAware(t *testing.T) {
	goal := &resolution.YearlyGoal{CurrentWeek: 1, TotalWeeks: 52}
	weeks := []*resolution.WeeklyPlan{{WeekNumber: 1, AdherenceRate: 1.0}}

	strategy := LifeEventAware{Base: NewTrailingAdherence(4)}

	got := strategy.Confidence(goal, weeks, []LifeSignal{
		{Type: "job_change", Impact: "high"},
		{Type: "moving", Impact: "medium"},
	})
	assert.InDelta(t, 1.0-0.15-0.08, got, 1e-9)
}

func TestLifeEventAware_floorsAtZero(t *testing.T) {
	goal := &resolution.YearlyGoal{CurrentWeek: 1, TotalWeeks: 52}
	weeks := []*resolution.WeeklyPlan{{WeekNumber: 1, AdherenceRate: 0.1}}

	strategy := LifeEventAware{Base: NewTrailingAdherence(4)}

	signals := []LifeSignal{
		{Impact: "high"}, {Impact: "high"}, {Impact: "high"},
	}
	assert.Equal(t, 0.0, strategy.Confidence(goal, weeks, signals))
}
