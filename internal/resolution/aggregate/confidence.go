package aggregate

import (
	"github.com/resolvefit/backend/internal/resolution"
)

// LifeSignal is a read-only view of a reported life event. The engine does
// not interpret event semantics, strategies only look at the impact level.
type LifeSignal struct {
	Type   string
	Impact string
}

// ConfidenceStrategy estimates the likelihood, in [0,1], that the user
// keeps the resolution on track. Confidence is advisory and never blocks
// state transitions.
type ConfidenceStrategy interface {
	Confidence(goal *resolution.YearlyGoal, weeks []*resolution.WeeklyPlan, signals []LifeSignal) float64
}

// TrailingAdherence weights adherence over the trailing N weeks, most
// recent week weighted highest.
type TrailingAdherence struct {
	Weeks int
}

func NewTrailingAdherence(weeks int) TrailingAdherence {
	if weeks <= 0 {
		weeks = 4
	}
	return TrailingAdherence{Weeks: weeks}
}

func (s TrailingAdherence) Confidence(
	goal *resolution.YearlyGoal,
	weeks []*resolution.WeeklyPlan,
	_ []LifeSignal,
) float64 {
	// only weeks the user has lived through carry signal
	var lived []*resolution.WeeklyPlan
	for _, w := range weeks {
		if w.WeekNumber <= goal.CurrentWeek {
			lived = append(lived, w)
		}
	}
	if len(lived) == 0 {
		return 0.5 // nothing observed yet
	}

	if len(lived) > s.Weeks {
		lived = lived[len(lived)-s.Weeks:]
	}

	var weightedSum, weightTotal float64
	for i, w := range lived {
		weight := float64(i + 1)
		weightedSum += w.AdherenceRate * weight
		weightTotal += weight
	}
	return weightedSum / weightTotal
}

// LifeEventAware dampens a base strategy's estimate by the impact of
// reported life events.
type LifeEventAware struct {
	Base ConfidenceStrategy
}

var impactPenalty = map[string]float64{
	"low":    0.03,
	"medium": 0.08,
	"high":   0.15,
}

func (s LifeEventAware) Confidence(
	goal *resolution.YearlyGoal,
	weeks []*resolution.WeeklyPlan,
	signals []LifeSignal,
) float64 {
	confidence := s.Base.Confidence(goal, weeks, signals)
	for _, sig := range signals {
		confidence -= impactPenalty[sig.Impact]
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
