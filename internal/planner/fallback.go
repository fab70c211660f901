package planner

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Fallback tries the primary planner and falls open to the safe default
// when it fails. Progression never blocks on planner availability.
type Fallback struct {
	primary Planner
	safe    Static
}

func NewFallback(primary Planner) *Fallback {
	return &Fallback{
		primary: primary,
		safe:    NewStatic(),
	}
}

func (f *Fallback) PhaseTemplates(ctx context.Context, resolutionText string, totalWeeks int) ([]PhaseTemplate, error) {
	phases, err := f.primary.PhaseTemplates(ctx, resolutionText, totalWeeks)
	if err != nil {
		log.Warnf("planner failed to produce phase templates, using safe default: %s", err)
		return f.safe.PhaseTemplates(ctx, resolutionText, totalWeeks)
	}
	return phases, nil
}

func (f *Fallback) WeekTemplate(ctx context.Context, phase PhaseTemplate, weekNumber int) (WeekTemplate, error) {
	week, err := f.primary.WeekTemplate(ctx, phase, weekNumber)
	if err != nil {
		log.Warnf("planner failed to produce week %d template, using safe default: %s", weekNumber, err)
		return f.safe.WeekTemplate(ctx, phase, weekNumber)
	}
	return week, nil
}
