package lifeevents

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/aggregate"
	"github.com/resolvefit/backend/internal/telemetry/metrics"
	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/google/uuid"
)

type eventsRepo interface {
	Add(ctx context.Context, event *LifeEvent) error
	ListForGoal(ctx context.Context, goalID string) ([]*LifeEvent, error)
}

type goalGetter interface {
	GetGoal(ctx context.Context, id string) (*resolution.YearlyGoal, error)
}

type ReportParams struct {
	GoalID      string     `json:"goal_id"`
	Kind        EventKind  `json:"event_type"`
	Impact      Impact     `json:"impact"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

type Service struct {
	repo           eventsRepo
	goals          goalGetter
	metricsManager *metrics.Manager
	now            func() time.Time
	newID          func() string
}

func NewService(repo eventsRepo, goals goalGetter, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		goals:          goals,
		metricsManager: metricsManager,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (s *Service) Report(ctx context.Context, params ReportParams) (_ *LifeEvent, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "lifeevents.report")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !params.Kind.Valid() {
		return nil, resolution.NewValidationError("event_type", fmt.Sprintf("unknown event type: %s", params.Kind))
	}
	if !params.Impact.Valid() {
		return nil, resolution.NewValidationError("impact", fmt.Sprintf("unknown impact level: %s", params.Impact))
	}
	if _, err := s.goals.GetGoal(ctx, params.GoalID); err != nil {
		return nil, err
	}

	event := &LifeEvent{
		ID:          s.newID(),
		GoalID:      params.GoalID,
		Kind:        params.Kind,
		Impact:      params.Impact,
		Description: params.Description,
		StartDate:   params.StartDate,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Add(ctx, event); err != nil {
		return nil, err
	}

	s.metricsManager.CounterLifeEvents.Inc()
	return event, nil
}

func (s *Service) ListForGoal(ctx context.Context, goalID string) ([]*LifeEvent, error) {
	if _, err := s.goals.GetGoal(ctx, goalID); err != nil {
		return nil, err
	}
	return s.repo.ListForGoal(ctx, goalID)
}

// ListActiveForGoal returns only the events already in effect, the same
// subset LifeSignals feeds into the confidence score.
func (s *Service) ListActiveForGoal(ctx context.Context, goalID string) ([]*LifeEvent, error) {
	events, err := s.ListForGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var active []*LifeEvent
	for _, event := range events {
		if event.StartDate != nil && event.StartDate.After(now) {
			continue
		}
		active = append(active, event)
	}
	return active, nil
}

// LifeSignals feeds the confidence strategy. Future dated events carry no
// signal until their start date arrives.
func (s *Service) LifeSignals(ctx context.Context, goalID string) ([]aggregate.LifeSignal, error) {
	events, err := s.repo.ListForGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var signals []aggregate.LifeSignal
	for _, event := range events {
		if event.StartDate != nil && event.StartDate.After(now) {
			continue
		}
		signals = append(signals, aggregate.LifeSignal{
			Type:   string(event.Kind),
			Impact: string(event.Impact),
		})
	}

	s.metricsManager.GaugeLifeSignal.Set(float64(len(signals)))
	return signals, nil
}
