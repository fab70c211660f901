package resolution

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventType string

const (
	EventGoalCreated     EventType = "goal_created"
	EventWorkoutResolved EventType = "workout_resolved"
	EventOutcomeUndone   EventType = "outcome_undone"
	EventWeekClosed      EventType = "week_closed"
	EventPhaseClosed     EventType = "phase_closed"
	EventGoalModified    EventType = "goal_modified"
	EventClockAdvanced   EventType = "clock_advanced"
)

type Event struct {
	Type     EventType
	GoalID   string
	EntityID string
	At       time.Time
}

// EventSink receives engine events after the owning mutation has been
// persisted. Delivery is best effort, sinks must not fail the mutation.
type EventSink interface {
	Publish(ctx context.Context, event Event)
}

type LogSink struct{}

func (LogSink) Publish(_ context.Context, event Event) {
	log.WithFields(log.Fields{
		"goal":   event.GoalID,
		"entity": event.EntityID,
	}).Debugf("event: %s", event.Type)
}

type MultiSink struct {
	sinks []EventSink
}

func NewMultiSink(sinks ...EventSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Publish(ctx context.Context, event Event) {
	for _, s := range m.sinks {
		s.Publish(ctx, event)
	}
}
