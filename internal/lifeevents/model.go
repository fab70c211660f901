// Package lifeevents records user-reported life circumstances (a move, a
// new job, a health issue) that feed confidence scoring as read-only
// signals. Events never mutate the goal hierarchy themselves.
package lifeevents

import "time"

type EventKind string

const (
	KindJobChange    EventKind = "job_change"
	KindMoving       EventKind = "moving"
	KindRelationship EventKind = "relationship"
	KindHealth       EventKind = "health"
	KindFamily       EventKind = "family"
)

func (k EventKind) Valid() bool {
	switch k {
	case KindJobChange, KindMoving, KindRelationship, KindHealth, KindFamily:
		return true
	}
	return false
}

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

func (i Impact) Valid() bool {
	switch i {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return true
	}
	return false
}

type LifeEvent struct {
	ID          string     `json:"id"`
	GoalID      string     `json:"goal_id"`
	Kind        EventKind  `json:"event_type"`
	Impact      Impact     `json:"impact"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
