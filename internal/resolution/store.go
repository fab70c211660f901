package resolution

import (
	"context"
)

// Chain carries every entity touched by one mutation so the store can
// persist the whole aggregate path atomically. Nil / empty slots are
// skipped. A mutation either lands completely or not at all.
type Chain struct {
	Goal        *YearlyGoal
	Phases      []*QuarterlyPhase
	Weeks       []*WeeklyPlan
	Workouts    []*DailyWorkout
	NewWeeks    []*WeeklyPlan
	NewWorkouts []*DailyWorkout

	// append-only audit entries
	Modifications []*ModificationRecord
}

func (c Chain) Empty() bool {
	return c.Goal == nil &&
		len(c.Phases) == 0 && len(c.Weeks) == 0 && len(c.Workouts) == 0 &&
		len(c.NewWeeks) == 0 && len(c.NewWorkouts) == 0 &&
		len(c.Modifications) == 0
}

// Store is the persistence boundary of the engine. Collection getters
// return entities in their natural order: phases by week_start, weeks by
// week_number, workouts by date.
type Store interface {
	CreateGoal(
		ctx context.Context,
		goal *YearlyGoal,
		phases []*QuarterlyPhase,
		weeks []*WeeklyPlan,
		workouts []*DailyWorkout,
	) error

	GetGoal(ctx context.Context, id string) (*YearlyGoal, error)
	GetPhase(ctx context.Context, id string) (*QuarterlyPhase, error)
	GetWeek(ctx context.Context, id string) (*WeeklyPlan, error)
	GetWorkout(ctx context.Context, id string) (*DailyWorkout, error)

	ListGoals(ctx context.Context) ([]*YearlyGoal, error)
	PhasesForGoal(ctx context.Context, goalID string) ([]*QuarterlyPhase, error)
	WeeksForPhase(ctx context.Context, phaseID string) ([]*WeeklyPlan, error)
	WeeksForGoal(ctx context.Context, goalID string) ([]*WeeklyPlan, error)
	WorkoutsForWeek(ctx context.Context, weekID string) ([]*DailyWorkout, error)

	SaveChain(ctx context.Context, chain Chain) error

	ModificationsFor(ctx context.Context, level ModificationLevel, targetID string) ([]*ModificationRecord, error)
}
