package resolution

import (
	"context"
	"sort"
	"sync"
)

// storeMock is an in-memory Store used by service and handler tests. It
// copies entities on the way in and out so callers cannot mutate stored
// state behind the store's back, matching the database-backed repo.
type storeMock struct {
	mu            sync.RWMutex
	goals         map[string]*YearlyGoal
	phases        map[string]*QuarterlyPhase
	weeks         map[string]*WeeklyPlan
	workouts      map[string]*DailyWorkout
	modifications []*ModificationRecord
}

func NewMockStore() *storeMock {
	return &storeMock{
		goals:    make(map[string]*YearlyGoal),
		phases:   make(map[string]*QuarterlyPhase),
		weeks:    make(map[string]*WeeklyPlan),
		workouts: make(map[string]*DailyWorkout),
	}
}

func (s *storeMock) CreateGoal(
	_ context.Context,
	goal *YearlyGoal,
	phases []*QuarterlyPhase,
	weeks []*WeeklyPlan,
	workouts []*DailyWorkout,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals[goal.ID] = copyGoal(goal)
	for _, p := range phases {
		s.phases[p.ID] = copyPhase(p)
	}
	for _, w := range weeks {
		s.weeks[w.ID] = copyWeek(w)
	}
	for _, dw := range workouts {
		s.workouts[dw.ID] = copyWorkout(dw)
	}
	return nil
}

func (s *storeMock) GetGoal(_ context.Context, id string) (*YearlyGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, ErrGoalNotFound
	}
	return copyGoal(g), nil
}

func (s *storeMock) GetPhase(_ context.Context, id string) (*QuarterlyPhase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.phases[id]
	if !ok {
		return nil, ErrPhaseNotFound
	}
	return copyPhase(p), nil
}

func (s *storeMock) GetWeek(_ context.Context, id string) (*WeeklyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weeks[id]
	if !ok {
		return nil, ErrWeekNotFound
	}
	return copyWeek(w), nil
}

func (s *storeMock) GetWorkout(_ context.Context, id string) (*DailyWorkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	return copyWorkout(w), nil
}

func (s *storeMock) ListGoals(_ context.Context) ([]*YearlyGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var goals []*YearlyGoal
	for _, g := range s.goals {
		goals = append(goals, copyGoal(g))
	}
	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.Before(goals[j].CreatedAt)
	})
	return goals, nil
}

func (s *storeMock) PhasesForGoal(_ context.Context, goalID string) ([]*QuarterlyPhase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var phases []*QuarterlyPhase
	for _, p := range s.phases {
		if p.GoalID == goalID {
			phases = append(phases, copyPhase(p))
		}
	}
	sort.Slice(phases, func(i, j int) bool {
		return phases[i].WeekStart < phases[j].WeekStart
	})
	return phases, nil
}

func (s *storeMock) WeeksForPhase(_ context.Context, phaseID string) ([]*WeeklyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var weeks []*WeeklyPlan
	for _, w := range s.weeks {
		if w.PhaseID == phaseID {
			weeks = append(weeks, copyWeek(w))
		}
	}
	sortWeeks(weeks)
	return weeks, nil
}

func (s *storeMock) WeeksForGoal(_ context.Context, goalID string) ([]*WeeklyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var weeks []*WeeklyPlan
	for _, w := range s.weeks {
		if w.GoalID == goalID {
			weeks = append(weeks, copyWeek(w))
		}
	}
	sortWeeks(weeks)
	return weeks, nil
}

func (s *storeMock) WorkoutsForWeek(_ context.Context, weekID string) ([]*DailyWorkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var workouts []*DailyWorkout
	for _, w := range s.workouts {
		if w.WeekID == weekID {
			workouts = append(workouts, copyWorkout(w))
		}
	}
	sort.Slice(workouts, func(i, j int) bool {
		return workouts[i].Date.Before(workouts[j].Date)
	})
	return workouts, nil
}

func (s *storeMock) SaveChain(_ context.Context, chain Chain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chain.Goal != nil {
		if _, ok := s.goals[chain.Goal.ID]; !ok {
			return ErrGoalNotFound
		}
		s.goals[chain.Goal.ID] = copyGoal(chain.Goal)
	}
	for _, p := range chain.Phases {
		if _, ok := s.phases[p.ID]; !ok {
			return ErrPhaseNotFound
		}
		s.phases[p.ID] = copyPhase(p)
	}
	for _, w := range chain.Weeks {
		if _, ok := s.weeks[w.ID]; !ok {
			return ErrWeekNotFound
		}
		s.weeks[w.ID] = copyWeek(w)
	}
	for _, dw := range chain.Workouts {
		if _, ok := s.workouts[dw.ID]; !ok {
			return ErrWorkoutNotFound
		}
		s.workouts[dw.ID] = copyWorkout(dw)
	}
	for _, w := range chain.NewWeeks {
		s.weeks[w.ID] = copyWeek(w)
	}
	for _, dw := range chain.NewWorkouts {
		s.workouts[dw.ID] = copyWorkout(dw)
	}
	for _, m := range chain.Modifications {
		mc := *m
		s.modifications = append(s.modifications, &mc)
	}
	return nil
}

func (s *storeMock) ModificationsFor(_ context.Context, level ModificationLevel, targetID string) ([]*ModificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*ModificationRecord
	for _, m := range s.modifications {
		if m.Level == level && m.TargetID == targetID {
			mc := *m
			records = append(records, &mc)
		}
	}
	return records, nil
}

func sortWeeks(weeks []*WeeklyPlan) {
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekNumber < weeks[j].WeekNumber
	})
}

func copyGoal(g *YearlyGoal) *YearlyGoal {
	gc := *g
	if g.ConfidenceScore != nil {
		score := *g.ConfidenceScore
		gc.ConfidenceScore = &score
	}
	return &gc
}

func copyPhase(p *QuarterlyPhase) *QuarterlyPhase {
	pc := *p
	pc.FocusAreas = append([]string(nil), p.FocusAreas...)
	pc.Milestones = append([]Milestone(nil), p.Milestones...)
	pc.RiskFactors = append([]string(nil), p.RiskFactors...)
	pc.ProtectiveStrategies = append([]string(nil), p.ProtectiveStrategies...)
	return &pc
}

func copyWeek(w *WeeklyPlan) *WeeklyPlan {
	wc := *w
	return &wc
}

func copyWorkout(w *DailyWorkout) *DailyWorkout {
	wc := *w
	wc.Planned.Exercises = append([]string(nil), w.Planned.Exercises...)
	if w.Completed != nil {
		out := *w.Completed
		wc.Completed = &out
	}
	if w.Skipped != nil {
		out := *w.Skipped
		wc.Skipped = &out
	}
	return &wc
}
