package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/resolvefit/backend/internal/lifeevents"
	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/aggregate"
	"github.com/resolvefit/backend/internal/resolution/clock"
	"github.com/resolvefit/backend/internal/resolution/dashboard"
	"github.com/resolvefit/backend/internal/resolution/goals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path string,
	body any,
) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, respBytes
}

// TestResolutionFlow drives one goal through its whole lifecycle over HTTP:
// creation, dashboard, workout outcomes, a modification, a life event,
// a clock advance across the week boundary, and abandonment.
func (s *IntegrationTestSuite) TestResolutionFlow() {
	ctx := context.Background()
	t := s.T()

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC) // a Monday

	// create the goal
	status, body := s.doRequest(ctx, http.MethodPost, "/goal", goals.CreateParams{
		ResolutionText: "exercise 3 times a week, every week",
		StartDate:      &start,
	})
	require.Equal(t, http.StatusCreated, status, "body: %s", body)

	var created goals.CreateResult
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotNil(t, created.Goal)
	assert.Equal(t, resolution.GoalStatusActive, created.Goal.Status)
	assert.Equal(t, 52, created.Goal.TotalWeeks)
	assert.Equal(t, 1, created.Goal.CurrentWeek)
	assert.True(t, start.Equal(created.Goal.StartDate))
	require.Len(t, created.Phases, 4)
	assert.Equal(t, resolution.PhaseStatusActive, created.Phases[0].Status)
	require.NotNil(t, created.FirstWeek)
	require.Len(t, created.Workouts, 3)

	goalID := created.Goal.ID

	// dashboard shows the fresh hierarchy
	status, body = s.doRequest(ctx, http.MethodGet, "/dashboard/goal/"+goalID, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var view dashboard.View
	require.NoError(t, json.Unmarshal(body, &view))
	require.NotNil(t, view.CurrentWeek)
	assert.Equal(t, 1, view.CurrentWeek.Week.WeekNumber)
	require.Len(t, view.CurrentWeek.Workouts, 3)
	for _, wv := range view.CurrentWeek.Workouts {
		assert.Equal(t, resolution.WorkoutStatusScheduled, wv.Status)
	}

	// self-reported context lands before the check-in
	status, body = s.doRequest(ctx, http.MethodPost,
		"/workout/"+created.Workouts[0].ID+"/context",
		resolution.ContextSnapshot{
			SleepQuality: "ok",
			StressLevel:  4,
			Soreness:     2,
		},
	)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var contextWorkout resolution.DailyWorkout
	require.NoError(t, json.Unmarshal(body, &contextWorkout))
	assert.Equal(t, 4, contextWorkout.Context.StressLevel)
	assert.Equal(t, 2, contextWorkout.Context.Soreness)

	// complete the first workout
	rpe := 7
	status, body = s.doRequest(ctx, http.MethodPost,
		"/workout/"+created.Workouts[0].ID+"/complete",
		map[string]any{
			"actual_duration_minutes": 35,
			"perceived_intensity":     "moderate",
			"how_it_felt":             "good",
			"rpe":                     rpe,
		},
	)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var chain aggregate.UpdatedChain
	require.NoError(t, json.Unmarshal(body, &chain))
	require.NotNil(t, chain.Workout)
	assert.Equal(t, resolution.WorkoutStatusCompleted, chain.Workout.Status())
	require.NotNil(t, chain.Week)
	assert.Equal(t, 1, chain.Week.WorkoutsCompleted)
	assert.Equal(t, 35, chain.Week.TotalMinutesCompleted)
	require.NotNil(t, chain.Goal)
	assert.Greater(t, chain.Goal.ProgressPercentage, 0.0)

	// skip the second, then undo the skip
	status, body = s.doRequest(ctx, http.MethodPost,
		"/workout/"+created.Workouts[1].ID+"/skip",
		map[string]any{"reason": "travel"},
	)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	require.NoError(t, json.Unmarshal(body, &chain))
	assert.Equal(t, resolution.WorkoutStatusSkipped, chain.Workout.Status())
	assert.Equal(t, 1, chain.Week.WorkoutsCompleted)

	status, body = s.doRequest(ctx, http.MethodPost,
		"/workout/"+created.Workouts[1].ID+"/undo", nil,
	)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	require.NoError(t, json.Unmarshal(body, &chain))
	assert.Equal(t, resolution.WorkoutStatusScheduled, chain.Workout.Status())

	// resolving an already resolved workout conflicts
	status, body = s.doRequest(ctx, http.MethodPost,
		"/workout/"+created.Workouts[0].ID+"/complete",
		map[string]any{"actual_duration_minutes": 20, "perceived_intensity": "light"},
	)
	require.Equal(t, http.StatusConflict, status, "body: %s", body)

	// shorten the third workout, then read the audit trail back
	newDuration := 20
	status, body = s.doRequest(ctx, http.MethodPost,
		"/modify/workout/"+created.Workouts[2].ID,
		resolution.Modification{
			Actor:              "user",
			Type:               resolution.ModTypeDurationChange,
			Reason:             "short on time",
			NewDurationMinutes: &newDuration,
		},
	)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	require.NoError(t, json.Unmarshal(body, &chain))
	require.NotNil(t, chain.Workout)
	assert.Equal(t, newDuration, chain.Workout.Planned.DurationMinutes)
	assert.True(t, chain.Workout.WasModified)

	status, body = s.doRequest(ctx, http.MethodGet,
		"/modify/workout/"+created.Workouts[2].ID+"/history", nil,
	)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var records []*resolution.ModificationRecord
	require.NoError(t, json.Unmarshal(body, &records))
	require.Len(t, records, 1)
	assert.Equal(t, resolution.ModTypeDurationChange, records[0].Type)
	assert.Equal(t, "short on time", records[0].Reason)

	// report a life event and list it back
	status, body = s.doRequest(ctx, http.MethodPost,
		"/goal/"+goalID+"/life-event",
		lifeevents.ReportParams{
			Kind:        lifeevents.KindJobChange,
			Impact:      lifeevents.ImpactMedium,
			Description: "new job, longer commute",
		},
	)
	require.Equal(t, http.StatusCreated, status, "body: %s", body)

	status, body = s.doRequest(ctx, http.MethodGet, "/goal/"+goalID+"/life-events", nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var events []*lifeevents.LifeEvent
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 1)
	assert.Equal(t, lifeevents.KindJobChange, events[0].Kind)

	// advance the clock past week one
	status, body = s.doRequest(ctx, http.MethodPost, "/clock/advance", map[string]any{
		"goal_id": goalID,
		"to_date": "2025-01-13",
	})
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var advanced clock.Result
	require.NoError(t, json.Unmarshal(body, &advanced))
	assert.Equal(t, 2, advanced.Goal.CurrentWeek)
	require.Len(t, advanced.ClosedWeeks, 1)
	assert.Equal(t, resolution.WeekStatusCompleted, advanced.ClosedWeeks[0].Status)
	require.Len(t, advanced.NewWeeks, 1)
	assert.Equal(t, 2, advanced.NewWeeks[0].WeekNumber)
	require.NotNil(t, advanced.Goal.ConfidenceScore)

	// the dashboard cache must have been invalidated along the way
	status, body = s.doRequest(ctx, http.MethodGet, "/dashboard/goal/"+goalID, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	require.NoError(t, json.Unmarshal(body, &view))
	require.NotNil(t, view.CurrentWeek)
	assert.Equal(t, 2, view.CurrentWeek.Week.WeekNumber)

	// abandon and verify the goal is frozen
	status, body = s.doRequest(ctx, http.MethodPost, "/goal/"+goalID+"/abandon", nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var goal resolution.YearlyGoal
	require.NoError(t, json.Unmarshal(body, &goal))
	assert.Equal(t, resolution.GoalStatusAbandoned, goal.Status)

	// abandonment freezes the clock, advancing is a no-op
	status, body = s.doRequest(ctx, http.MethodPost, "/clock/advance", map[string]any{
		"goal_id": goalID,
		"to_date": "2025-01-20",
	})
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	require.NoError(t, json.Unmarshal(body, &advanced))
	assert.Empty(t, advanced.ClosedWeeks)
	assert.Equal(t, 2, advanced.Goal.CurrentWeek)

	// goal listing
	status, body = s.doRequest(ctx, http.MethodGet, "/goal/all", nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var allGoals []*resolution.YearlyGoal
	require.NoError(t, json.Unmarshal(body, &allGoals))
	found := false
	for _, g := range allGoals {
		if g.ID == goalID {
			found = true
			break
		}
	}
	assert.True(t, found, "created goal not in listing")
}

func (s *IntegrationTestSuite) TestUnknownTargets() {
	ctx := context.Background()
	t := s.T()

	status, _ := s.doRequest(ctx, http.MethodGet, "/dashboard/goal/no-such-goal", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.doRequest(ctx, http.MethodPost, "/workout/no-such-workout/complete",
		map[string]any{"actual_duration_minutes": 30, "perceived_intensity": "moderate"},
	)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/nope-%d", time.Now().Unix()), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
