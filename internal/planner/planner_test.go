package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_phaseTemplates(t *testing.T) {
	for _, totalWeeks := range []int{52, 26, 10, 7} {
		phases, err := NewStatic().PhaseTemplates(context.Background(), "run a marathon", totalWeeks)
		require.NoError(t, err)
		require.Len(t, phases, 4, "total weeks %d", totalWeeks)

		// contiguous, non-overlapping, covering 1..totalWeeks
		assert.Equal(t, 1, phases[0].WeekStart)
		assert.Equal(t, totalWeeks, phases[3].WeekEnd)
		for i := 1; i < len(phases); i++ {
			assert.Equal(t, phases[i-1].WeekEnd+1, phases[i].WeekStart)
		}
		for _, p := range phases {
			weekCount := p.WeekEnd - p.WeekStart + 1
			assert.Equal(t, weekCount*3, p.TargetWorkouts)
		}
	}
}

func TestStatic_quarterSplit52(t *testing.T) {
	phases, err := NewStatic().PhaseTemplates(context.Background(), "run a marathon", 52)
	require.NoError(t, err)

	assert.Equal(t, "Foundation", phases[0].Name)
	assert.Equal(t, 1, phases[0].WeekStart)
	assert.Equal(t, 13, phases[0].WeekEnd)
	assert.Equal(t, "Progression", phases[1].Name)
	assert.Equal(t, 14, phases[1].WeekStart)
	assert.Equal(t, 26, phases[1].WeekEnd)
	assert.Equal(t, "Mastery", phases[2].Name)
	assert.Equal(t, 27, phases[2].WeekStart)
	assert.Equal(t, 39, phases[2].WeekEnd)
	assert.Equal(t, "Acceleration", phases[3].Name)
	assert.Equal(t, 40, phases[3].WeekStart)
	assert.Equal(t, 52, phases[3].WeekEnd)
}

func TestStatic_weekTemplate(t *testing.T) {
	static := NewStatic()
	phases, err := static.PhaseTemplates(context.Background(), "run a marathon", 52)
	require.NoError(t, err)

	week, err := static.WeekTemplate(context.Background(), phases[0], 1)
	require.NoError(t, err)

	assert.Equal(t, 3, week.TargetWorkouts)
	assert.Equal(t, 90, week.TargetDurationMinutes)
	require.Len(t, week.Workouts, 3)
	assert.Equal(t, []int{0, 2, 4}, []int{
		week.Workouts[0].DayOffset, week.Workouts[1].DayOffset, week.Workouts[2].DayOffset,
	})
	for _, w := range week.Workouts {
		assert.Equal(t, 30, w.DurationMinutes)
		assert.Equal(t, "moderate", w.Intensity)
	}
}

type failingPlanner struct{}

func (failingPlanner) PhaseTemplates(context.Context, string, int) ([]PhaseTemplate, error) {
	return nil, errors.New("planner unreachable")
}

func (failingPlanner) WeekTemplate(context.Context, PhaseTemplate, int) (WeekTemplate, error) {
	return WeekTemplate{}, errors.New("planner unreachable")
}

func TestFallback_failsOpen(t *testing.T) {
	fallback := NewFallback(failingPlanner{})

	phases, err := fallback.PhaseTemplates(context.Background(), "run a marathon", 52)
	require.NoError(t, err)
	require.Len(t, phases, 4)

	week, err := fallback.WeekTemplate(context.Background(), phases[0], 1)
	require.NoError(t, err)
	assert.Len(t, week.Workouts, 3)
}

func TestFallback_primaryWins(t *testing.T) {
	fallback := NewFallback(NewStatic())

	phases, err := fallback.PhaseTemplates(context.Background(), "run a marathon", 8)
	require.NoError(t, err)
	assert.Len(t, phases, 4)
	assert.Equal(t, 8, phases[3].WeekEnd)
}

func TestHTTP_phaseTemplatesCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.Equal(t, "/planner/phases", r.URL.Path)

		var req struct {
			ResolutionText string `json:"resolution_text"`
			TotalWeeks     int    `json:"total_weeks"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 52, req.TotalWeeks)

		phases, err := NewStatic().PhaseTemplates(r.Context(), req.ResolutionText, req.TotalWeeks)
		require.NoError(t, err)
		require.NoError(t, json.NewEncoder(w).Encode(phases))
	}))
	defer server.Close()

	p := NewHTTP(server.URL, 2*time.Second)

	phases, err := p.PhaseTemplates(context.Background(), "run a marathon", 52)
	require.NoError(t, err)
	require.Len(t, phases, 4)

	// second call served from cache
	phases, err = p.PhaseTemplates(context.Background(), "run a marathon", 52)
	require.NoError(t, err)
	require.Len(t, phases, 4)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTP_weekTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/planner/week", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(WeekTemplate{
			Focus:                 "endurance",
			TargetWorkouts:        4,
			TargetDurationMinutes: 120,
			Workouts: []WorkoutTemplate{
				{DayOffset: 0, Type: "run", DurationMinutes: 40, Intensity: "hard"},
			},
		}))
	}))
	defer server.Close()

	p := NewHTTP(server.URL, 2*time.Second)

	week, err := p.WeekTemplate(context.Background(), PhaseTemplate{Quarter: 2}, 15)
	require.NoError(t, err)
	assert.Equal(t, "endurance", week.Focus)
	assert.Equal(t, 4, week.TargetWorkouts)
	require.Len(t, week.Workouts, 1)
	assert.Equal(t, "run", week.Workouts[0].Type)
}

func TestHTTP_serverError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewHTTP(server.URL, 2*time.Second)

	_, err := p.PhaseTemplates(context.Background(), "run a marathon", 52)
	assert.Error(t, err)
}
