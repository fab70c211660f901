package resolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// Repo persists the resolution hierarchy in postgres. SaveChain and
// CreateGoal run in a single transaction so a mutation never lands
// partially.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repo) CreateGoal(
	ctx context.Context,
	goal *YearlyGoal,
	phases []*QuarterlyPhase,
	weeks []*WeeklyPlan,
	workouts []*DailyWorkout,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.createGoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("goal.id", goal.ID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(
		ctx,
		`INSERT INTO yearly_goal
			(id, resolution_text, start_date, target_date, current_week, total_weeks,
			 progress_percentage, confidence_score, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		goal.ID, goal.ResolutionText, goal.StartDate, goal.TargetDate,
		goal.CurrentWeek, goal.TotalWeeks, goal.ProgressPercentage,
		goal.ConfidenceScore, goal.Status, goal.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	for _, p := range phases {
		if err = insertPhase(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, w := range weeks {
		if err = insertWeek(ctx, tx, w); err != nil {
			return err
		}
	}
	for _, dw := range workouts {
		if err = insertWorkout(ctx, tx, dw); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) GetGoal(ctx context.Context, id string) (_ *YearlyGoal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.getGoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("goal.id", id))

	g := &YearlyGoal{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, resolution_text, start_date, target_date, current_week, total_weeks,
				progress_percentage, confidence_score, status, created_at
			FROM yearly_goal WHERE id = $1;`,
		id,
	).Scan(
		&g.ID, &g.ResolutionText, &g.StartDate, &g.TargetDate, &g.CurrentWeek,
		&g.TotalWeeks, &g.ProgressPercentage, &g.ConfidenceScore, &g.Status, &g.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *Repo) GetPhase(ctx context.Context, id string) (_ *QuarterlyPhase, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.getPhase")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, selectPhase+` WHERE id = $1;`, id)
	if err != nil {
		return nil, fmt.Errorf("get phase: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		// a stream error must not look like a missing row
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get phase: %w", err)
		}
		return nil, ErrPhaseNotFound
	}
	return scanPhase(rows)
}

func (r *Repo) GetWeek(ctx context.Context, id string) (_ *WeeklyPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.getWeek")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, selectWeek+` WHERE id = $1;`, id)
	if err != nil {
		return nil, fmt.Errorf("get week: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get week: %w", err)
		}
		return nil, ErrWeekNotFound
	}
	return scanWeek(rows)
}

func (r *Repo) GetWorkout(ctx context.Context, id string) (_ *DailyWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.getWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, selectWorkout+` WHERE id = $1;`, id)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get workout: %w", err)
		}
		return nil, ErrWorkoutNotFound
	}
	return scanWorkout(rows)
}

func (r *Repo) ListGoals(ctx context.Context) (_ []*YearlyGoal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.listGoals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, resolution_text, start_date, target_date, current_week, total_weeks,
				progress_percentage, confidence_score, status, created_at
			FROM yearly_goal ORDER BY created_at;`,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*YearlyGoal
	for rows.Next() {
		g := &YearlyGoal{}
		if err := rows.Scan(
			&g.ID, &g.ResolutionText, &g.StartDate, &g.TargetDate, &g.CurrentWeek,
			&g.TotalWeeks, &g.ProgressPercentage, &g.ConfidenceScore, &g.Status, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *Repo) PhasesForGoal(ctx context.Context, goalID string) (_ []*QuarterlyPhase, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.phasesForGoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, selectPhase+` WHERE goal_id = $1 ORDER BY week_start;`, goalID)
	if err != nil {
		return nil, fmt.Errorf("phases for goal: %w", err)
	}
	defer rows.Close()

	var phases []*QuarterlyPhase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

func (r *Repo) WeeksForPhase(ctx context.Context, phaseID string) (_ []*WeeklyPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.weeksForPhase")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return r.weeksWhere(ctx, ` WHERE phase_id = $1 ORDER BY week_number;`, phaseID)
}

func (r *Repo) WeeksForGoal(ctx context.Context, goalID string) (_ []*WeeklyPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.weeksForGoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	return r.weeksWhere(ctx, ` WHERE goal_id = $1 ORDER BY week_number;`, goalID)
}

func (r *Repo) weeksWhere(ctx context.Context, where string, arg any) ([]*WeeklyPlan, error) {
	rows, err := r.db.Query(ctx, selectWeek+where, arg)
	if err != nil {
		return nil, fmt.Errorf("query weeks: %w", err)
	}
	defer rows.Close()

	var weeks []*WeeklyPlan
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func (r *Repo) WorkoutsForWeek(ctx context.Context, weekID string) (_ []*DailyWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.workoutsForWeek")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, selectWorkout+` WHERE week_id = $1 ORDER BY date;`, weekID)
	if err != nil {
		return nil, fmt.Errorf("workouts for week: %w", err)
	}
	defer rows.Close()

	var workouts []*DailyWorkout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

func (r *Repo) SaveChain(ctx context.Context, chain Chain) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.saveChain")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if chain.Empty() {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if chain.Goal != nil {
		if err = updateGoal(ctx, tx, chain.Goal); err != nil {
			return err
		}
	}
	for _, p := range chain.Phases {
		if err = updatePhase(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, w := range chain.Weeks {
		if err = updateWeek(ctx, tx, w); err != nil {
			return err
		}
	}
	for _, dw := range chain.Workouts {
		if err = updateWorkout(ctx, tx, dw); err != nil {
			return err
		}
	}
	for _, w := range chain.NewWeeks {
		if err = insertWeek(ctx, tx, w); err != nil {
			return err
		}
	}
	for _, dw := range chain.NewWorkouts {
		if err = insertWorkout(ctx, tx, dw); err != nil {
			return err
		}
	}
	for _, m := range chain.Modifications {
		if err = insertModification(ctx, tx, m); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) ModificationsFor(ctx context.Context, level ModificationLevel, targetID string) (_ []*ModificationRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.resolution.modificationsFor")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, level, target_id, goal_id, actor, mod_type, reason,
				adjusted_value, intensity_shift, override_flag, created_at
			FROM modification WHERE level = $1 AND target_id = $2 ORDER BY created_at;`,
		level, targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("modifications for %s [%s]: %w", level, targetID, err)
	}
	defer rows.Close()

	var records []*ModificationRecord
	for rows.Next() {
		m := &ModificationRecord{}
		if err := rows.Scan(
			&m.ID, &m.Level, &m.TargetID, &m.GoalID, &m.Actor, &m.Type, &m.Reason,
			&m.AdjustedValue, &m.IntensityShift, &m.Override, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		records = append(records, m)
	}
	return records, rows.Err()
}

const selectPhase = `SELECT id, goal_id, quarter, name, description, week_start, week_end,
		target_workouts, focus_areas, milestones, risk_factors, protective_strategies,
		status, workouts_completed, adherence_rate, completion_percentage
	FROM quarterly_phase`

const selectWeek = `SELECT id, phase_id, goal_id, week_number, quarter_week, start_date, end_date,
		target_workouts, target_duration_minutes, focus, estimated_difficulty, risk_level, status,
		workouts_planned, workouts_completed, total_minutes_completed,
		adherence_rate, completion_percentage, remaining_workouts
	FROM weekly_plan`

const selectWorkout = `SELECT id, week_id, phase_id, goal_id, date, planned, context,
		was_modified, completed, skipped
	FROM daily_workout`

func scanPhase(rows pgx.Rows) (*QuarterlyPhase, error) {
	p := &QuarterlyPhase{}
	var focusAreas, milestones, riskFactors, strategies []byte
	if err := rows.Scan(
		&p.ID, &p.GoalID, &p.Quarter, &p.Name, &p.Description, &p.WeekStart, &p.WeekEnd,
		&p.TargetWorkouts, &focusAreas, &milestones, &riskFactors, &strategies,
		&p.Status, &p.WorkoutsCompleted, &p.AdherenceRate, &p.CompletionPercentage,
	); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	if err := unmarshalInto(focusAreas, &p.FocusAreas); err != nil {
		return nil, fmt.Errorf("unmarshal focus areas: %w", err)
	}
	if err := unmarshalInto(milestones, &p.Milestones); err != nil {
		return nil, fmt.Errorf("unmarshal milestones: %w", err)
	}
	if err := unmarshalInto(riskFactors, &p.RiskFactors); err != nil {
		return nil, fmt.Errorf("unmarshal risk factors: %w", err)
	}
	if err := unmarshalInto(strategies, &p.ProtectiveStrategies); err != nil {
		return nil, fmt.Errorf("unmarshal protective strategies: %w", err)
	}
	return p, nil
}

func unmarshalInto(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func scanWeek(rows pgx.Rows) (*WeeklyPlan, error) {
	w := &WeeklyPlan{}
	if err := rows.Scan(
		&w.ID, &w.PhaseID, &w.GoalID, &w.WeekNumber, &w.QuarterWeek, &w.StartDate, &w.EndDate,
		&w.TargetWorkouts, &w.TargetDurationMinutes, &w.Focus, &w.EstimatedDifficulty,
		&w.RiskLevel, &w.Status, &w.WorkoutsPlanned, &w.WorkoutsCompleted,
		&w.TotalMinutesCompleted, &w.AdherenceRate, &w.CompletionPercentage, &w.RemainingWorkouts,
	); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	return w, nil
}

func scanWorkout(rows pgx.Rows) (*DailyWorkout, error) {
	w := &DailyWorkout{}
	var planned, workoutCtx, completed, skipped []byte
	if err := rows.Scan(
		&w.ID, &w.WeekID, &w.PhaseID, &w.GoalID, &w.Date,
		&planned, &workoutCtx, &w.WasModified, &completed, &skipped,
	); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	if err := json.Unmarshal(planned, &w.Planned); err != nil {
		return nil, fmt.Errorf("unmarshal planned workout: %w", err)
	}
	if len(workoutCtx) > 0 {
		if err := json.Unmarshal(workoutCtx, &w.Context); err != nil {
			return nil, fmt.Errorf("unmarshal workout context: %w", err)
		}
	}
	if len(completed) > 0 {
		w.Completed = &CompletedOutcome{}
		if err := json.Unmarshal(completed, w.Completed); err != nil {
			return nil, fmt.Errorf("unmarshal completed outcome: %w", err)
		}
	}
	if len(skipped) > 0 {
		w.Skipped = &SkippedOutcome{}
		if err := json.Unmarshal(skipped, w.Skipped); err != nil {
			return nil, fmt.Errorf("unmarshal skipped outcome: %w", err)
		}
	}
	return w, nil
}

func updateGoal(ctx context.Context, q querier, g *YearlyGoal) error {
	tag, err := q.Exec(
		ctx,
		`UPDATE yearly_goal SET resolution_text = $1, start_date = $2, target_date = $3,
			current_week = $4, total_weeks = $5, progress_percentage = $6,
			confidence_score = $7, status = $8
			WHERE id = $9;`,
		g.ResolutionText, g.StartDate, g.TargetDate, g.CurrentWeek, g.TotalWeeks,
		g.ProgressPercentage, g.ConfidenceScore, g.Status, g.ID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func insertPhase(ctx context.Context, q querier, p *QuarterlyPhase) error {
	focusAreas, milestones, riskFactors, strategies, err := marshalPhaseFields(p)
	if err != nil {
		return err
	}
	if _, err := q.Exec(
		ctx,
		`INSERT INTO quarterly_phase
			(id, goal_id, quarter, name, description, week_start, week_end, target_workouts,
			 focus_areas, milestones, risk_factors, protective_strategies, status,
			 workouts_completed, adherence_rate, completion_percentage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`,
		p.ID, p.GoalID, p.Quarter, p.Name, p.Description, p.WeekStart, p.WeekEnd,
		p.TargetWorkouts, focusAreas, milestones, riskFactors, strategies, p.Status,
		p.WorkoutsCompleted, p.AdherenceRate, p.CompletionPercentage,
	); err != nil {
		return fmt.Errorf("insert phase: %w", err)
	}
	return nil
}

func updatePhase(ctx context.Context, q querier, p *QuarterlyPhase) error {
	focusAreas, milestones, riskFactors, strategies, err := marshalPhaseFields(p)
	if err != nil {
		return err
	}
	tag, err := q.Exec(
		ctx,
		`UPDATE quarterly_phase SET quarter = $1, name = $2, description = $3,
			week_start = $4, week_end = $5, target_workouts = $6, focus_areas = $7,
			milestones = $8, risk_factors = $9, protective_strategies = $10, status = $11,
			workouts_completed = $12, adherence_rate = $13, completion_percentage = $14
			WHERE id = $15;`,
		p.Quarter, p.Name, p.Description, p.WeekStart, p.WeekEnd, p.TargetWorkouts,
		focusAreas, milestones, riskFactors, strategies, p.Status,
		p.WorkoutsCompleted, p.AdherenceRate, p.CompletionPercentage, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPhaseNotFound
	}
	return nil
}

func marshalPhaseFields(p *QuarterlyPhase) (focusAreas, milestones, riskFactors, strategies []byte, err error) {
	if focusAreas, err = json.Marshal(p.FocusAreas); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal focus areas: %w", err)
	}
	if milestones, err = json.Marshal(p.Milestones); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal milestones: %w", err)
	}
	if riskFactors, err = json.Marshal(p.RiskFactors); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal risk factors: %w", err)
	}
	if strategies, err = json.Marshal(p.ProtectiveStrategies); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal protective strategies: %w", err)
	}
	return focusAreas, milestones, riskFactors, strategies, nil
}

func insertWeek(ctx context.Context, q querier, w *WeeklyPlan) error {
	if _, err := q.Exec(
		ctx,
		`INSERT INTO weekly_plan
			(id, phase_id, goal_id, week_number, quarter_week, start_date, end_date,
			 target_workouts, target_duration_minutes, focus, estimated_difficulty,
			 risk_level, status, workouts_planned, workouts_completed,
			 total_minutes_completed, adherence_rate, completion_percentage, remaining_workouts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
					$11, $12, $13, $14, $15, $16, $17, $18, $19);`,
		w.ID, w.PhaseID, w.GoalID, w.WeekNumber, w.QuarterWeek, w.StartDate, w.EndDate,
		w.TargetWorkouts, w.TargetDurationMinutes, w.Focus, w.EstimatedDifficulty,
		w.RiskLevel, w.Status, w.WorkoutsPlanned, w.WorkoutsCompleted,
		w.TotalMinutesCompleted, w.AdherenceRate, w.CompletionPercentage, w.RemainingWorkouts,
	); err != nil {
		return fmt.Errorf("insert week: %w", err)
	}
	return nil
}

func updateWeek(ctx context.Context, q querier, w *WeeklyPlan) error {
	tag, err := q.Exec(
		ctx,
		`UPDATE weekly_plan SET week_number = $1, quarter_week = $2, start_date = $3,
			end_date = $4, target_workouts = $5, target_duration_minutes = $6, focus = $7,
			estimated_difficulty = $8, risk_level = $9, status = $10, workouts_planned = $11,
			workouts_completed = $12, total_minutes_completed = $13, adherence_rate = $14,
			completion_percentage = $15, remaining_workouts = $16
			WHERE id = $17;`,
		w.WeekNumber, w.QuarterWeek, w.StartDate, w.EndDate, w.TargetWorkouts,
		w.TargetDurationMinutes, w.Focus, w.EstimatedDifficulty, w.RiskLevel, w.Status,
		w.WorkoutsPlanned, w.WorkoutsCompleted, w.TotalMinutesCompleted,
		w.AdherenceRate, w.CompletionPercentage, w.RemainingWorkouts, w.ID,
	)
	if err != nil {
		return fmt.Errorf("update week: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWeekNotFound
	}
	return nil
}

func marshalWorkoutFields(w *DailyWorkout) (planned, workoutCtx, completed, skipped []byte, err error) {
	if planned, err = json.Marshal(w.Planned); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal planned workout: %w", err)
	}
	if workoutCtx, err = json.Marshal(w.Context); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal workout context: %w", err)
	}
	if w.Completed != nil {
		if completed, err = json.Marshal(w.Completed); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal completed outcome: %w", err)
		}
	}
	if w.Skipped != nil {
		if skipped, err = json.Marshal(w.Skipped); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal skipped outcome: %w", err)
		}
	}
	return planned, workoutCtx, completed, skipped, nil
}

func insertWorkout(ctx context.Context, q querier, w *DailyWorkout) error {
	planned, workoutCtx, completed, skipped, err := marshalWorkoutFields(w)
	if err != nil {
		return err
	}
	if _, err := q.Exec(
		ctx,
		`INSERT INTO daily_workout
			(id, week_id, phase_id, goal_id, date, planned, context, was_modified, completed, skipped)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		w.ID, w.WeekID, w.PhaseID, w.GoalID, w.Date,
		planned, workoutCtx, w.WasModified, completed, skipped,
	); err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

func updateWorkout(ctx context.Context, q querier, w *DailyWorkout) error {
	planned, workoutCtx, completed, skipped, err := marshalWorkoutFields(w)
	if err != nil {
		return err
	}
	tag, err := q.Exec(
		ctx,
		`UPDATE daily_workout SET date = $1, planned = $2, context = $3,
			was_modified = $4, completed = $5, skipped = $6
			WHERE id = $7;`,
		w.Date, planned, workoutCtx, w.WasModified, completed, skipped, w.ID,
	)
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func insertModification(ctx context.Context, q querier, m *ModificationRecord) error {
	if _, err := q.Exec(
		ctx,
		`INSERT INTO modification
			(id, level, target_id, goal_id, actor, mod_type, reason,
			 adjusted_value, intensity_shift, override_flag, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		m.ID, m.Level, m.TargetID, m.GoalID, m.Actor, m.Type, m.Reason,
		m.AdjustedValue, m.IntensityShift, m.Override, m.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert modification: %w", err)
	}
	return nil
}
