package lifeevents

import (
	"context"
	"fmt"

	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, event *LifeEvent) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.lifeevents.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx, `
			INSERT INTO life_event (id, goal_id, event_type, impact, description, start_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.GoalID, event.Kind, event.Impact,
		event.Description, event.StartDate, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert life event: %w", err)
	}
	return nil
}

func (r *Repo) ListForGoal(ctx context.Context, goalID string) (_ []*LifeEvent, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.lifeevents.listForGoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
			SELECT id, goal_id, event_type, impact, description, start_date, created_at
			FROM life_event
			WHERE goal_id = $1
			ORDER BY created_at`,
		goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("list life events: %w", err)
	}
	defer rows.Close()

	var events []*LifeEvent
	for rows.Next() {
		var event LifeEvent
		if err := rows.Scan(
			&event.ID, &event.GoalID, &event.Kind, &event.Impact,
			&event.Description, &event.StartDate, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan life event row: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("life event rows: %w", err)
	}
	return events, nil
}
