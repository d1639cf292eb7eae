package stats

import (
	"context"
	"fmt"

	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) ListExerciseEntries(ctx context.Context, userID string, exerciseID int) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.exerciseEntries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	rows, err := r.db.Query(
		ctx,
		`SELECT w.id, w.finished_at, we.sets, we.reps, we.weight_kg, we.duration_min, we.distance_km, we.xp_earned
		 FROM workout_exercise we
		 JOIN workout w ON w.id = we.workout_id
		 WHERE w.user_id = $1 AND we.exercise_id = $2
		 ORDER BY w.finished_at ASC, we.id ASC;`,
		userID, exerciseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.WorkoutID, &e.FinishedAt,
			&e.Inputs.Sets, &e.Inputs.Reps, &e.Inputs.WeightKg, &e.Inputs.DurationMin, &e.Inputs.DistanceKm,
			&e.XPEarned,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
