package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/reprush/internal/db"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Achievement ids match the rows seeded in the achievement table.
const (
	FirstWorkout = 1
)

type Achievement struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// Repo works on whatever querier it is given, so unlocking can be part of
// the workout finalize transaction.
type Repo struct {
	db db.Querier
}

func NewRepo(q db.Querier) *Repo {
	return &Repo{
		db: q,
	}
}

func (r *Repo) HasAchievement(ctx context.Context, userID string, achievementID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.has")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("achievement.id", achievementID))

	var exists bool
	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM user_achievement WHERE user_id = $1 AND achievement_id = $2
		);`,
		userID, achievementID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query row: %w", err)
	}
	return exists, nil
}

// Unlock grants the achievement; it returns false if the user already had it.
func (r *Repo) Unlock(ctx context.Context, userID string, achievementID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.unlock")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("achievement.id", achievementID))

	tag, err := r.db.Exec(
		ctx,
		`INSERT INTO user_achievement (user_id, achievement_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement_id) DO NOTHING;`,
		userID, achievementID,
	)
	if err != nil {
		return false, fmt.Errorf("insert user achievement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repo) List(ctx context.Context, userID string) (_ []Achievement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT a.id, a.name, ua.unlocked_at
		 FROM user_achievement ua
		 JOIN achievement a ON a.id = ua.achievement_id
		 WHERE ua.user_id = $1
		 ORDER BY ua.unlocked_at ASC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	list := make([]Achievement, 0)
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
