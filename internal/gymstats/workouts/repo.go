package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/reprush/internal/gymstats/achievements"
	"github.com/2beens/reprush/internal/gymstats/progression"
	"github.com/2beens/reprush/internal/telemetry/tracing"
	"github.com/2beens/reprush/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type ListParams struct {
	UserID string
	Page   int
	Size   int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Save stores the workout, its exercise rows, the new progression and any
// unlocked achievements in one transaction: either all of it is written or
// nothing is. A result with a LocalID that was stored before returns
// ErrAlreadySynced together with the stored workout id.
func (r *Repo) Save(ctx context.Context, result Result) (_ Committed, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", result.UserID))
	span.SetAttributes(attribute.Int("xp.final", result.FinalXP))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Committed{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(
		ctx,
		`INSERT INTO profile (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`,
		result.UserID,
	); err != nil {
		return Committed{}, fmt.Errorf("ensure profile: %w", err)
	}

	var oldTotal int
	if err = tx.QueryRow(
		ctx,
		`SELECT total_xp FROM profile WHERE user_id = $1 FOR UPDATE;`,
		result.UserID,
	).Scan(&oldTotal); err != nil {
		return Committed{}, fmt.Errorf("lock profile: %w", err)
	}
	oldState := progression.NewState(result.UserID, oldTotal)

	if result.LocalID != "" {
		var existingID int64
		err = tx.QueryRow(
			ctx,
			`SELECT id FROM workout WHERE user_id = $1 AND local_id = $2;`,
			result.UserID, result.LocalID,
		).Scan(&existingID)
		switch {
		case err == nil:
			return Committed{
				WorkoutID:   existingID,
				Result:      result,
				OldLevel:    oldState.Level,
				NewLevel:    oldState.Level,
				Progression: oldState,
			}, ErrAlreadySynced
		case !errors.Is(err, pgx.ErrNoRows):
			return Committed{}, fmt.Errorf("check local id: %w", err)
		}
	}

	newState, leveledUp := oldState.Award(result.FinalXP)

	var localID *string
	if result.LocalID != "" {
		localID = &result.LocalID
	}
	var workoutID int64
	err = tx.QueryRow(
		ctx,
		`INSERT INTO workout
			(user_id, local_id, session_mode, goal_time_seconds, duration_seconds,
			 base_xp, bonus_xp, total_xp, completed_in_time, exercise_count, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id;`,
		result.UserID, localID, string(result.Mode), result.GoalSeconds, result.ElapsedSeconds,
		result.BaseXP, result.BonusXP, result.FinalXP, result.CompletedInTime, result.ExerciseCount, result.FinishedAt,
	).Scan(&workoutID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return Committed{}, ErrAlreadySynced
		}
		return Committed{}, fmt.Errorf("insert workout: %w", err)
	}
	span.SetAttributes(attribute.Int64("workout.id", workoutID))

	for _, e := range result.Entries {
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO workout_exercise
				(workout_id, exercise_id, sets, reps, weight_kg, duration_min, distance_km, xp_earned)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
			workoutID, e.ExerciseID, e.Inputs.Sets, e.Inputs.Reps,
			e.Inputs.WeightKg, e.Inputs.DurationMin, e.Inputs.DistanceKm, e.XPEarned,
		); err != nil {
			return Committed{}, fmt.Errorf("insert workout exercise [%d]: %w", e.ExerciseID, err)
		}
	}

	if _, err = tx.Exec(
		ctx,
		`UPDATE profile
		 SET total_xp = $2, current_xp = $3, level = $4, updated_at = now()
		 WHERE user_id = $1;`,
		result.UserID, newState.TotalXP, newState.CurrentXP, newState.Level,
	); err != nil {
		return Committed{}, fmt.Errorf("update progression: %w", err)
	}

	newAchievements := make([]int, 0)
	unlocked, err := achievements.NewRepo(tx).Unlock(ctx, result.UserID, achievements.FirstWorkout)
	if err != nil {
		return Committed{}, fmt.Errorf("unlock first workout achievement: %w", err)
	}
	if unlocked {
		newAchievements = append(newAchievements, achievements.FirstWorkout)
	}

	return Committed{
		WorkoutID:       workoutID,
		Result:          result,
		OldLevel:        oldState.Level,
		NewLevel:        newState.Level,
		LeveledUp:       leveledUp,
		Progression:     newState,
		NewAchievements: newAchievements,
	}, nil
}

// List returns a page of the user's workouts, newest first. Pages start at 1.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))

	if params.Page < 1 {
		return nil, -1, errors.New("page must be greater than 0")
	}
	if params.Size < 1 {
		return nil, -1, errors.New("size must be greater than 0")
	}

	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout WHERE user_id = $1;`,
		params.UserID,
	).Scan(&total); err != nil {
		return nil, -1, fmt.Errorf("count: %w", err)
	}
	span.SetAttributes(attribute.Int("count_all", total))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, COALESCE(local_id, ''), session_mode, goal_time_seconds, duration_seconds,
		        base_xp, bonus_xp, total_xp, completed_in_time, exercise_count, finished_at
		 FROM workout
		 WHERE user_id = $1
		 ORDER BY finished_at DESC, id DESC
		 LIMIT $2 OFFSET $3;`,
		params.UserID, params.Size, (params.Page-1)*params.Size,
	)
	if err != nil {
		return nil, -1, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	list := make([]Workout, 0, params.Size)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(
			&w.ID, &w.LocalID, &w.Mode, &w.GoalSeconds, &w.DurationSeconds,
			&w.BaseXP, &w.BonusXP, &w.TotalXP, &w.CompletedInTime, &w.ExerciseCount, &w.FinishedAt,
		); err != nil {
			return nil, -1, fmt.Errorf("rows scan: %w", err)
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, -1, err
	}

	return list, total, nil
}

// GetProgression returns the user's progression; users without a profile
// row are at zero XP.
func (r *Repo) GetProgression(ctx context.Context, userID string) (_ progression.State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.progression")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var totalXP int
	err = r.db.QueryRow(
		ctx,
		`SELECT total_xp FROM profile WHERE user_id = $1;`,
		userID,
	).Scan(&totalXP)
	if errors.Is(err, pgx.ErrNoRows) {
		return progression.NewState(userID, 0), nil
	}
	if err != nil {
		return progression.State{}, fmt.Errorf("query row: %w", err)
	}

	return progression.NewState(userID, totalXP), nil
}
