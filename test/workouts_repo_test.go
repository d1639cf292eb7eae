package test

import (
	"context"
	"time"

	"github.com/2beens/reprush/internal/db"
	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/gymstats/workouts"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) newPgxPool(ctx context.Context) *pgxpool.Pool {
	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: s.pgPort,
		DBName: dbName,
	})
	require.NoError(s.T(), err)
	s.T().Cleanup(pool.Close)
	return pool
}

func savedResult(userID string, entries ...exercises.LogEntry) workouts.Result {
	finishedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	total := 0
	for _, e := range entries {
		total += e.XPEarned
	}
	return workouts.Result{
		Summary: workouts.Summary{
			UserID:         userID,
			SessionID:      "session-" + userID,
			Mode:           workouts.ModeFree,
			ElapsedSeconds: 600,
			StartedAt:      finishedAt.Add(-10 * time.Minute),
			FinishedAt:     finishedAt,
		},
		Entries:         entries,
		ExerciseCount:   len(entries),
		BaseXP:          total,
		BonusMultiplier: 1,
		FinalXP:         total,
	}
}

func (s *IntegrationTestSuite) countRows(query string, args ...any) int {
	var n int
	require.NoError(s.T(), s.DB.QueryRow(query, args...).Scan(&n))
	return n
}

func (s *IntegrationTestSuite) TestWorkoutSave_FailedExerciseRowWritesNothing() {
	ctx := context.Background()
	repo := workouts.NewRepo(s.newPgxPool(ctx))
	userID := "save-atomic-entries"

	result := savedResult(userID,
		exercises.LogEntry{ExerciseID: 2, Name: "Running", Category: exercises.CategoryCardio, XPEarned: 110},
		// no such exercise: the foreign key fails after the workout row is inserted
		exercises.LogEntry{ExerciseID: 9999, Name: "Ghost", Category: exercises.CategoryOther, XPEarned: 20},
	)

	_, err := repo.Save(ctx, result)
	require.Error(s.T(), err)

	assert.Zero(s.T(), s.countRows(`SELECT count(*) FROM workout WHERE user_id = $1`, userID))
	assert.Zero(s.T(), s.countRows(`SELECT count(*) FROM profile WHERE user_id = $1`, userID))
	assert.Zero(s.T(), s.countRows(`SELECT count(*) FROM user_achievement WHERE user_id = $1`, userID))
}

func (s *IntegrationTestSuite) TestWorkoutSave_FailedProgressionUpdateWritesNothing() {
	ctx := context.Background()
	repo := workouts.NewRepo(s.newPgxPool(ctx))
	userID := "save-atomic-progression"

	// caps only this user's total, so the progression update is the failing statement
	_, err := s.DB.Exec(`ALTER TABLE profile ADD CONSTRAINT ck_profile_xp_cap
		CHECK (user_id <> 'save-atomic-progression' OR total_xp <= 50)`)
	require.NoError(s.T(), err)
	defer func() {
		_, err := s.DB.Exec(`ALTER TABLE profile DROP CONSTRAINT ck_profile_xp_cap`)
		require.NoError(s.T(), err)
	}()

	result := savedResult(userID,
		exercises.LogEntry{ExerciseID: 3, Name: "Yoga Flow", Category: exercises.CategoryFlexibility, XPEarned: 60},
	)

	_, err = repo.Save(ctx, result)
	require.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "update progression")

	assert.Zero(s.T(), s.countRows(`SELECT count(*) FROM workout WHERE user_id = $1`, userID))
	assert.Zero(s.T(), s.countRows(
		`SELECT count(*) FROM workout_exercise we JOIN workout w ON w.id = we.workout_id WHERE w.user_id = $1`, userID,
	))
	assert.Zero(s.T(), s.countRows(`SELECT count(*) FROM user_achievement WHERE user_id = $1`, userID))
	assert.Zero(s.T(), s.countRows(`SELECT count(*) FROM profile WHERE user_id = $1`, userID))

	// within the cap the same workout commits in full
	result.Entries[0].XPEarned = 40
	result.BaseXP, result.FinalXP = 40, 40
	committed, err := repo.Save(ctx, result)
	require.NoError(s.T(), err)
	assert.Positive(s.T(), committed.WorkoutID)
	assert.Equal(s.T(), 1, s.countRows(`SELECT count(*) FROM workout WHERE user_id = $1`, userID))
	assert.Equal(s.T(), 40, s.countRows(`SELECT total_xp FROM profile WHERE user_id = $1`, userID))
	assert.Equal(s.T(), []int{1}, committed.NewAchievements)
}
