package test

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/reprush/internal/gymstats/events"
	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/gymstats/session"
	"github.com/2beens/reprush/internal/gymstats/stats"
	"github.com/2beens/reprush/internal/gymstats/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestExercisesCatalog() {
	ctx := context.Background()

	var list []exercises.Exercise
	s.doJSON(ctx, http.MethodGet, "/exercises", "", nil, http.StatusOK, &list)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), "Bench Press", list[0].Name)
	assert.Equal(s.T(), "Running", list[1].Name)
	assert.Equal(s.T(), "Yoga Flow", list[2].Name)

	s.doJSON(ctx, http.MethodGet, "/exercises?category=cardio", "", nil, http.StatusOK, &list)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), exercises.CategoryCardio, list[0].Category)

	var ex exercises.Exercise
	s.doJSON(ctx, http.MethodGet, "/exercises/1", "", nil, http.StatusOK, &ex)
	assert.Equal(s.T(), exercises.DifficultyIntermediate, ex.Difficulty)

	status, _ := s.do(ctx, http.MethodGet, "/exercises/999", "", nil)
	assert.Equal(s.T(), http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestChallengeSession() {
	ctx := context.Background()
	userID := "it-challenge-user"

	status, _ := s.do(ctx, http.MethodGet, "/sessions/current", "", nil)
	require.Equal(s.T(), http.StatusUnauthorized, status)

	var view session.View
	s.doJSON(ctx, http.MethodPost, "/sessions", userID,
		session.StartParams{Mode: workouts.ModeChallenge, GoalMinutes: 15},
		http.StatusCreated, &view)
	assert.Equal(s.T(), 900, view.GoalSeconds)
	assert.Equal(s.T(), session.TimerActive, view.TimerState)

	status, _ = s.do(ctx, http.MethodPost, "/sessions", userID, session.StartParams{Mode: workouts.ModeFree})
	require.Equal(s.T(), http.StatusConflict, status)

	var entry exercises.LogEntry
	s.doJSON(ctx, http.MethodPut, "/sessions/current/entries/1", userID,
		exercises.Inputs{Sets: 3, Reps: 10, WeightKg: 50},
		http.StatusOK, &entry)
	assert.Equal(s.T(), 225, entry.XPEarned)

	s.doJSON(ctx, http.MethodPut, "/sessions/current/entries/2", userID,
		exercises.Inputs{DurationMin: 20, DistanceKm: 3},
		http.StatusOK, &entry)
	assert.Equal(s.T(), 70, entry.XPEarned)

	status, _ = s.do(ctx, http.MethodPut, "/sessions/current/entries/999", userID, exercises.Inputs{Sets: 1})
	assert.Equal(s.T(), http.StatusBadRequest, status)

	s.doJSON(ctx, http.MethodGet, "/sessions/current", userID, nil, http.StatusOK, &view)
	assert.Equal(s.T(), 295, view.BaseXP)
	assert.Len(s.T(), view.Exercises, 2)

	s.doJSON(ctx, http.MethodPost, "/sessions/current/pause", userID, nil, http.StatusOK, &view)
	assert.Equal(s.T(), session.TimerPaused, view.TimerState)
	status, _ = s.do(ctx, http.MethodPost, "/sessions/current/pause", userID, nil)
	assert.Equal(s.T(), http.StatusConflict, status)
	s.doJSON(ctx, http.MethodPost, "/sessions/current/resume", userID, nil, http.StatusOK, &view)
	assert.Equal(s.T(), session.TimerActive, view.TimerState)

	var committed workouts.Committed
	s.doJSON(ctx, http.MethodPost, "/sessions/current/finish", userID, nil, http.StatusCreated, &committed)
	assert.True(s.T(), committed.Result.CompletedInTime)
	assert.Equal(s.T(), 295, committed.Result.BaseXP)
	assert.Equal(s.T(), 354, committed.Result.FinalXP)
	assert.Equal(s.T(), 1, committed.OldLevel)
	assert.Equal(s.T(), 4, committed.NewLevel)
	assert.True(s.T(), committed.LeveledUp)
	assert.Equal(s.T(), []int{1}, committed.NewAchievements)

	status, _ = s.do(ctx, http.MethodGet, "/sessions/current", userID, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)

	var profile workouts.Profile
	s.doJSON(ctx, http.MethodGet, "/profile", userID, nil, http.StatusOK, &profile)
	assert.Equal(s.T(), 354, profile.TotalXP)
	assert.Equal(s.T(), 54, profile.CurrentXP)
	assert.Equal(s.T(), 4, profile.Level)
	require.Len(s.T(), profile.Achievements, 1)
	assert.Equal(s.T(), "First Workout", profile.Achievements[0].Name)

	var history workouts.ListResponse
	s.doJSON(ctx, http.MethodGet, "/workouts/page/1/size/10", userID, nil, http.StatusOK, &history)
	assert.Equal(s.T(), 1, history.Total)
	require.Len(s.T(), history.Workouts, 1)
	assert.Equal(s.T(), workouts.ModeChallenge, history.Workouts[0].Mode)
	assert.Equal(s.T(), 354, history.Workouts[0].TotalXP)
	assert.Equal(s.T(), 2, history.Workouts[0].ExerciseCount)

	var history1 stats.ExerciseHistory
	s.doJSON(ctx, http.MethodGet, "/workouts/exercises/1/history", userID, nil, http.StatusOK, &history1)
	require.Len(s.T(), history1.Days, 1)
	assert.Equal(s.T(), 3, history1.Days[0].Sets)
	assert.InDelta(s.T(), 50.0, history1.Days[0].AvgWeightKg, 0.001)
	assert.Equal(s.T(), 225, history1.Days[0].XP)

	var eventsResp events.ListResponse
	s.doJSON(ctx, http.MethodGet, "/sessions/events/page/1/size/10", userID, nil, http.StatusOK, &eventsResp)
	assert.Equal(s.T(), 4, eventsResp.Total)
	require.Len(s.T(), eventsResp.Events, 4)
	assert.Equal(s.T(), events.EventTypeSessionFinished, eventsResp.Events[0].Type)
	assert.Equal(s.T(), events.EventTypeSessionStarted, eventsResp.Events[3].Type)

	s.doJSON(ctx, http.MethodGet, "/sessions/events/page/1/size/10?type=session_paused", userID, nil, http.StatusOK, &eventsResp)
	assert.Equal(s.T(), 1, eventsResp.Total)
}

func (s *IntegrationTestSuite) TestQuickLogSession() {
	ctx := context.Background()
	userID := "it-quick-user"

	var view session.View
	s.doJSON(ctx, http.MethodPost, "/sessions", userID,
		session.StartParams{Mode: workouts.ModeQuickLog},
		http.StatusCreated, &view)
	assert.Empty(s.T(), view.TimerState)

	status, _ := s.do(ctx, http.MethodPost, "/sessions/current/pause", userID, nil)
	assert.Equal(s.T(), http.StatusConflict, status)

	status, _ = s.do(ctx, http.MethodPost, "/sessions/current/finish", userID, nil)
	assert.Equal(s.T(), http.StatusUnprocessableEntity, status)

	// an exercise logged with nothing done is still worth no xp
	var entry exercises.LogEntry
	s.doJSON(ctx, http.MethodPut, "/sessions/current/entries/3", userID, exercises.Inputs{}, http.StatusOK, &entry)
	assert.Equal(s.T(), 0, entry.XPEarned)
	status, _ = s.do(ctx, http.MethodPost, "/sessions/current/finish", userID, nil)
	assert.Equal(s.T(), http.StatusUnprocessableEntity, status)

	var toggled session.ToggleResponse
	s.doJSON(ctx, http.MethodPost, "/sessions/current/entries/3/toggle", userID, nil, http.StatusOK, &toggled)
	assert.True(s.T(), toggled.Completed)

	status, _ = s.do(ctx, http.MethodPost, "/sessions/current/discard", userID, nil)
	assert.Equal(s.T(), http.StatusNoContent, status)
	status, _ = s.do(ctx, http.MethodPost, "/sessions/current/discard", userID, nil)
	assert.Equal(s.T(), http.StatusNoContent, status)

	status, _ = s.do(ctx, http.MethodGet, "/sessions/current", userID, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)

	var profile workouts.Profile
	s.doJSON(ctx, http.MethodGet, "/profile", userID, nil, http.StatusOK, &profile)
	assert.Equal(s.T(), 0, profile.TotalXP)
	assert.Equal(s.T(), 1, profile.Level)
	assert.Empty(s.T(), profile.Achievements)
}

func (s *IntegrationTestSuite) TestSyncOfflineWorkout() {
	ctx := context.Background()
	userID := "it-offline-user"

	finishedAt := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	req := workouts.SyncRequest{
		LocalID: "offline-local-1",
		Kind:    "workout",
		Payload: workouts.OfflineWorkout{
			Summary: workouts.Summary{
				SessionID:      "offline-session-1",
				Mode:           workouts.ModeFree,
				ElapsedSeconds: 600,
				StartedAt:      finishedAt.Add(-10 * time.Minute),
				FinishedAt:     finishedAt,
			},
			Entries: []exercises.LogEntry{
				{ExerciseID: 3, Inputs: exercises.Inputs{DurationMin: 10}, XPEarned: 9999},
			},
		},
		CreatedAt: finishedAt,
	}

	var committed workouts.Committed
	s.doJSON(ctx, http.MethodPost, "/workouts/sync", userID, req, http.StatusCreated, &committed)
	assert.Equal(s.T(), 30, committed.Result.FinalXP)
	assert.Equal(s.T(), 1, committed.NewLevel)
	assert.False(s.T(), committed.LeveledUp)

	var again workouts.Committed
	s.doJSON(ctx, http.MethodPost, "/workouts/sync", userID, req, http.StatusConflict, &again)
	assert.Equal(s.T(), committed.WorkoutID, again.WorkoutID)

	var profile workouts.Profile
	s.doJSON(ctx, http.MethodGet, "/profile", userID, nil, http.StatusOK, &profile)
	assert.Equal(s.T(), 30, profile.TotalXP)

	req.LocalID = "offline-local-2"
	req.Payload.Entries = []exercises.LogEntry{{ExerciseID: 999, Inputs: exercises.Inputs{Sets: 1, Reps: 1}}}
	status, _ := s.do(ctx, http.MethodPost, "/workouts/sync", userID, req)
	assert.Equal(s.T(), http.StatusBadRequest, status)

	var history workouts.ListResponse
	s.doJSON(ctx, http.MethodGet, "/workouts/page/1/size/10", userID, nil, http.StatusOK, &history)
	assert.Equal(s.T(), 1, history.Total)
	assert.Equal(s.T(), "offline-local-1", history.Workouts[0].LocalID)
}
