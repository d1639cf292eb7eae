package stats

import (
	"context"
	"sort"
	"time"

	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// ExerciseHistory is what a user logged for one exercise, aggregated per day
// (UTC), oldest day first.
type ExerciseHistory struct {
	ExerciseID int        `json:"exerciseId"`
	Days       []DayStats `json:"days"`
}

type DayStats struct {
	Day         time.Time `json:"day"`
	Entries     int       `json:"entries"`
	Sets        int       `json:"sets"`
	AvgReps     float64   `json:"avgReps"`
	AvgWeightKg float64   `json:"avgWeightKg"`
	DurationMin float64   `json:"durationMin"`
	DistanceKm  float64   `json:"distanceKm"`
	XP          int       `json:"xp"`
}

// Entry is one stored log entry of the exercise, with the time its workout finished.
type Entry struct {
	WorkoutID  int64
	FinishedAt time.Time
	Inputs     exercises.Inputs
	XPEarned   int
}

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=stats_test

type entriesRepo interface {
	ListExerciseEntries(ctx context.Context, userID string, exerciseID int) ([]Entry, error)
}

type Exercises struct {
	repo entriesRepo
}

func NewExercisesStats(repo entriesRepo) *Exercises {
	return &Exercises{
		repo: repo,
	}
}

func (a *Exercises) ExerciseHistory(
	ctx context.Context,
	userID string,
	exerciseID int,
) (_ *ExerciseHistory, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.exercises.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	entries, err := a.repo.ListExerciseEntries(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	day2entries := make(map[time.Time][]Entry)
	for _, e := range entries {
		day := e.FinishedAt.UTC().Truncate(24 * time.Hour)
		day2entries[day] = append(day2entries[day], e)
	}

	history := &ExerciseHistory{
		ExerciseID: exerciseID,
		Days:       make([]DayStats, 0, len(day2entries)),
	}
	for day, dayEntries := range day2entries {
		history.Days = append(history.Days, dayStats(day, dayEntries))
	}
	sort.Slice(history.Days, func(i, j int) bool {
		return history.Days[i].Day.Before(history.Days[j].Day)
	})

	return history, nil
}

func dayStats(day time.Time, entries []Entry) DayStats {
	stats := DayStats{
		Day:     day,
		Entries: len(entries),
	}

	var reps, weight float64
	for _, e := range entries {
		in := e.Inputs.Sanitized()
		stats.Sets += in.Sets
		stats.DurationMin += in.DurationMin
		stats.DistanceKm += in.DistanceKm
		stats.XP += e.XPEarned
		reps += float64(in.Reps)
		weight += in.WeightKg
	}
	stats.AvgReps = reps / float64(len(entries))
	stats.AvgWeightKg = weight / float64(len(entries))

	return stats
}
