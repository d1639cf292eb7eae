package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/reprush/internal/gymstats/achievements"
	"github.com/2beens/reprush/internal/gymstats/progression"
	"github.com/2beens/reprush/internal/telemetry/metrics"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Save(ctx context.Context, result Result) (Committed, error)
	List(ctx context.Context, params ListParams) ([]Workout, int, error)
	GetProgression(ctx context.Context, userID string) (progression.State, error)
}

type achievementsRepo interface {
	List(ctx context.Context, userID string) ([]achievements.Achievement, error)
}

type Profile struct {
	progression.State
	Achievements []achievements.Achievement `json:"achievements"`
}

type Service struct {
	repo             workoutsRepo
	achievementsRepo achievementsRepo
	metricsManager   *metrics.Manager
}

func NewService(repo workoutsRepo, achievementsRepo achievementsRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:             repo,
		achievementsRepo: achievementsRepo,
		metricsManager:   metricsManager,
	}
}

// Complete stores a finalized workout. Store failures come back as
// *StoreWriteError; there is no retry here.
func (s *Service) Complete(ctx context.Context, result Result) (_ Committed, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	committed, err := s.repo.Save(ctx, result)
	if errors.Is(err, ErrAlreadySynced) {
		return committed, err
	}
	if err != nil {
		return Committed{}, &StoreWriteError{Err: err}
	}

	log.Debugf("workout [%d] stored for [%s]: +%d XP, level %d -> %d",
		committed.WorkoutID, result.UserID, result.FinalXP, committed.OldLevel, committed.NewLevel)

	if s.metricsManager != nil {
		s.metricsManager.CounterXPAwarded.Add(float64(result.FinalXP))
		s.metricsManager.HistogramWorkoutXP.Observe(float64(result.FinalXP))
		s.metricsManager.HistogramWorkoutDuration.
			With(prometheus.Labels{"mode": string(result.Mode)}).
			Observe(float64(result.ElapsedSeconds))
		if committed.LeveledUp {
			s.metricsManager.CounterLevelUps.Inc()
		}
	}

	return committed, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	list, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, -1, fmt.Errorf("list workouts: %w", err)
	}
	return list, total, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (_ Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	state, err := s.repo.GetProgression(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("get progression: %w", err)
	}

	unlocked, err := s.achievementsRepo.List(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("list achievements: %w", err)
	}

	return Profile{
		State:        state,
		Achievements: unlocked,
	}, nil
}
