package events

import (
	"context"
	"fmt"

	"github.com/2beens/reprush/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=events_test

type eventsRepo interface {
	Add(ctx context.Context, event Event) (*Event, error)
	List(ctx context.Context, params ListParams) ([]*Event, error)
	Count(ctx context.Context, params EventParams) (int, error)
}

type Service struct {
	repo eventsRepo
}

func NewService(repo eventsRepo) *Service {
	return &Service{
		repo: repo,
	}
}

// Record stores a lifecycle event. Failures are logged only, a session never
// fails because its history could not be written.
func (s *Service) Record(ctx context.Context, event Event) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.events.record")
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !event.Type.IsValid() {
		err = fmt.Errorf("invalid event type: %s", event.Type)
		log.Errorf("record session event: %s", err)
		return
	}

	if _, err = s.repo.Add(ctx, event); err != nil {
		log.Errorf("record %s event for session [%s]: %s", event.Type, event.SessionID, err)
	}
}

func (s *Service) List(ctx context.Context, params ListParams) (_ []*Event, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.events.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	events, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, -1, fmt.Errorf("list events: %w", err)
	}

	total, err = s.repo.Count(ctx, params.EventParams)
	if err != nil {
		return nil, -1, fmt.Errorf("count events: %w", err)
	}

	return events, total, nil
}
