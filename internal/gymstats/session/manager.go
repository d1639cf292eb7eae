package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/reprush/internal/clock"
	"github.com/2beens/reprush/internal/gymstats/events"
	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/gymstats/workouts"
	"github.com/2beens/reprush/internal/telemetry/metrics"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=manager_mocks_test.go -package=session_test

var (
	ErrSessionExists   = errors.New("user already has an active session")
	ErrNoActiveSession = errors.New("no active session")
)

type snapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]Snapshot, error)
}

type workoutCompleter interface {
	Complete(ctx context.Context, result workouts.Result) (workouts.Committed, error)
}

type eventRecorder interface {
	Record(ctx context.Context, event events.Event)
}

type exerciseLookup interface {
	Get(ctx context.Context, id int) (exercises.Exercise, error)
}

type StartParams struct {
	Mode        workouts.Mode `json:"mode"`
	GoalMinutes int           `json:"goalMinutes,omitempty"`
}

// Manager owns the active sessions, at most one per user.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	clock          clock.Clock
	store          snapshotStore
	completer      workoutCompleter
	events         eventRecorder
	catalog        exerciseLookup
	metricsManager *metrics.Manager
	newID          func() string
}

func NewManager(
	clk clock.Clock,
	store snapshotStore,
	completer workoutCompleter,
	events eventRecorder,
	catalog exerciseLookup,
	metricsManager *metrics.Manager,
) *Manager {
	return &Manager{
		sessions:       map[string]*Session{},
		clock:          clk,
		store:          store,
		completer:      completer,
		events:         events,
		catalog:        catalog,
		metricsManager: metricsManager,
		newID:          uuid.NewString,
	}
}

func (m *Manager) Start(ctx context.Context, userID string, params StartParams) (_ View, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.manager.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("mode", string(params.Mode)))

	goalSeconds, err := GoalSeconds(params.Mode, params.GoalMinutes)
	if err != nil {
		return View{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[userID]; ok {
		return View{}, ErrSessionExists
	}

	id := m.newID()
	now := m.clock.Now()
	var timer *Timer
	if params.Mode != workouts.ModeQuickLog {
		timer = NewTimer(m.clock, goalSeconds, m.timerHooks(userID, id))
		if err := timer.Start(); err != nil {
			return View{}, err
		}
	}
	sess := newSession(id, userID, params.Mode, goalSeconds, now, timer)

	if err := m.store.Save(ctx, sess.snapshot()); err != nil {
		if timer != nil {
			_ = timer.Discard()
		}
		return View{}, fmt.Errorf("save snapshot: %w", err)
	}

	m.sessions[userID] = sess
	m.record(ctx, events.NewSessionEvent(events.EventTypeSessionStarted, userID, id, now).WithMode(string(params.Mode)))
	if m.metricsManager != nil {
		m.metricsManager.GaugeActiveSessions.Inc()
	}

	log.Debugf("session [%s] started for [%s], mode %s", id, userID, params.Mode)
	return sess.view(), nil
}

func (m *Manager) Get(userID string) (View, error) {
	sess, err := m.active(userID)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// SetEntry logs inputs for an exercise, adding it to the session if needed.
func (m *Manager) SetEntry(ctx context.Context, userID string, exerciseID int, in exercises.Inputs) (_ exercises.LogEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.manager.setentry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sess, err := m.active(userID)
	if err != nil {
		return exercises.LogEntry{}, err
	}

	ex, err := m.catalog.Get(ctx, exerciseID)
	if err != nil {
		return exercises.LogEntry{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status != StatusActive {
		return exercises.LogEntry{}, ErrSessionNotActive
	}

	entry := sess.setEntry(ex, in)
	m.persist(ctx, sess)
	return entry, nil
}

func (m *Manager) RemoveExercise(ctx context.Context, userID string, exerciseID int) error {
	sess, err := m.active(userID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status != StatusActive {
		return ErrSessionNotActive
	}

	if err := sess.removeExercise(exerciseID); err != nil {
		return err
	}
	m.persist(ctx, sess)
	return nil
}

func (m *Manager) ToggleCompleted(ctx context.Context, userID string, exerciseID int) (bool, error) {
	sess, err := m.active(userID)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status != StatusActive {
		return false, ErrSessionNotActive
	}

	completed, err := sess.toggleCompleted(exerciseID)
	if err != nil {
		return false, err
	}
	m.persist(ctx, sess)
	return completed, nil
}

func (m *Manager) Pause(ctx context.Context, userID string) (View, error) {
	return m.transition(ctx, userID, events.EventTypeSessionPaused, (*Timer).Pause)
}

func (m *Manager) Resume(ctx context.Context, userID string) (View, error) {
	return m.transition(ctx, userID, events.EventTypeSessionResumed, (*Timer).Resume)
}

func (m *Manager) transition(
	ctx context.Context,
	userID string,
	eventType events.EventType,
	apply func(*Timer) error,
) (View, error) {
	sess, err := m.active(userID)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status != StatusActive {
		return View{}, ErrSessionNotActive
	}
	if sess.timer == nil {
		return View{}, fmt.Errorf("%w: quick log has no timer", ErrInvalidTransition)
	}

	if err := apply(sess.timer); err != nil {
		return View{}, err
	}

	m.persist(ctx, sess)
	m.record(ctx, events.NewSessionEvent(eventType, userID, sess.id, m.clock.Now()).WithElapsed(sess.timer.ElapsedSeconds()))
	return sess.view(), nil
}

// Finish finalizes and stores the workout. On ErrEmptySession or a store
// failure the session stays active and can be finished again.
func (m *Manager) Finish(ctx context.Context, userID string) (_ workouts.Committed, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.manager.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sess, err := m.active(userID)
	if err != nil {
		return workouts.Committed{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status != StatusActive {
		return workouts.Committed{}, ErrSessionNotActive
	}

	now := m.clock.Now()
	result, err := workouts.Finalize(sess.summary(now), sess.logEntries())
	if err != nil {
		return workouts.Committed{}, err
	}

	committed, err := m.completer.Complete(ctx, result)
	if err != nil {
		m.countSession(sess.mode, "store_error")
		return workouts.Committed{}, err
	}

	if sess.timer != nil {
		if _, err := sess.timer.Finish(); err != nil {
			log.Errorf("finish timer of session [%s]: %s", sess.id, err)
		}
	}
	sess.status = StatusCompleted
	m.release(ctx, sess)

	m.record(ctx, events.NewSessionEvent(events.EventTypeSessionFinished, userID, sess.id, now).
		WithMode(string(sess.mode)).
		WithElapsed(result.ElapsedSeconds).
		WithXP(result.FinalXP))
	m.countSession(sess.mode, "finished")

	log.Debugf("session [%s] finished: %d XP, level %d -> %d", sess.id, result.FinalXP, committed.OldLevel, committed.NewLevel)
	return committed, nil
}

// Discard abandons the active session without storing anything. Discarding
// when there is no active session is a no-op.
func (m *Manager) Discard(ctx context.Context, userID string) error {
	sess, err := m.active(userID)
	if errors.Is(err, ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status != StatusActive {
		return nil
	}

	if sess.timer != nil {
		if err := sess.timer.Discard(); err != nil {
			return err
		}
	}
	sess.status = StatusDiscarded
	m.release(ctx, sess)

	m.record(ctx, events.NewSessionEvent(events.EventTypeSessionDiscarded, userID, sess.id, m.clock.Now()))
	m.countSession(sess.mode, "discarded")
	return nil
}

// Restore rebuilds the sessions saved before the last shutdown.
func (m *Manager) Restore(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.manager.restore")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	snapshots, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restored := 0
	for _, snap := range snapshots {
		if _, ok := m.sessions[snap.UserID]; ok {
			continue
		}

		var timer *Timer
		if snap.Timer != nil {
			timer, err = RestoreTimer(m.clock, *snap.Timer, m.timerHooks(snap.UserID, snap.ID))
			if err != nil {
				log.Errorf("restore session [%s]: %s", snap.ID, err)
				if err := m.store.Delete(ctx, snap.UserID); err != nil {
					log.Errorf("delete unrestorable snapshot [%s]: %s", snap.ID, err)
				}
				continue
			}
		}

		m.sessions[snap.UserID] = sessionFromSnapshot(snap, timer)
		restored++
	}

	if m.metricsManager != nil {
		m.metricsManager.GaugeActiveSessions.Add(float64(restored))
	}
	log.Infof("restored %d active sessions", restored)
	return restored, nil
}

// Close stops every timer. Snapshots are kept so Restore can pick the
// sessions up on the next start.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		if sess.timer != nil {
			sess.timer.Stop()
		}
		sess.mu.Unlock()
	}
	log.Debugf("session manager closed, %d timers stopped", len(sessions))
}

func (m *Manager) active(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return sess, nil
}

// release removes a terminated session; sess.mu must be held.
func (m *Manager) release(ctx context.Context, sess *Session) {
	m.mu.Lock()
	if m.sessions[sess.userID] == sess {
		delete(m.sessions, sess.userID)
	}
	m.mu.Unlock()

	if err := m.store.Delete(ctx, sess.userID); err != nil {
		log.Errorf("delete snapshot of session [%s]: %s", sess.id, err)
	}
	if m.metricsManager != nil {
		m.metricsManager.GaugeActiveSessions.Dec()
	}
}

// persist saves the session snapshot; sess.mu must be held. A failed save
// only costs restart safety, so it is logged and the operation goes on.
func (m *Manager) persist(ctx context.Context, sess *Session) {
	if err := m.store.Save(ctx, sess.snapshot()); err != nil {
		log.Errorf("save snapshot of session [%s]: %s", sess.id, err)
	}
}

func (m *Manager) record(ctx context.Context, event events.Event) {
	if m.events != nil {
		m.events.Record(ctx, event)
	}
}

func (m *Manager) countSession(mode workouts.Mode, outcome string) {
	if m.metricsManager == nil {
		return
	}
	m.metricsManager.CounterSessions.With(prometheus.Labels{
		"mode":    string(mode),
		"outcome": outcome,
	}).Inc()
}

func (m *Manager) timerHooks(userID, sessionID string) TimerHooks {
	return TimerHooks{
		OnTick: func(elapsedSeconds int) {
			log.Tracef("session [%s] elapsed %ds", sessionID, elapsedSeconds)
		},
		OnTimeUp: func(elapsedSeconds int) {
			log.Debugf("session [%s] reached its goal time", sessionID)
			m.record(
				context.Background(),
				events.NewSessionEvent(events.EventTypeSessionTimeUp, userID, sessionID, m.clock.Now()).
					WithElapsed(elapsedSeconds),
			)
		},
	}
}
