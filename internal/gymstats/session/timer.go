package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/reprush/internal/clock"
)

var (
	ErrInvalidTransition = errors.New("invalid timer transition")
	ErrNotRestorable     = errors.New("timer snapshot is not restorable")
)

const tickInterval = time.Second

type TimerState string

const (
	TimerIdle      TimerState = "idle"
	TimerActive    TimerState = "active"
	TimerPaused    TimerState = "paused"
	TimerFinished  TimerState = "finished"
	TimerDiscarded TimerState = "discarded"
)

func (s TimerState) terminal() bool {
	return s == TimerFinished || s == TimerDiscarded
}

// TimerHooks are called from the tick goroutine, outside the timer lock.
// They must not call Finish, Discard, Pause or Stop on the same timer.
type TimerHooks struct {
	OnTick   func(elapsedSeconds int)
	OnTimeUp func(elapsedSeconds int)
}

// TimerSnapshot holds everything needed to rebuild a timer after a restart.
type TimerSnapshot struct {
	State       TimerState    `json:"state"`
	GoalSeconds int           `json:"goalSeconds,omitempty"`
	StartedAt   time.Time     `json:"startedAt"`
	TotalPaused time.Duration `json:"totalPaused"`
	PausedAt    time.Time     `json:"pausedAt,omitzero"`
	TimeUpFired bool          `json:"timeUpFired,omitempty"`
}

// Timer measures the active time of a workout:
// elapsed = now - startedAt - totalPaused, never negative.
// While active it ticks at 1 Hz; every exit path stops the ticking goroutine
// before returning.
type Timer struct {
	mu    sync.Mutex
	clock clock.Clock
	hooks TimerHooks

	state       TimerState
	goalSeconds int
	startedAt   time.Time
	totalPaused time.Duration
	pausedAt    time.Time
	stoppedAt   time.Time
	timeUpFired bool

	ticker   *clock.Ticker
	stopTick chan struct{}
	tickDone chan struct{}
}

// NewTimer returns an idle timer. goalSeconds 0 means no deadline.
func NewTimer(clk clock.Clock, goalSeconds int, hooks TimerHooks) *Timer {
	return &Timer{
		clock:       clk,
		hooks:       hooks,
		state:       TimerIdle,
		goalSeconds: max(goalSeconds, 0),
	}
}

// RestoreTimer rebuilds an active or paused timer. An active one resumes
// ticking right away, elapsed includes the time the process was down.
func RestoreTimer(clk clock.Clock, snap TimerSnapshot, hooks TimerHooks) (*Timer, error) {
	if snap.State != TimerActive && snap.State != TimerPaused {
		return nil, fmt.Errorf("%w: state %s", ErrNotRestorable, snap.State)
	}
	if snap.StartedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing start time", ErrNotRestorable)
	}
	if snap.State == TimerPaused && snap.PausedAt.IsZero() {
		return nil, fmt.Errorf("%w: paused without pause time", ErrNotRestorable)
	}

	t := &Timer{
		clock:       clk,
		hooks:       hooks,
		state:       snap.State,
		goalSeconds: max(snap.GoalSeconds, 0),
		startedAt:   snap.StartedAt,
		totalPaused: max(snap.TotalPaused, 0),
		pausedAt:    snap.PausedAt,
		timeUpFired: snap.TimeUpFired,
	}

	if t.state == TimerActive {
		t.mu.Lock()
		t.startTicking()
		t.mu.Unlock()
	}

	return t, nil
}

func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerIdle {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, t.state)
	}

	t.state = TimerActive
	t.startedAt = t.clock.Now()
	t.totalPaused = 0
	t.startTicking()

	return nil
}

func (t *Timer) Pause() error {
	t.mu.Lock()
	if t.state != TimerActive {
		state := t.state
		t.mu.Unlock()
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, state)
	}

	t.state = TimerPaused
	t.pausedAt = t.clock.Now()
	done := t.stopTicking()
	t.mu.Unlock()

	waitTickDone(done)
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerPaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, t.state)
	}

	t.totalPaused += max(t.clock.Now().Sub(t.pausedAt), 0)
	t.pausedAt = time.Time{}
	t.state = TimerActive
	t.startTicking()

	return nil
}

// Finish freezes the timer and returns the final elapsed seconds.
func (t *Timer) Finish() (int, error) {
	return t.terminate(TimerFinished)
}

// Discard abandons the timer. Discarding twice is not an error.
func (t *Timer) Discard() error {
	t.mu.Lock()
	discarded := t.state == TimerDiscarded
	t.mu.Unlock()
	if discarded {
		return nil
	}

	_, err := t.terminate(TimerDiscarded)
	return err
}

func (t *Timer) terminate(to TimerState) (int, error) {
	t.mu.Lock()
	if t.state.terminal() {
		state := t.state
		t.mu.Unlock()
		return 0, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, to, state)
	}

	now := t.clock.Now()
	if t.state == TimerPaused {
		t.totalPaused += max(now.Sub(t.pausedAt), 0)
		t.pausedAt = time.Time{}
	}
	if t.state == TimerIdle {
		t.startedAt = now
	}
	t.stoppedAt = now
	t.state = to
	elapsed := t.elapsedAt(now)
	done := t.stopTicking()
	t.mu.Unlock()

	waitTickDone(done)
	return int(elapsed / time.Second), nil
}

// Stop ends the tick goroutine without changing the state, for shutdown.
// The timer can be rebuilt later from its snapshot.
func (t *Timer) Stop() {
	t.mu.Lock()
	done := t.stopTicking()
	t.mu.Unlock()

	waitTickDone(done)
}

func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Timer) GoalSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.goalSeconds
}

func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedAt(t.clock.Now())
}

func (t *Timer) ElapsedSeconds() int {
	return int(t.Elapsed() / time.Second)
}

// Remaining is the time left to the goal, 0 when there is no goal or it passed.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.goalSeconds == 0 {
		return 0
	}
	elapsed := int(t.elapsedAt(t.clock.Now()) / time.Second)
	return max(t.goalSeconds-elapsed, 0)
}

func (t *Timer) IsTimeUp() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.goalSeconds == 0 {
		return false
	}
	return int(t.elapsedAt(t.clock.Now())/time.Second) >= t.goalSeconds
}

func (t *Timer) Snapshot() TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerSnapshot{
		State:       t.state,
		GoalSeconds: t.goalSeconds,
		StartedAt:   t.startedAt,
		TotalPaused: t.totalPaused,
		PausedAt:    t.pausedAt,
		TimeUpFired: t.timeUpFired,
	}
}

// elapsedAt must be called with mu held.
func (t *Timer) elapsedAt(now time.Time) time.Duration {
	var ref time.Time
	switch t.state {
	case TimerIdle:
		return 0
	case TimerPaused:
		ref = t.pausedAt
	case TimerFinished, TimerDiscarded:
		ref = t.stoppedAt
	default:
		ref = now
	}
	return max(ref.Sub(t.startedAt)-t.totalPaused, 0)
}

// startTicking must be called with mu held.
func (t *Timer) startTicking() {
	if t.ticker != nil {
		return
	}
	t.ticker = t.clock.NewTicker(tickInterval)
	t.stopTick = make(chan struct{})
	t.tickDone = make(chan struct{})
	go t.tickLoop(t.ticker, t.stopTick, t.tickDone)
}

// stopTicking must be called with mu held; the caller waits on the returned
// channel after unlocking.
func (t *Timer) stopTicking() chan struct{} {
	if t.ticker == nil {
		return nil
	}
	t.ticker.Stop()
	close(t.stopTick)
	done := t.tickDone
	t.ticker, t.stopTick, t.tickDone = nil, nil, nil
	return done
}

func waitTickDone(done chan struct{}) {
	if done != nil {
		<-done
	}
}

func (t *Timer) tickLoop(ticker *clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.tick(stop) {
				return
			}
		}
	}
}

func (t *Timer) tick(stop <-chan struct{}) bool {
	t.mu.Lock()
	select {
	case <-stop:
		t.mu.Unlock()
		return false
	default:
	}

	elapsed := int(t.elapsedAt(t.clock.Now()) / time.Second)
	fireTimeUp := t.goalSeconds > 0 && !t.timeUpFired && elapsed >= t.goalSeconds
	if fireTimeUp {
		t.timeUpFired = true
	}
	t.mu.Unlock()

	if t.hooks.OnTick != nil {
		t.hooks.OnTick(elapsed)
	}
	if fireTimeUp && t.hooks.OnTimeUp != nil {
		t.hooks.OnTimeUp(elapsed)
	}
	return true
}
