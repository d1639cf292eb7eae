package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/gymstats/workouts"
)

var (
	ErrInvalidMode          = errors.New("invalid session mode")
	ErrInvalidGoal          = errors.New("challenge goal must be between 1 and 120 minutes")
	ErrExerciseNotInSession = errors.New("exercise is not part of the session")
	ErrSessionNotActive     = errors.New("session is not active")
)

const (
	MinGoalMinutes = 1
	MaxGoalMinutes = 120
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDiscarded Status = "discarded"
)

// Session is one workout attempt. It is guarded by its own lock; the timer
// is nil for quick log sessions.
type Session struct {
	mu sync.Mutex

	id          string
	userID      string
	mode        workouts.Mode
	goalSeconds int
	startedAt   time.Time
	status      Status

	exercises []exercises.Exercise
	entries   map[int]exercises.LogEntry
	completed map[int]bool

	timer *Timer
}

// Snapshot is the stored form of an active session.
type Snapshot struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	Mode        workouts.Mode        `json:"mode"`
	GoalSeconds int                  `json:"goalSeconds,omitempty"`
	StartedAt   time.Time            `json:"startedAt"`
	Exercises   []exercises.Exercise `json:"exercises"`
	Entries     []exercises.LogEntry `json:"entries"`
	Completed   []int                `json:"completed"`
	Timer       *TimerSnapshot       `json:"timer,omitempty"`
}

type ExerciseView struct {
	exercises.Exercise
	Entry     *exercises.LogEntry `json:"entry,omitempty"`
	Completed bool                `json:"completed"`
}

// View is what clients see of a session.
type View struct {
	ID               string         `json:"id"`
	Mode             workouts.Mode  `json:"mode"`
	Status           Status         `json:"status"`
	TimerState       TimerState     `json:"timerState,omitempty"`
	GoalSeconds      int            `json:"goalSeconds,omitempty"`
	ElapsedSeconds   int            `json:"elapsedSeconds"`
	RemainingSeconds int            `json:"remainingSeconds,omitempty"`
	TimeUp           bool           `json:"timeUp"`
	StartedAt        time.Time      `json:"startedAt"`
	Exercises        []ExerciseView `json:"exercises"`
	BaseXP           int            `json:"baseXp"`
	ProgressPercent  int            `json:"progressPercent"`
}

// GoalSeconds validates the goal for mode. Only challenges have one.
func GoalSeconds(mode workouts.Mode, goalMinutes int) (int, error) {
	if !mode.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if mode != workouts.ModeChallenge {
		return 0, nil
	}
	if goalMinutes < MinGoalMinutes || goalMinutes > MaxGoalMinutes {
		return 0, ErrInvalidGoal
	}
	return goalMinutes * 60, nil
}

func newSession(id, userID string, mode workouts.Mode, goalSeconds int, startedAt time.Time, timer *Timer) *Session {
	return &Session{
		id:          id,
		userID:      userID,
		mode:        mode,
		goalSeconds: goalSeconds,
		startedAt:   startedAt,
		status:      StatusActive,
		entries:     map[int]exercises.LogEntry{},
		completed:   map[int]bool{},
		timer:       timer,
	}
}

func sessionFromSnapshot(snap Snapshot, timer *Timer) *Session {
	s := newSession(snap.ID, snap.UserID, snap.Mode, snap.GoalSeconds, snap.StartedAt, timer)
	s.exercises = slices.Clone(snap.Exercises)
	for _, e := range snap.Entries {
		s.entries[e.ExerciseID] = e
	}
	for _, id := range snap.Completed {
		s.completed[id] = true
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) Mode() workouts.Mode {
	return s.mode
}

func (s *Session) indexOf(exerciseID int) int {
	return slices.IndexFunc(s.exercises, func(ex exercises.Exercise) bool {
		return ex.ID == exerciseID
	})
}

// setEntry adds ex to the session if needed and recomputes its log entry.
func (s *Session) setEntry(ex exercises.Exercise, in exercises.Inputs) exercises.LogEntry {
	if s.indexOf(ex.ID) < 0 {
		s.exercises = append(s.exercises, ex)
	}
	entry := exercises.NewLogEntry(ex, in)
	s.entries[ex.ID] = entry
	return entry
}

// removeExercise drops the exercise along with its entry and completion mark.
func (s *Session) removeExercise(exerciseID int) error {
	i := s.indexOf(exerciseID)
	if i < 0 {
		return ErrExerciseNotInSession
	}
	s.exercises = slices.Delete(s.exercises, i, i+1)
	delete(s.entries, exerciseID)
	delete(s.completed, exerciseID)
	return nil
}

func (s *Session) toggleCompleted(exerciseID int) (bool, error) {
	if s.indexOf(exerciseID) < 0 {
		return false, ErrExerciseNotInSession
	}
	if s.completed[exerciseID] {
		delete(s.completed, exerciseID)
		return false, nil
	}
	s.completed[exerciseID] = true
	return true, nil
}

// logEntries returns the entries in exercise order.
func (s *Session) logEntries() []exercises.LogEntry {
	list := make([]exercises.LogEntry, 0, len(s.entries))
	for _, ex := range s.exercises {
		if e, ok := s.entries[ex.ID]; ok {
			list = append(list, e)
		}
	}
	return list
}

func (s *Session) elapsedSeconds() int {
	if s.timer == nil {
		return 0
	}
	return s.timer.ElapsedSeconds()
}

func (s *Session) progressPercent() int {
	if len(s.exercises) == 0 {
		return 0
	}
	return len(s.completed) * 100 / len(s.exercises)
}

func (s *Session) summary(now time.Time) workouts.Summary {
	return workouts.Summary{
		UserID:         s.userID,
		SessionID:      s.id,
		Mode:           s.mode,
		GoalSeconds:    s.goalSeconds,
		ElapsedSeconds: s.elapsedSeconds(),
		StartedAt:      s.startedAt,
		FinishedAt:     now,
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		UserID:      s.userID,
		Mode:        s.mode,
		GoalSeconds: s.goalSeconds,
		StartedAt:   s.startedAt,
		Exercises:   slices.Clone(s.exercises),
		Entries:     s.logEntries(),
		Completed:   make([]int, 0, len(s.completed)),
	}
	for _, ex := range s.exercises {
		if s.completed[ex.ID] {
			snap.Completed = append(snap.Completed, ex.ID)
		}
	}
	if s.timer != nil {
		timerSnap := s.timer.Snapshot()
		snap.Timer = &timerSnap
	}
	return snap
}

func (s *Session) view() View {
	v := View{
		ID:              s.id,
		Mode:            s.mode,
		Status:          s.status,
		GoalSeconds:     s.goalSeconds,
		StartedAt:       s.startedAt,
		Exercises:       make([]ExerciseView, 0, len(s.exercises)),
		ProgressPercent: s.progressPercent(),
	}
	if s.timer != nil {
		v.TimerState = s.timer.State()
		v.ElapsedSeconds = s.timer.ElapsedSeconds()
		v.RemainingSeconds = s.timer.Remaining()
		v.TimeUp = s.timer.IsTimeUp()
	}
	for _, ex := range s.exercises {
		ev := ExerciseView{
			Exercise:  ex,
			Completed: s.completed[ex.ID],
		}
		if e, ok := s.entries[ex.ID]; ok {
			ev.Entry = &e
			v.BaseXP += e.XPEarned
		}
		v.Exercises = append(v.Exercises, ev)
	}
	return v
}
