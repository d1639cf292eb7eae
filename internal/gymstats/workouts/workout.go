package workouts

import (
	"errors"
	"time"

	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/gymstats/progression"
)

var (
	// ErrEmptySession is returned when finishing a session without any XP.
	// The session stays active so the user can keep logging.
	ErrEmptySession = errors.New("session has no logged exercise XP")
	// ErrStoreWrite marks a failed finalize write; neither the workout nor the
	// progression was stored.
	ErrStoreWrite = errors.New("store write failed")
	// ErrAlreadySynced is returned when an uploaded workout's local id was
	// stored before.
	ErrAlreadySynced = errors.New("workout already synced")
)

// StoreWriteError wraps the underlying store error; errors.Is matches both
// ErrStoreWrite and the cause.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return ErrStoreWrite.Error() + ": " + e.Err.Error()
}

func (e *StoreWriteError) Unwrap() []error {
	return []error{ErrStoreWrite, e.Err}
}

type Mode string

const (
	ModeChallenge Mode = "challenge"
	ModeFree      Mode = "free"
	ModeQuickLog  Mode = "quick"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeChallenge, ModeFree, ModeQuickLog:
		return true
	default:
		return false
	}
}

// ChallengeBonus multiplies the XP of a challenge finished within its goal time.
const ChallengeBonus = 1.2

// Summary describes the finished session the entries were logged in.
type Summary struct {
	UserID         string    `json:"userId"`
	SessionID      string    `json:"sessionId"`
	Mode           Mode      `json:"mode"`
	GoalSeconds    int       `json:"goalSeconds,omitempty"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// Result is a finalized workout, ready to be stored.
type Result struct {
	Summary
	LocalID         string               `json:"localId,omitempty"`
	Entries         []exercises.LogEntry `json:"entries"`
	ExerciseCount   int                  `json:"exerciseCount"`
	BaseXP          int                  `json:"baseXp"`
	BonusMultiplier float64              `json:"bonusMultiplier"`
	BonusXP         int                  `json:"bonusXp"`
	FinalXP         int                  `json:"totalXp"`
	CompletedInTime bool                 `json:"completedInTime"`
}

// Committed is what the store returns for a saved workout.
type Committed struct {
	WorkoutID       int64             `json:"workoutId"`
	Result          Result            `json:"result"`
	OldLevel        int               `json:"oldLevel"`
	NewLevel        int               `json:"newLevel"`
	LeveledUp       bool              `json:"leveledUp"`
	Progression     progression.State `json:"progression"`
	NewAchievements []int             `json:"newAchievements"`
}

// Workout is a stored workout as listed in the history.
type Workout struct {
	ID              int64     `json:"id"`
	LocalID         string    `json:"localId,omitempty"`
	Mode            Mode      `json:"mode"`
	GoalSeconds     int       `json:"goalSeconds,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	BaseXP          int       `json:"baseXp"`
	BonusXP         int       `json:"bonusXp"`
	TotalXP         int       `json:"totalXp"`
	CompletedInTime bool      `json:"completedInTime"`
	ExerciseCount   int       `json:"exerciseCount"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// OfflineWorkout is the payload of a workout logged while offline and queued
// for upload.
type OfflineWorkout struct {
	Summary Summary              `json:"summary"`
	Entries []exercises.LogEntry `json:"entries"`
}

// SyncRequest is the body of POST /workouts/sync.
type SyncRequest struct {
	LocalID   string         `json:"localId"`
	Kind      string         `json:"kind"`
	Payload   OfflineWorkout `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}
