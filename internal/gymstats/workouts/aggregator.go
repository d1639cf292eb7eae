package workouts

import (
	"math"

	"github.com/2beens/reprush/internal/gymstats/exercises"
)

// Finalize totals the entries of a finished session. It has no side effects,
// so calling it twice with the same input gives the same Result.
func Finalize(summary Summary, entries []exercises.LogEntry) (Result, error) {
	baseXP := 0
	for _, e := range entries {
		baseXP += max(e.XPEarned, 0)
	}
	if len(entries) == 0 || baseXP == 0 {
		return Result{}, ErrEmptySession
	}

	if summary.Mode != ModeChallenge {
		summary.GoalSeconds = 0
	}
	if summary.Mode == ModeQuickLog {
		summary.ElapsedSeconds = 0
	}
	summary.ElapsedSeconds = max(summary.ElapsedSeconds, 0)

	completedInTime := summary.Mode == ModeChallenge &&
		summary.GoalSeconds > 0 &&
		summary.ElapsedSeconds <= summary.GoalSeconds

	bonus := 1.0
	if completedInTime {
		bonus = ChallengeBonus
	}
	finalXP := int(math.Round(float64(baseXP) * bonus))

	return Result{
		Summary:         summary,
		Entries:         append([]exercises.LogEntry(nil), entries...),
		ExerciseCount:   len(entries),
		BaseXP:          baseXP,
		BonusMultiplier: bonus,
		BonusXP:         finalXP - baseXP,
		FinalXP:         finalXP,
		CompletedInTime: completedInTime,
	}, nil
}
