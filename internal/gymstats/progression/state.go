package progression

// State is a user's progression. TotalXP never decreases; the other fields
// are derived from it.
type State struct {
	UserID    string   `json:"userId"`
	TotalXP   int      `json:"totalXp"`
	CurrentXP int      `json:"currentXp"`
	Level     int      `json:"level"`
	Tier      Tier     `json:"tier"`
	Progress  Progress `json:"progress"`
}

func NewState(userID string, totalXP int) State {
	totalXP = max(totalXP, 0)
	level := LevelOf(totalXP)
	return State{
		UserID:    userID,
		TotalXP:   totalXP,
		CurrentXP: CurrentLevelXP(totalXP),
		Level:     level,
		Tier:      TierOf(level),
		Progress:  ProgressWithinLevel(totalXP),
	}
}

// Award adds xp (negative values are ignored) and returns the new state and
// whether a level was gained.
func (s State) Award(xp int) (State, bool) {
	next := NewState(s.UserID, s.TotalXP+max(xp, 0))
	return next, CheckLevelUp(s.TotalXP, next.TotalXP)
}
