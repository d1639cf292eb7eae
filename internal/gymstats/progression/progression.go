package progression

import "math"

// XPPerLevel is the width of every level on the flat curve.
const XPPerLevel = 100

// LevelOf returns the level reached with totalXP: floor(totalXP/100) + 1.
// Negative totals count as zero.
func LevelOf(totalXP int) int {
	return max(totalXP, 0)/XPPerLevel + 1
}

// CurrentLevelXP is the XP earned inside the current level.
func CurrentLevelXP(totalXP int) int {
	return max(totalXP, 0) % XPPerLevel
}

// NextLevelXP is the total XP at which the level after the current one starts.
func NextLevelXP(totalXP int) int {
	return LevelOf(totalXP) * XPPerLevel
}

type Progress struct {
	Current       int     `json:"current"`
	NextLevelXP   int     `json:"nextLevelXp"`
	NeededForNext int     `json:"neededForNext"`
	Percent       float64 `json:"percent"`
}

func ProgressWithinLevel(totalXP int) Progress {
	current := CurrentLevelXP(totalXP)
	percent := float64(current) / XPPerLevel * 100
	return Progress{
		Current:       current,
		NextLevelXP:   NextLevelXP(totalXP),
		NeededForNext: XPPerLevel - current,
		Percent:       math.Round(percent*100) / 100,
	}
}

// CheckLevelUp reports whether going from oldTotal to newTotal crosses at
// least one level boundary.
func CheckLevelUp(oldTotal, newTotal int) bool {
	return LevelOf(newTotal) > LevelOf(oldTotal)
}
