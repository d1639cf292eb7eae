package exercises

import (
	"strings"
	"time"
)

// Category selects the XP formula for an exercise.
type Category string

const (
	CategoryStrength    Category = "strength"
	CategoryCardio      Category = "cardio"
	CategoryFlexibility Category = "flexibility"
	CategorySports      Category = "sports"
	CategoryOther       Category = "other"
)

// ParseCategory maps the category names used by the clients onto a Category.
// Unknown names fall back to CategoryOther.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strength", "weightlifting":
		return CategoryStrength
	case "cardio":
		return CategoryCardio
	case "flexibility", "stretching":
		return CategoryFlexibility
	case "sports":
		return CategorySports
	default:
		return CategoryOther
	}
}

func (c Category) String() string {
	return string(c)
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty matches difficulty names case-insensitively. Unknown names
// fall back to DifficultyBeginner.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intermediate":
		return DifficultyIntermediate
	case "advanced":
		return DifficultyAdvanced
	default:
		return DifficultyBeginner
	}
}

func (d Difficulty) String() string {
	return string(d)
}

// Multiplier scales the base XP of an exercise. Unknown difficulties count as beginner.
func (d Difficulty) Multiplier() float64 {
	switch ParseDifficulty(string(d)) {
	case DifficultyIntermediate:
		return 1.5
	case DifficultyAdvanced:
		return 2
	default:
		return 1
	}
}

// Exercise is a catalog entry; catalog entries are never modified once added.
type Exercise struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Normalized returns ex with category and difficulty mapped onto their
// canonical lowercase values.
func (ex Exercise) Normalized() Exercise {
	ex.Category = ParseCategory(string(ex.Category))
	ex.Difficulty = ParseDifficulty(string(ex.Difficulty))
	return ex
}

// Inputs are the values a user logs for one exercise. Which fields count
// depends on the exercise category.
type Inputs struct {
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	WeightKg    float64 `json:"weightKg"`
	DurationMin float64 `json:"durationMin"`
	DistanceKm  float64 `json:"distanceKm"`
}

// LogEntry is one exercise logged in a session, with its XP computed from Inputs.
type LogEntry struct {
	ExerciseID int      `json:"exerciseId"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Inputs     Inputs   `json:"inputs"`
	XPEarned   int      `json:"xpEarned"`
}
