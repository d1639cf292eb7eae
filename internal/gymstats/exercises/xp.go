package exercises

import "math"

// ComputeXP returns the XP for logging inputs against ex. Negative, NaN and
// infinite inputs count as zero, so the result is never negative.
func ComputeXP(ex Exercise, in Inputs) int {
	in = in.Sanitized()
	mult := ParseDifficulty(string(ex.Difficulty)).Multiplier()

	sets := float64(in.Sets)
	reps := float64(in.Reps)

	var xp float64
	switch ParseCategory(string(ex.Category)) {
	case CategoryStrength:
		xp = sets * reps * (in.WeightKg * 0.1) * mult
	case CategoryCardio:
		xp = (in.DurationMin*2 + in.DistanceKm*10) * mult
	case CategoryFlexibility:
		xp = in.DurationMin * 3 * mult
	default:
		xp = (sets*reps + in.DurationMin*2) * mult
	}

	if math.IsNaN(xp) || xp <= 0 {
		return 0
	}
	if xp >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(xp))
}

// NewLogEntry computes the entry for ex; call it again whenever inputs change.
func NewLogEntry(ex Exercise, in Inputs) LogEntry {
	in = in.Sanitized()
	return LogEntry{
		ExerciseID: ex.ID,
		Name:       ex.Name,
		Category:   ParseCategory(string(ex.Category)),
		Inputs:     in,
		XPEarned:   ComputeXP(ex, in),
	}
}

// Sanitized clamps every input to a finite, non-negative value.
func (in Inputs) Sanitized() Inputs {
	return Inputs{
		Sets:        max(in.Sets, 0),
		Reps:        max(in.Reps, 0),
		WeightKg:    clampFloat(in.WeightKg),
		DurationMin: clampFloat(in.DurationMin),
		DistanceKm:  clampFloat(in.DistanceKm),
	}
}

func clampFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
