package policy

import "math"

// DurationTier names the workout length bracket that set the base XP.
type DurationTier string

const (
	DurationShort    DurationTier = "short"    // under the base minutes: half XP
	DurationBase     DurationTier = "base"     // exactly the base minutes
	DurationExtended DurationTier = "extended" // between base and twice base: 1.5x
	DurationDouble   DurationTier = "double"   // twice base or longer: 2x
)

// WorkoutBaseXP returns the unmultiplied XP for a workout of the given minutes.
func WorkoutBaseXP(minutes float64, minutesBase int, workoutXP float64) (float64, DurationTier) {
	m := float64(minutesBase)
	switch {
	case minutes < m:
		return workoutXP / 2, DurationShort
	case minutes == m:
		return workoutXP, DurationBase
	case minutes < 2*m:
		return workoutXP * 1.5, DurationExtended
	default:
		return workoutXP * 2, DurationDouble
	}
}

// DailyCapEvaluation holds the result of a daily workout XP cap check.
type DailyCapEvaluation struct {
	Award     float64 `json:"award"`
	Requested float64 `json:"requested"`
	Remaining float64 `json:"remaining"`
	Capped    bool    `json:"capped"`
}

// EvaluateDailyCap truncates requested XP to what is left of maxPerDay after
// todayTotal. Once the cap is reached every further workout earns 0.
func EvaluateDailyCap(requested, maxPerDay, todayTotal float64) DailyCapEvaluation {
	if todayTotal >= maxPerDay {
		return DailyCapEvaluation{Award: 0, Requested: requested, Remaining: 0, Capped: requested > 0}
	}

	remaining := maxPerDay - todayTotal
	award := math.Min(requested, remaining)
	return DailyCapEvaluation{
		Award:     award,
		Requested: requested,
		Remaining: remaining,
		Capped:    award < requested,
	}
}
