package policy

// SeasonBonusInput carries everything the catch-up bonus decision needs.
type SeasonBonusInput struct {
	MonthsRemaining             float64
	MonthsToEndSeason           float64
	HasMainGroup                bool
	UserScore                   float64
	LeaderScore                 float64
	PercentageFromFirstPosition float64
	SeasonBonusPercentage       float64
}

// SeasonBonusEvaluation is the outcome of EvaluateSeasonBonus.
type SeasonBonusEvaluation struct {
	XP        float64 `json:"xp"`
	Applied   bool    `json:"applied"`
	Threshold float64 `json:"threshold,omitempty"`
	Reason    string  `json:"reason"`
}

// Reasons reported by EvaluateSeasonBonus.
const (
	BonusReasonSeasonNotEnding = "season_not_ending"
	BonusReasonNoMainGroup     = "no_main_group"
	BonusReasonAboveThreshold  = "above_threshold"
	BonusReasonApplied         = "applied"
)

// EvaluateSeasonBonus adds SeasonBonusPercentage to baseXP for users trailing the
// leader of their main group near the end of the season.
func EvaluateSeasonBonus(in SeasonBonusInput, baseXP float64) SeasonBonusEvaluation {
	if in.MonthsRemaining >= in.MonthsToEndSeason {
		return SeasonBonusEvaluation{XP: baseXP, Reason: BonusReasonSeasonNotEnding}
	}
	if !in.HasMainGroup {
		return SeasonBonusEvaluation{XP: baseXP, Reason: BonusReasonNoMainGroup}
	}

	threshold := in.LeaderScore * in.PercentageFromFirstPosition / 100
	if in.UserScore >= threshold {
		return SeasonBonusEvaluation{XP: baseXP, Threshold: threshold, Reason: BonusReasonAboveThreshold}
	}
	return SeasonBonusEvaluation{
		XP:        baseXP + baseXP*in.SeasonBonusPercentage/100,
		Applied:   true,
		Threshold: threshold,
		Reason:    BonusReasonApplied,
	}
}
