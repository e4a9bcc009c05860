package ledger

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
)

// scoreTolerance absorbs the two-decimal rounding of stored scores.
const scoreTolerance = 0.01

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// VerifyResult holds the outcome of replaying a user's xp entries.
type VerifyResult struct {
	UserID     uuid.UUID        `json:"user_id"`
	EntryCount int              `json:"entry_count"`
	Replayed   float64          `json:"replayed_score"`
	Invariants []InvariantCheck `json:"invariants"`
	AllPassed  bool             `json:"all_passed"`
}

// Verify replays entries (oldest first) from a zero score and checks them against
// the stored state.
//
// Invariants:
//  1. Score non-negativity: stored score and every snapshot >= 0
//  2. Entry chain: each score_after equals the replayed score at that point
//  3. Ledger parity: last snapshot matches the score row
//  4. Level consistency: stored level matches the current curve
func Verify(cfg *domain.Settings, state *domain.ScoreState, entries []domain.XPEntry) VerifyResult {
	res := VerifyResult{EntryCount: len(entries)}
	stored := domain.ScoreState{}
	if state != nil {
		stored = *state
		res.UserID = state.UserID
	}

	nonNegative := stored.Score >= 0
	chainOK := true
	chainDetail := "all snapshots match"
	score := 0.0
	for i, e := range entries {
		delta := e.Amount
		if e.Type == domain.XPEntryRevoke {
			delta = -delta
		}
		score, _ = ApplyDelta(cfg, score, delta)
		if e.ScoreAfter < 0 {
			nonNegative = false
		}
		if chainOK && math.Abs(score-e.ScoreAfter) > scoreTolerance {
			chainOK = false
			chainDetail = fmt.Sprintf("entry %d (id=%d): replayed=%.2f stored=%.2f", i, e.ID, score, e.ScoreAfter)
		}
	}
	res.Replayed = score

	res.Invariants = append(res.Invariants, InvariantCheck{
		Name:   "score_non_negative",
		Passed: nonNegative,
		Detail: fmt.Sprintf("score=%.2f", stored.Score),
	})
	res.Invariants = append(res.Invariants, InvariantCheck{
		Name:   "entry_chain",
		Passed: chainOK,
		Detail: chainDetail,
	})

	if len(entries) > 0 {
		last := entries[len(entries)-1]
		res.Invariants = append(res.Invariants, InvariantCheck{
			Name:   "ledger_parity",
			Passed: math.Abs(last.ScoreAfter-stored.Score) <= scoreTolerance && last.LevelAfter == stored.Level,
			Detail: fmt.Sprintf("row=[%.2f,%d] last_entry=[%.2f,%d]", stored.Score, stored.Level, last.ScoreAfter, last.LevelAfter),
		})
	} else {
		res.Invariants = append(res.Invariants, InvariantCheck{
			Name:   "ledger_parity",
			Passed: stored.Score == 0,
			Detail: "no entries (empty ledger)",
		})
	}

	expected := cfg.ClampLevel(cfg.Curve().LevelForXP(stored.Score))
	res.Invariants = append(res.Invariants, InvariantCheck{
		Name:   "level_matches_curve",
		Passed: expected == stored.Level,
		Detail: fmt.Sprintf("stored=%d expected=%d", stored.Level, expected),
	})

	res.AllPassed = true
	for _, inv := range res.Invariants {
		if !inv.Passed {
			res.AllPassed = false
		}
	}
	return res
}
