package scoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/policy"
	"github.com/xpump/platform/internal/repository"
)

// WorkoutInput is one check-in to score. TodayTotal is the XP already awarded to
// the user's workouts today, read after the score row lock.
type WorkoutInput struct {
	UserID          uuid.UUID
	Score           float64
	DurationSeconds int
	TodayTotal      float64
	Streak          int
}

// WorkoutScore explains how an award was reached.
type WorkoutScore struct {
	Award      float64                      `json:"award"`
	Raw        float64                      `json:"raw"`
	Base       float64                      `json:"base"`
	Multiplier float64                      `json:"multiplier"`
	Tier       policy.DurationTier          `json:"tier,omitempty"`
	Bonus      policy.SeasonBonusEvaluation `json:"bonus"`
	Cap        policy.DailyCapEvaluation    `json:"cap"`
}

// WorkoutScorer computes workout XP.
type WorkoutScorer struct {
	bonus            BonusEvaluator
	streakMultiplier bool
}

// NewWorkoutScorer creates a scorer. With streakMultiplier off every workout
// resolves the tier table at streak 1.
func NewWorkoutScorer(bonus BonusEvaluator, streakMultiplier bool) *WorkoutScorer {
	return &WorkoutScorer{bonus: bonus, streakMultiplier: streakMultiplier}
}

// Calculate returns the award for one workout, already truncated by the daily cap.
func (s *WorkoutScorer) Calculate(ctx context.Context, db repository.DBTX, cfg *domain.Settings, in WorkoutInput) (*WorkoutScore, error) {
	if err := domain.ValidateDurationSeconds(in.DurationSeconds); err != nil {
		return nil, err
	}

	bonus, err := s.bonus.BaseXPWithBonus(ctx, db, cfg, BonusInput{UserID: in.UserID, Score: in.Score}, cfg.WorkoutXP)
	if err != nil {
		return nil, fmt.Errorf("season bonus: %w", err)
	}

	streak := 1
	if s.streakMultiplier {
		streak = in.Streak
	}
	result := &WorkoutScore{
		Base:       bonus.XP,
		Multiplier: cfg.WorkoutStreakMultipliers.Resolve(streak),
		Bonus:      bonus,
	}

	if in.TodayTotal >= cfg.MaxWorkoutXPPerDay {
		result.Cap = policy.DailyCapEvaluation{Capped: true}
		return result, nil
	}

	minutes := float64(in.DurationSeconds) / 60
	tiered, tier := policy.WorkoutBaseXP(minutes, cfg.WorkoutMinutesBase, bonus.XP)
	result.Tier = tier
	result.Raw = tiered * result.Multiplier
	result.Cap = policy.EvaluateDailyCap(result.Raw, cfg.MaxWorkoutXPPerDay, in.TodayTotal)
	result.Award = result.Cap.Award
	return result, nil
}
