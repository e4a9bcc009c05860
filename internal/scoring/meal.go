package scoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/policy"
	"github.com/xpump/platform/internal/repository"
)

// MealInput is one meal to score. Streak is the meal streak after the update.
type MealInput struct {
	UserID uuid.UUID
	Score  float64
	Streak int
}

// MealScore explains how an award was reached.
type MealScore struct {
	Award      float64                      `json:"award"`
	Base       float64                      `json:"base"`
	Multiplier float64                      `json:"multiplier"`
	Bonus      policy.SeasonBonusEvaluation `json:"bonus"`
}

// MealScorer computes meal XP. Meals have no daily cap.
type MealScorer struct {
	bonus BonusEvaluator
}

// NewMealScorer creates a scorer.
func NewMealScorer(bonus BonusEvaluator) *MealScorer {
	return &MealScorer{bonus: bonus}
}

func (s *MealScorer) Calculate(ctx context.Context, db repository.DBTX, cfg *domain.Settings, in MealInput) (*MealScore, error) {
	bonus, err := s.bonus.BaseXPWithBonus(ctx, db, cfg, BonusInput{UserID: in.UserID, Score: in.Score}, cfg.MealXP)
	if err != nil {
		return nil, fmt.Errorf("season bonus: %w", err)
	}

	multiplier := cfg.MealStreakMultipliers.Resolve(in.Streak)
	return &MealScore{
		Award:      bonus.XP * multiplier,
		Base:       bonus.XP,
		Multiplier: multiplier,
		Bonus:      bonus,
	}, nil
}
