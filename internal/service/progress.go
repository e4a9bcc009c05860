package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/repository"
)

// ProgressService builds the read model for a user's XP, level and streaks.
type ProgressService struct {
	db       repository.DBTX
	settings SettingsSource
	scores   repository.ScoreRepository
	streaks  repository.StreakRepository
}

func NewProgressService(db repository.DBTX, settings SettingsSource, scores repository.ScoreRepository, streaks repository.StreakRepository) *ProgressService {
	return &ProgressService{db: db, settings: settings, scores: scores, streaks: streaks}
}

// Get returns the user's progress. Users without activity get a zero state.
func (s *ProgressService) Get(ctx context.Context, userID uuid.UUID) (*domain.Progress, error) {
	cfg, err := s.settings.Current()
	if err != nil {
		return nil, err
	}

	score, err := s.scores.Find(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("load score", err)
	}
	if score == nil {
		score = domain.NewScoreState(userID)
	}
	workout, err := s.streaks.FindWorkout(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("load workout streak", err)
	}
	meal, err := s.streaks.FindMeal(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("load meal streak", err)
	}

	curve := cfg.Curve()
	p := &domain.Progress{
		UserID:        userID,
		Score:         score.Score,
		Level:         score.Level,
		WorkoutStreak: workout,
		MealStreak:    meal,
	}
	if cfg.MaxLevel > 0 && score.Level >= cfg.MaxLevel {
		p.ProgressPct = 100
	} else {
		p.XPToNextLevel = curve.XPToNextLevel(score.Level, score.Score)
		p.ProgressPct = curve.ProgressPct(score.Level, score.Score)
	}
	return p, nil
}
