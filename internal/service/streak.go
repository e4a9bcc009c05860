package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/infra/metrics"
	"github.com/xpump/platform/internal/ledger"
	"github.com/xpump/platform/internal/repository"
	"github.com/xpump/platform/internal/streak"
)

// SweepResult summarises one cadence sweep.
type SweepResult struct {
	Checked int `json:"checked"`
	Reset   int `json:"reset"`
	Failed  int `json:"failed"`
}

// StreakService handles streak maintenance outside the ingestion flow.
type StreakService struct {
	db               Database
	engine           *ledger.Engine
	tracker          *streak.Workout
	streaks          repository.StreakRepository
	workouts         repository.WorkoutRepository
	outbox           repository.OutboxRepository
	defaultFrequency int
	logger           *slog.Logger
}

// NewStreakService creates a StreakService.
func NewStreakService(
	db Database,
	engine *ledger.Engine,
	streaks repository.StreakRepository,
	workouts repository.WorkoutRepository,
	outbox repository.OutboxRepository,
	loc *time.Location,
	defaultFrequency int,
	logger *slog.Logger,
) *StreakService {
	return &StreakService{
		db:               db,
		engine:           engine,
		tracker:          streak.NewWorkout(loc, nil),
		streaks:          streaks,
		workouts:         workouts,
		outbox:           outbox,
		defaultFrequency: defaultFrequency,
		logger:           logger,
	}
}

// SweepWorkoutStreaks resets every workout streak whose cadence week closed
// short of the user's frequency as of ref. Each user is handled in its own
// transaction; a failure for one user does not stop the sweep.
func (s *StreakService) SweepWorkoutStreaks(ctx context.Context, ref time.Time) (SweepResult, error) {
	var res SweepResult
	userIDs, err := s.streaks.ListWorkoutUserIDs(ctx, s.db)
	if err != nil {
		return res, domain.ErrInternal("list workout streaks", err)
	}

	var errs []error
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++
		reset, err := s.sweepOne(ctx, userID, ref)
		if err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			s.logger.Error("streak sweep failed", "user_id", userID, "error", err)
			continue
		}
		if reset {
			res.Reset++
			metrics.StreakResets.WithLabelValues(string(domain.StreakWorkout)).Inc()
		}
	}

	s.logger.Info("workout streak sweep done",
		"ref", ref, "checked", res.Checked, "reset", res.Reset, "failed", res.Failed)
	return res, errors.Join(errs...)
}

func (s *StreakService) sweepOne(ctx context.Context, userID uuid.UUID, ref time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.engine.LockScore(ctx, tx, userID); err != nil {
		return false, err
	}

	st, err := s.streaks.FindWorkout(ctx, tx, userID)
	if err != nil || st == nil {
		return false, err
	}
	start, end, ok := s.tracker.TrackedWeek(*st)
	if !ok || st.Current == 0 {
		return false, nil
	}
	count, err := s.workouts.CountBetween(ctx, tx, userID, start, end)
	if err != nil {
		return false, fmt.Errorf("count tracked week: %w", err)
	}
	if !s.tracker.Ended(*st, count, ref) {
		return false, nil
	}

	previous := st.Current
	next := s.tracker.Reset(*st)
	if err := s.streaks.SaveWorkout(ctx, tx, next); err != nil {
		return false, fmt.Errorf("save workout streak: %w", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewStreakResetEvent(userID, domain.StreakWorkout, previous, next.Longest)); err != nil {
		return false, fmt.Errorf("insert streak event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

// SetWorkoutFrequency changes the user's weekly workout target.
func (s *StreakService) SetWorkoutFrequency(ctx context.Context, userID uuid.UUID, frequency int) (*domain.WorkoutStreak, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateFrequency(frequency); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.engine.LockScore(ctx, tx, userID); err != nil {
		return nil, internalUnlessApp("lock score", err)
	}
	st, err := s.streaks.FindWorkout(ctx, tx, userID)
	if err != nil {
		return nil, internalUnlessApp("load workout streak", err)
	}
	if st == nil {
		st = domain.NewWorkoutStreak(userID, s.defaultFrequency)
	}
	st.Frequency = frequency
	if err := s.streaks.SaveWorkout(ctx, tx, *st); err != nil {
		return nil, internalUnlessApp("save workout streak", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("workout frequency updated", "user_id", userID, "frequency", frequency)
	return st, nil
}
