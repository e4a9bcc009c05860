package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/repository"
)

// Engine provides the 3 foundational score operations:
//  1. LockScore: lazily created row, pessimistic lock
//  2. FindExistingEntry: idempotency check per (activity, entry type)
//  3. PostXPChange: score/level update + append-only xp entry + outbox events
type Engine struct {
	scores  repository.ScoreRepository
	entries repository.XPEntryRepository
	outbox  repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	scores repository.ScoreRepository,
	entries repository.XPEntryRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		scores:  scores,
		entries: entries,
		outbox:  outbox,
	}
}

// LockScore acquires the user's score row lock, creating the row on first use.
// Must be called within a transaction, before any other read of the user's state.
func (e *Engine) LockScore(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.ScoreState, error) {
	state, err := e.scores.EnsureAndLock(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock score: %w", err)
	}
	return state, nil
}

// FindExistingEntry returns a previous entry for the activity, or nil.
func (e *Engine) FindExistingEntry(ctx context.Context, tx pgx.Tx, activityID uuid.UUID, entryType domain.XPEntryType) (*domain.XPEntry, error) {
	existing, err := e.entries.FindByActivity(ctx, tx, activityID, entryType)
	if err != nil {
		return nil, fmt.Errorf("find existing xp entry: %w", err)
	}
	return existing, nil
}

// ApplyDelta returns the score and level after adding delta to score. The score
// floors at 0 and the level is clamped to cfg.MaxLevel.
func ApplyDelta(cfg *domain.Settings, score, delta float64) (float64, int) {
	next := math.Max(score+delta, 0)
	return next, cfg.ClampLevel(cfg.Curve().LevelForXP(next))
}

// PostXPChange writes one mutation against an already locked score row.
//
// Steps:
//  1. Compute the new score and level, persist them
//  2. Insert the xp entry with the post-update snapshot
//  3. Insert outbox events (xp change, level up)
//
// All 3 steps run within the caller's transaction.
func (e *Engine) PostXPChange(ctx context.Context, tx pgx.Tx, cfg *domain.Settings, before domain.ScoreState, params domain.XPChangeParams) (*domain.XPChangeResult, error) {
	delta := params.Amount
	if params.Type == domain.XPEntryRevoke {
		delta = -delta
	}

	after := before
	after.Score, after.Level = ApplyDelta(cfg, before.Score, delta)
	if err := e.scores.Update(ctx, tx, after); err != nil {
		return nil, fmt.Errorf("update score: %w", err)
	}

	entry, err := e.entries.Insert(ctx, tx, params, after)
	if err != nil {
		return nil, fmt.Errorf("insert xp entry: %w", err)
	}

	var events []domain.OutboxDraft
	if params.Amount > 0 {
		events = append(events, domain.NewXPChangedEvent(entry))
	}
	leveledUp := after.Level > before.Level
	if leveledUp {
		events = append(events, domain.NewLevelUpEvent(params.UserID, before.Level, after.Level, after.Score))
	}
	for _, evt := range events {
		if err := e.outbox.Insert(ctx, tx, evt); err != nil {
			return nil, fmt.Errorf("insert outbox event: %w", err)
		}
	}

	return &domain.XPChangeResult{
		Entry:     entry,
		Before:    before,
		After:     after,
		LeveledUp: leveledUp,
		Events:    events,
	}, nil
}

// Apply runs the idempotency check and posts the change against a locked row.
func (e *Engine) Apply(ctx context.Context, tx pgx.Tx, cfg *domain.Settings, locked domain.ScoreState, params domain.XPChangeParams) (*domain.XPChangeResult, error) {
	if err := domain.ValidatePositiveXP(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if locked.UserID != params.UserID {
		return nil, fmt.Errorf("locked score belongs to %s, change is for %s", locked.UserID, params.UserID)
	}

	if params.ActivityID != nil {
		existing, err := e.FindExistingEntry(ctx, tx, *params.ActivityID, params.Type)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &domain.XPChangeResult{Entry: existing, Before: locked, After: locked, Idempotent: true}, nil
		}
	}

	return e.PostXPChange(ctx, tx, cfg, locked, params)
}
