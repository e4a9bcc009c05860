package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
)

// AddXP credits amount to the user's score.
// Pattern: Lock → Idempotency → PostXPChange
func (e *Engine) AddXP(ctx context.Context, tx pgx.Tx, cfg *domain.Settings, params domain.XPChangeParams) (*domain.XPChangeResult, error) {
	params.Type = domain.XPEntryAward

	state, err := e.LockScore(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("add xp: %w", err)
	}

	result, err := e.Apply(ctx, tx, cfg, *state, params)
	if err != nil {
		return nil, fmt.Errorf("add xp: %w", err)
	}
	return result, nil
}
