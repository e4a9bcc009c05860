package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
)

// RemoveXP debits amount from the user's score, flooring at 0. The level is
// recomputed and may go down.
// Pattern: Lock → Idempotency → PostXPChange
func (e *Engine) RemoveXP(ctx context.Context, tx pgx.Tx, cfg *domain.Settings, params domain.XPChangeParams) (*domain.XPChangeResult, error) {
	params.Type = domain.XPEntryRevoke

	state, err := e.LockScore(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("remove xp: %w", err)
	}

	result, err := e.Apply(ctx, tx, cfg, *state, params)
	if err != nil {
		return nil, fmt.Errorf("remove xp: %w", err)
	}
	return result, nil
}
