// Package service runs the gamification flows. Each mutating call owns exactly
// one transaction and takes the user's score row lock before anything else.
package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/infra/metrics"
	"github.com/xpump/platform/internal/repository"
)

// Database is satisfied by *pgxpool.Pool.
type Database interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SettingsSource yields the current settings snapshot.
type SettingsSource interface {
	Current() (*domain.Settings, error)
}

// internalUnlessApp keeps AppErrors intact and wraps anything else as INTERNAL_ERROR.
func internalUnlessApp(msg string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.ErrInternal(msg, err)
}

func recordFailure(kind domain.ActivityKind, err error) {
	code := domain.CodeInternal
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	metrics.ScoringErrors.WithLabelValues(string(kind), code).Inc()
}

func recordAward(kind domain.ActivityKind, res *domain.XPChangeResult) {
	if res == nil || res.Idempotent {
		return
	}
	metrics.XPAwarded.WithLabelValues(string(kind)).Add(res.Entry.Amount)
	if res.LeveledUp {
		metrics.LevelUps.Inc()
	}
}
