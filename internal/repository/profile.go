package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
)

type profileRepo struct{}

// NewProfileRepository returns a pgx-backed ProfileRepository.
func NewProfileRepository() ProfileRepository {
	return &profileRepo{}
}

// FindByUserID returns a profile, or nil if not found.
func (r *profileRepo) FindByUserID(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := db.QueryRow(ctx,
		`SELECT user_id, client_id, name FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.ClientID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}
