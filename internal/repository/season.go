package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
)

type seasonRepo struct{}

// NewSeasonRepository returns a pgx-backed SeasonRepository.
func NewSeasonRepository() SeasonRepository {
	return &seasonRepo{}
}

// FindActiveForClient returns all matches so callers can surface overlapping
// seasons instead of silently picking one.
func (r *seasonRepo) FindActiveForClient(ctx context.Context, db DBTX, clientID uuid.UUID, day time.Time) ([]domain.Season, error) {
	rows, err := db.Query(ctx, `
		SELECT id, client_id, start_date, end_date, description
		FROM seasons
		WHERE client_id = $1 AND start_date <= $2::date AND end_date >= $2::date
		ORDER BY start_date`, clientID, domain.DateOf(day))
	if err != nil {
		return nil, fmt.Errorf("find active seasons: %w", err)
	}
	seasons, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Season, error) {
		var s domain.Season
		err := row.Scan(&s.ID, &s.ClientID, &s.StartDate, &s.EndDate, &s.Description)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan season: %w", err)
	}
	return seasons, nil
}
