package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/infra"
)

const xpEntryColumns = `id, user_id, entry_type, source, activity_id, amount, score_after, level_after, created_at`

type xpEntryRepo struct{}

// NewXPEntryRepository returns a pgx-backed XPEntryRepository.
func NewXPEntryRepository() XPEntryRepository {
	return &xpEntryRepo{}
}

func (r *xpEntryRepo) FindByActivity(ctx context.Context, db DBTX, activityID uuid.UUID, entryType domain.XPEntryType) (*domain.XPEntry, error) {
	row := db.QueryRow(ctx, `
		SELECT `+xpEntryColumns+`
		FROM xp_entries WHERE activity_id = $1 AND entry_type = $2`,
		activityID, string(entryType))
	return scanXPEntry(row)
}

func (r *xpEntryRepo) Insert(ctx context.Context, db DBTX, params domain.XPChangeParams, after domain.ScoreState) (*domain.XPEntry, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO xp_entries (user_id, entry_type, source, activity_id, amount, score_after, level_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+xpEntryColumns,
		params.UserID,
		string(params.Type),
		string(params.Source),
		params.ActivityID,
		infra.Float64ToNumeric(params.Amount),
		infra.Float64ToNumeric(after.Score),
		after.Level,
	)
	entry, err := scanXPEntry(row)
	if err != nil {
		return nil, fmt.Errorf("insert xp entry: %w", err)
	}
	return entry, nil
}

func (r *xpEntryRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.XPEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT `+xpEntryColumns+`
		FROM xp_entries WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list xp entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.XPEntry
	for rows.Next() {
		e, err := scanXPEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanXPEntry(row pgx.Row) (*domain.XPEntry, error) {
	var e domain.XPEntry
	var amount, scoreAfter pgtype.Numeric
	err := row.Scan(&e.ID, &e.UserID, &e.Type, &e.Source, &e.ActivityID, &amount, &scoreAfter, &e.LevelAfter, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan xp entry: %w", err)
	}
	if e.Amount, err = infra.NumericToFloat64(amount); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if e.ScoreAfter, err = infra.NumericToFloat64(scoreAfter); err != nil {
		return nil, fmt.Errorf("convert score_after: %w", err)
	}
	return &e, nil
}
