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

type scoreRepo struct{}

// NewScoreRepository returns a pgx-backed ScoreRepository.
func NewScoreRepository() ScoreRepository {
	return &scoreRepo{}
}

// EnsureAndLock inserts a zero row if needed, then takes the row lock. Concurrent
// first events for one user both succeed: the loser of the insert race does nothing
// and waits on the lock.
func (r *scoreRepo) EnsureAndLock(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.ScoreState, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO score_states (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure score row: %w", err)
	}

	row := tx.QueryRow(ctx, `
		SELECT user_id, score, level, updated_at
		FROM score_states WHERE user_id = $1 FOR UPDATE`, userID)
	state, err := scanScore(row)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("score row for %s vanished after insert", userID)
	}
	return state, nil
}

func (r *scoreRepo) Find(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.ScoreState, error) {
	row := db.QueryRow(ctx, `
		SELECT user_id, score, level, updated_at
		FROM score_states WHERE user_id = $1`, userID)
	return scanScore(row)
}

func (r *scoreRepo) Update(ctx context.Context, db DBTX, state domain.ScoreState) error {
	tag, err := db.Exec(ctx, `
		UPDATE score_states SET score = $2, level = $3, updated_at = now()
		WHERE user_id = $1`,
		state.UserID, infra.Float64ToNumeric(state.Score), state.Level)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("score state", state.UserID.String())
	}
	return nil
}

func (r *scoreRepo) FindByUserIDs(ctx context.Context, db DBTX, userIDs []uuid.UUID) (map[uuid.UUID]domain.ScoreState, error) {
	out := make(map[uuid.UUID]domain.ScoreState, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := db.Query(ctx, `
		SELECT user_id, score, level, updated_at
		FROM score_states WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		state, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out[state.UserID] = *state
	}
	return out, rows.Err()
}

func scanScore(row pgx.Row) (*domain.ScoreState, error) {
	var s domain.ScoreState
	var score pgtype.Numeric
	err := row.Scan(&s.UserID, &score, &s.Level, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan score: %w", err)
	}
	s.Score, err = infra.NumericToFloat64(score)
	if err != nil {
		return nil, fmt.Errorf("convert score: %w", err)
	}
	return &s, nil
}
