package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/repository"
)

type fakeTx struct{ pgx.Tx }

type fakeScores struct {
	states map[uuid.UUID]domain.ScoreState
	locks  int
}

func newFakeScores() *fakeScores {
	return &fakeScores{states: make(map[uuid.UUID]domain.ScoreState)}
}

func (f *fakeScores) EnsureAndLock(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.ScoreState, error) {
	f.locks++
	st, ok := f.states[id]
	if !ok {
		st = *domain.NewScoreState(id)
		f.states[id] = st
	}
	return &st, nil
}

func (f *fakeScores) Find(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.ScoreState, error) {
	st, ok := f.states[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (f *fakeScores) Update(_ context.Context, _ repository.DBTX, st domain.ScoreState) error {
	f.states[st.UserID] = st
	return nil
}

func (f *fakeScores) FindByUserIDs(context.Context, repository.DBTX, []uuid.UUID) (map[uuid.UUID]domain.ScoreState, error) {
	return f.states, nil
}

type entryKey struct {
	activity uuid.UUID
	typ      domain.XPEntryType
}

type fakeEntries struct {
	rows []domain.XPEntry
}

func (f *fakeEntries) FindByActivity(_ context.Context, _ repository.DBTX, id uuid.UUID, typ domain.XPEntryType) (*domain.XPEntry, error) {
	for i := range f.rows {
		e := f.rows[i]
		if e.ActivityID != nil && (entryKey{*e.ActivityID, e.Type}) == (entryKey{id, typ}) {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeEntries) Insert(_ context.Context, _ repository.DBTX, p domain.XPChangeParams, after domain.ScoreState) (*domain.XPEntry, error) {
	e := domain.XPEntry{
		ID:         int64(len(f.rows) + 1),
		UserID:     p.UserID,
		Type:       p.Type,
		Source:     p.Source,
		ActivityID: p.ActivityID,
		Amount:     p.Amount,
		ScoreAfter: after.Score,
		LevelAfter: after.Level,
		CreatedAt:  time.Now(),
	}
	f.rows = append(f.rows, e)
	return &e, nil
}

func (f *fakeEntries) ListByUser(_ context.Context, _ repository.DBTX, id uuid.UUID) ([]domain.XPEntry, error) {
	var out []domain.XPEntry
	for _, e := range f.rows {
		if e.UserID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeOutbox struct {
	drafts []domain.OutboxDraft
}

func (f *fakeOutbox) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	f.drafts = append(f.drafts, d)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(context.Context, repository.DBTX, int) ([]domain.OutboxRow, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, repository.DBTX, []int64) error { return nil }
