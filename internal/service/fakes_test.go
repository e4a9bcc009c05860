package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/policy"
	"github.com/xpump/platform/internal/repository"
	"github.com/xpump/platform/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.rollbacks++
	return nil
}

// fakeDB hands out fakeTx values; the in-memory repositories ignore the handle.
type fakeDB struct {
	repository.DBTX
	begins    int
	commits   int
	rollbacks int
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	d.begins++
	return &fakeTx{db: d}, nil
}

type staticSettings struct {
	cfg *domain.Settings
	err error
}

func (s staticSettings) Current() (*domain.Settings, error) { return s.cfg, s.err }

// flatBonus never applies the season bonus.
type flatBonus struct{}

func (flatBonus) BaseXPWithBonus(_ context.Context, _ repository.DBTX, _ *domain.Settings, _ scoring.BonusInput, baseXP float64) (policy.SeasonBonusEvaluation, error) {
	return policy.SeasonBonusEvaluation{XP: baseXP, Reason: policy.BonusReasonSeasonNotEnding}, nil
}

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

func (f *fakeScores) FindByUserIDs(_ context.Context, _ repository.DBTX, ids []uuid.UUID) (map[uuid.UUID]domain.ScoreState, error) {
	out := make(map[uuid.UUID]domain.ScoreState)
	for _, id := range ids {
		if st, ok := f.states[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

type fakeEntries struct{ rows []domain.XPEntry }

func (f *fakeEntries) FindByActivity(_ context.Context, _ repository.DBTX, id uuid.UUID, typ domain.XPEntryType) (*domain.XPEntry, error) {
	for i := range f.rows {
		if f.rows[i].ActivityID != nil && *f.rows[i].ActivityID == id && f.rows[i].Type == typ {
			e := f.rows[i]
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

type fakeOutbox struct{ drafts []domain.OutboxDraft }

func (f *fakeOutbox) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	f.drafts = append(f.drafts, d)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(context.Context, repository.DBTX, int) ([]domain.OutboxRow, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, repository.DBTX, []int64) error { return nil }

func (f *fakeOutbox) count(t domain.EventType) int {
	n := 0
	for _, d := range f.drafts {
		if d.EventType == t {
			n++
		}
	}
	return n
}

type fakeStreaks struct {
	workouts map[uuid.UUID]domain.WorkoutStreak
	meals    map[uuid.UUID]domain.MealStreak
}

func newFakeStreaks() *fakeStreaks {
	return &fakeStreaks{
		workouts: make(map[uuid.UUID]domain.WorkoutStreak),
		meals:    make(map[uuid.UUID]domain.MealStreak),
	}
}

func (f *fakeStreaks) FindWorkout(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.WorkoutStreak, error) {
	st, ok := f.workouts[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (f *fakeStreaks) SaveWorkout(_ context.Context, _ repository.DBTX, st domain.WorkoutStreak) error {
	f.workouts[st.UserID] = st
	return nil
}

func (f *fakeStreaks) FindMeal(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.MealStreak, error) {
	st, ok := f.meals[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (f *fakeStreaks) SaveMeal(_ context.Context, _ repository.DBTX, st domain.MealStreak) error {
	f.meals[st.UserID] = st
	return nil
}

func (f *fakeStreaks) ListWorkoutUserIDs(context.Context, repository.DBTX) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, st := range f.workouts {
		if st.Current > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

type fakeWorkouts struct{ rows map[uuid.UUID]domain.Workout }

func newFakeWorkouts() *fakeWorkouts {
	return &fakeWorkouts{rows: make(map[uuid.UUID]domain.Workout)}
}

func (f *fakeWorkouts) Insert(_ context.Context, _ repository.DBTX, w *domain.Workout) error {
	f.rows[w.ID] = *w
	return nil
}

func (f *fakeWorkouts) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Workout, error) {
	w, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (f *fakeWorkouts) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeWorkouts) SumBasePoints(_ context.Context, _ repository.DBTX, userID uuid.UUID, from, to time.Time) (float64, error) {
	total := 0.0
	for _, w := range f.rows {
		if w.UserID == userID && !w.CheckedInAt.Before(from) && w.CheckedInAt.Before(to) {
			total += w.BasePoints
		}
	}
	return total, nil
}

func (f *fakeWorkouts) CountBetween(_ context.Context, _ repository.DBTX, userID uuid.UUID, from, to time.Time) (int, error) {
	n := 0
	for _, w := range f.rows {
		if w.UserID == userID && !w.CheckedInAt.Before(from) && w.CheckedInAt.Before(to) {
			n++
		}
	}
	return n, nil
}

type fakeMeals struct{ rows map[uuid.UUID]domain.Meal }

func newFakeMeals() *fakeMeals {
	return &fakeMeals{rows: make(map[uuid.UUID]domain.Meal)}
}

func (f *fakeMeals) Insert(_ context.Context, _ repository.DBTX, m *domain.Meal) error {
	f.rows[m.ID] = *m
	return nil
}

func (f *fakeMeals) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Meal, error) {
	m, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeMeals) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeMeals) ExistsForSlot(_ context.Context, _ repository.DBTX, userID, slotID uuid.UUID, from, to time.Time) (bool, error) {
	for _, m := range f.rows {
		if m.UserID == userID && m.SlotID == slotID && !m.MealTime.Before(from) && m.MealTime.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

type fakeSlots []domain.MealSlot

func (f fakeSlots) ListSlots(context.Context, repository.DBTX) ([]domain.MealSlot, error) {
	return f, nil
}

type fakeSettingsRepo struct {
	active *domain.Settings
	fail   bool
}

func (f *fakeSettingsRepo) FindActive(context.Context, repository.DBTX) (*domain.Settings, error) {
	if f.active == nil {
		return nil, nil
	}
	s := *f.active
	return &s, nil
}

func (f *fakeSettingsRepo) Activate(_ context.Context, _ pgx.Tx, s *domain.Settings) (*domain.Settings, error) {
	if f.fail {
		return nil, errors.New("connection reset")
	}
	stored := *s
	stored.ID = 2
	if f.active != nil {
		stored.Version = f.active.Version + 1
	}
	f.active = &stored
	return &stored, nil
}
