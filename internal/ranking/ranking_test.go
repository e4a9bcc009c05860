package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/repository"
)

var (
	userA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	userB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	userC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	userD = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
)

type fakeGroups struct {
	groups  map[uuid.UUID]*domain.Group
	members map[uuid.UUID][]domain.GroupMembership
	err     error
}

func (f *fakeGroups) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Group, error) {
	return f.groups[id], f.err
}

func (f *fakeGroups) ListMembers(_ context.Context, _ repository.DBTX, id uuid.UUID) ([]domain.GroupMembership, error) {
	return f.members[id], nil
}

func (f *fakeGroups) FindMainGroupsForUser(_ context.Context, _ repository.DBTX, _ uuid.UUID) ([]domain.Group, error) {
	return nil, nil
}

type fakeScores struct {
	states map[uuid.UUID]domain.ScoreState
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

func (f *fakeScores) EnsureAndLock(context.Context, pgx.Tx, uuid.UUID) (*domain.ScoreState, error) {
	panic("not used")
}

func (f *fakeScores) Find(context.Context, repository.DBTX, uuid.UUID) (*domain.ScoreState, error) {
	panic("not used")
}

func (f *fakeScores) Update(context.Context, repository.DBTX, domain.ScoreState) error {
	panic("not used")
}

func newFixture() (*Service, uuid.UUID) {
	groupID := uuid.New()
	groups := &fakeGroups{
		groups: map[uuid.UUID]*domain.Group{groupID: {ID: groupID, Name: "Team", Main: true}},
		members: map[uuid.UUID][]domain.GroupMembership{groupID: {
			{GroupID: groupID, UserID: userA},
			{GroupID: groupID, UserID: userB},
			{GroupID: groupID, UserID: userC},
			{GroupID: groupID, UserID: userD, Pending: true},
		}},
	}
	scores := &fakeScores{states: map[uuid.UUID]domain.ScoreState{
		userA: {UserID: userA, Score: 120, Level: 1},
		userB: {UserID: userB, Score: 300, Level: 2},
		userD: {UserID: userD, Score: 9000, Level: 20},
	}}
	return NewService(groups, scores), groupID
}

func TestRank_OrdersByScoreThenUserID(t *testing.T) {
	ranked := Rank([]domain.MemberScore{
		{UserID: userC, Score: 50},
		{UserID: userB, Score: 80},
		{UserID: userA, Score: 50},
		{UserID: userD, Score: 10},
	})

	require.Len(t, ranked, 4)
	assert.Equal(t, userB, ranked[0].UserID)
	assert.Equal(t, userA, ranked[1].UserID)
	assert.Equal(t, userC, ranked[2].UserID)
	assert.Equal(t, userD, ranked[3].UserID)
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Position)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []domain.MemberScore{{UserID: userA, Score: 1}, {UserID: userB, Score: 2}}
	Rank(in)
	assert.Equal(t, userA, in[0].UserID)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestService_RankSkipsPendingMembers(t *testing.T) {
	svc, groupID := newFixture()
	ranked, err := svc.Rank(context.Background(), nil, groupID)
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, userB, ranked[0].UserID)
	assert.Equal(t, userA, ranked[1].UserID)
	assert.Equal(t, userC, ranked[2].UserID)
	assert.Zero(t, ranked[2].Score, "member without a score row ranks with 0")
}

func TestService_UserPosition(t *testing.T) {
	svc, groupID := newFixture()

	pos, err := svc.UserPosition(context.Background(), nil, groupID, userA)
	require.NoError(t, err)
	assert.Equal(t, 2, pos.Position)

	_, err = svc.UserPosition(context.Background(), nil, groupID, userD)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound), "pending member has no position")
}

func TestService_PointsFirstPlace(t *testing.T) {
	svc, groupID := newFixture()
	pts, err := svc.PointsFirstPlace(context.Background(), nil, groupID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, pts)
}

func TestService_PointsToFirstPlace(t *testing.T) {
	svc, groupID := newFixture()

	gap, err := svc.PointsToFirstPlace(context.Background(), nil, groupID, userA)
	require.NoError(t, err)
	assert.Equal(t, 180.0, gap)

	gap, err = svc.PointsToFirstPlace(context.Background(), nil, groupID, userB)
	require.NoError(t, err)
	assert.Zero(t, gap)
}

func TestService_UnknownGroup(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.Rank(context.Background(), nil, uuid.New())
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestService_RepositoryError(t *testing.T) {
	groups := &fakeGroups{err: errors.New("db down")}
	svc := NewService(groups, &fakeScores{})
	_, err := svc.PointsFirstPlace(context.Background(), nil, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
