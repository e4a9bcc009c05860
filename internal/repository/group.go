package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
)

type groupRepo struct{}

// NewGroupRepository returns a pgx-backed GroupRepository.
func NewGroupRepository() GroupRepository {
	return &groupRepo{}
}

func (r *groupRepo) FindByID(ctx context.Context, db DBTX, groupID uuid.UUID) (*domain.Group, error) {
	g := &domain.Group{}
	err := db.QueryRow(ctx,
		`SELECT id, client_id, name, main FROM groups WHERE id = $1`, groupID,
	).Scan(&g.ID, &g.ClientID, &g.Name, &g.Main)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	return g, nil
}

func (r *groupRepo) ListMembers(ctx context.Context, db DBTX, groupID uuid.UUID) ([]domain.GroupMembership, error) {
	rows, err := db.Query(ctx, `
		SELECT group_id, user_id, pending, is_admin
		FROM group_members WHERE group_id = $1
		ORDER BY user_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GroupMembership, error) {
		var m domain.GroupMembership
		err := row.Scan(&m.GroupID, &m.UserID, &m.Pending, &m.IsAdmin)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan group member: %w", err)
	}
	return members, nil
}

func (r *groupRepo) FindMainGroupsForUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Group, error) {
	rows, err := db.Query(ctx, `
		SELECT g.id, g.client_id, g.name, g.main
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1 AND g.main AND NOT m.pending
		ORDER BY g.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("find main groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Group, error) {
		var g domain.Group
		err := row.Scan(&g.ID, &g.ClientID, &g.Name, &g.Main)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan main group: %w", err)
	}
	return groups, nil
}
