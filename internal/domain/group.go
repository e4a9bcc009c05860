package domain

import "github.com/google/uuid"

// Group is a ranking pool. Main marks the client's primary group.
type Group struct {
	ID       uuid.UUID `json:"id"`
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Main     bool      `json:"main"`
}

// GroupMembership links a user to a group. Pending members never rank.
type GroupMembership struct {
	GroupID uuid.UUID `json:"group_id"`
	UserID  uuid.UUID `json:"user_id"`
	Pending bool      `json:"pending"`
	IsAdmin bool      `json:"is_admin"`
}

// MemberScore is a non-pending member with the score used for ranking.
type MemberScore struct {
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
	Level  int       `json:"level"`
}

// RankedMember is a MemberScore with its 1-based position.
type RankedMember struct {
	Position int `json:"position"`
	MemberScore
}
