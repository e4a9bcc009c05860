package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventXPAwarded        EventType = "gamification.xp.awarded"
	EventXPRevoked        EventType = "gamification.xp.revoked"
	EventLevelUp          EventType = "gamification.level.up"
	EventStreakReset      EventType = "gamification.streak.reset"
	EventSettingsReloaded EventType = "gamification.settings.reloaded"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateUser     AggregateType = "user"
	AggregateSettings AggregateType = "settings"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// OutboxRow is an OutboxDraft as read back by the consumer, with its sequence id.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}
