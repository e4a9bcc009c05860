package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func userEvent(userID uuid.UUID, evtType EventType, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   userID.String(),
		EventType:     evtType,
		PartitionKey:  userID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewXPChangedEvent records an award or revocation posted by the ledger.
func NewXPChangedEvent(entry *XPEntry) OutboxDraft {
	evtType := EventXPAwarded
	if entry.Type == XPEntryRevoke {
		evtType = EventXPRevoked
	}
	return userEvent(entry.UserID, evtType, entry)
}

// NewLevelUpEvent is consumed by the notification layer.
func NewLevelUpEvent(userID uuid.UUID, oldLevel, newLevel int, score float64) OutboxDraft {
	return userEvent(userID, EventLevelUp, map[string]interface{}{
		"user_id":   userID.String(),
		"old_level": oldLevel,
		"new_level": newLevel,
		"score":     score,
	})
}

// NewStreakResetEvent is emitted when a streak drops to zero or restarts at one.
func NewStreakResetEvent(userID uuid.UUID, kind StreakKind, previous, longest int) OutboxDraft {
	return userEvent(userID, EventStreakReset, map[string]interface{}{
		"user_id":  userID.String(),
		"kind":     kind,
		"previous": previous,
		"longest":  longest,
	})
}

// NewSettingsReloadedEvent announces a settings snapshot swap.
func NewSettingsReloadedEvent(s *Settings) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"settings_id": s.ID,
		"version":     s.Version,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSettings,
		AggregateID:   "active",
		EventType:     EventSettingsReloaded,
		PartitionKey:  "settings",
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
