package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/ledger"
	"github.com/xpump/platform/internal/repository"
)

// AuditService exposes the xp entry trail and replays it against the score row.
type AuditService struct {
	db       repository.DBTX
	settings SettingsSource
	scores   repository.ScoreRepository
	entries  repository.XPEntryRepository
}

func NewAuditService(db repository.DBTX, settings SettingsSource, scores repository.ScoreRepository, entries repository.XPEntryRepository) *AuditService {
	return &AuditService{db: db, settings: settings, scores: scores, entries: entries}
}

// History returns the user's xp entries, oldest first.
func (s *AuditService) History(ctx context.Context, userID uuid.UUID) ([]domain.XPEntry, error) {
	entries, err := s.entries.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("list xp entries", err)
	}
	return entries, nil
}

// Verify replays the user's entries under the current settings.
func (s *AuditService) Verify(ctx context.Context, userID uuid.UUID) (*ledger.VerifyResult, error) {
	cfg, err := s.settings.Current()
	if err != nil {
		return nil, err
	}
	state, err := s.scores.Find(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("load score", err)
	}
	entries, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil && len(entries) == 0 {
		return nil, domain.ErrNotFound("score", userID.String())
	}

	res := ledger.Verify(cfg, state, entries)
	res.UserID = userID
	return &res, nil
}
