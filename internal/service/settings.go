package service

import (
	"context"
	"log/slog"

	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/repository"
)

// SettingsReloader is a SettingsSource that can re-read the active row.
type SettingsReloader interface {
	SettingsSource
	Reload(ctx context.Context) (*domain.Settings, error)
}

// SettingsService is the admin surface over the gamification settings.
type SettingsService struct {
	db       Database
	provider SettingsReloader
	repo     repository.SettingsRepository
	outbox   repository.OutboxRepository
	logger   *slog.Logger
}

func NewSettingsService(db Database, provider SettingsReloader, repo repository.SettingsRepository, outbox repository.OutboxRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{db: db, provider: provider, repo: repo, outbox: outbox, logger: logger}
}

// Get returns the snapshot currently used for scoring.
func (s *SettingsService) Get() (*domain.Settings, error) {
	return s.provider.Current()
}

// Reload re-reads the active row and announces the swap.
func (s *SettingsService) Reload(ctx context.Context) (*domain.Settings, error) {
	cfg, err := s.provider.Reload(ctx)
	if err != nil {
		return nil, internalUnlessApp("reload settings", err)
	}
	if err := s.outbox.Insert(ctx, s.db, domain.NewSettingsReloadedEvent(cfg)); err != nil {
		s.logger.Error("settings reload event not recorded", "error", err)
	}
	return cfg, nil
}

// Apply validates next, makes it the active row and reloads the snapshot.
func (s *SettingsService) Apply(ctx context.Context, next domain.Settings) (*domain.Settings, error) {
	if err := next.Validate(); err != nil {
		return nil, domain.ErrInvalidConfiguration(err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	stored, err := s.repo.Activate(ctx, tx, &next)
	if err != nil {
		return nil, domain.ErrInternal("activate settings", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewSettingsReloadedEvent(stored)); err != nil {
		return nil, domain.ErrInternal("insert settings event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	s.logger.Info("settings activated", "settings_id", stored.ID, "version", stored.Version)

	cfg, err := s.provider.Reload(ctx)
	if err != nil {
		return nil, internalUnlessApp("reload settings", err)
	}
	return cfg, nil
}
