// Package settings holds the process-wide gamification settings snapshot.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/repository"
)

var errNotLoaded = errors.New("settings not loaded")

type snapshot struct {
	settings *domain.Settings
	err      error
}

// Provider serves an immutable settings snapshot. Callers read it once per
// operation; Reload swaps the pointer atomically.
type Provider struct {
	repo   repository.SettingsRepository
	db     repository.DBTX
	logger *slog.Logger

	current atomic.Pointer[snapshot]

	mu       sync.Mutex
	onReload []func(*domain.Settings)
}

// NewProvider creates a provider backed by the settings table. Call Reload before use.
func NewProvider(repo repository.SettingsRepository, db repository.DBTX, logger *slog.Logger) *Provider {
	p := &Provider{repo: repo, db: db, logger: logger}
	p.current.Store(&snapshot{err: domain.ErrInvalidConfiguration(errNotLoaded)})
	return p
}

// NewStaticProvider serves s without a database. Reload is a no-op.
func NewStaticProvider(s domain.Settings, logger *slog.Logger) (*Provider, error) {
	if err := s.Validate(); err != nil {
		return nil, domain.ErrInvalidConfiguration(err)
	}
	p := &Provider{logger: logger}
	p.current.Store(&snapshot{settings: &s})
	return p, nil
}

// Current returns the active snapshot, or INVALID_CONFIGURATION when the last
// load failed. The returned value must not be mutated.
func (p *Provider) Current() (*domain.Settings, error) {
	snap := p.current.Load()
	if snap.err != nil {
		return nil, snap.err
	}
	return snap.settings, nil
}

// OnReload registers fn to run after every successful reload.
func (p *Provider) OnReload(fn func(*domain.Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReload = append(p.onReload, fn)
}

// Reload reads the active row and swaps the snapshot. An invalid or missing row
// replaces the snapshot with an error so scoring stops until the next good reload.
func (p *Provider) Reload(ctx context.Context) (*domain.Settings, error) {
	if p.repo == nil {
		return p.Current()
	}

	s, err := p.repo.FindActive(ctx, p.db)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var loadErr error
	switch {
	case s == nil:
		loadErr = domain.ErrInvalidConfiguration(errors.New("no active settings row"))
	default:
		if verr := s.Validate(); verr != nil {
			loadErr = domain.ErrInvalidConfiguration(verr)
		}
	}
	if loadErr != nil {
		p.current.Store(&snapshot{err: loadErr})
		p.logger.Error("settings rejected, scoring disabled", "error", loadErr)
		return nil, loadErr
	}

	p.current.Store(&snapshot{settings: s})
	p.logger.Info("settings loaded", "settings_id", s.ID, "version", s.Version)

	p.mu.Lock()
	hooks := append([]func(*domain.Settings){}, p.onReload...)
	p.mu.Unlock()
	for _, fn := range hooks {
		fn(s)
	}
	return s, nil
}
