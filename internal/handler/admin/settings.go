// Package admin holds the admin realm endpoints.
package admin

import (
	"context"
	"net/http"

	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/handler"
)

// SettingsService is the admin surface over the gamification settings.
type SettingsService interface {
	Get() (*domain.Settings, error)
	Reload(ctx context.Context) (*domain.Settings, error)
}

// SettingsAdminHandler handles /admin/settings.
type SettingsAdminHandler struct {
	svc SettingsService
}

func NewSettingsAdminHandler(svc SettingsService) *SettingsAdminHandler {
	return &SettingsAdminHandler{svc: svc}
}

// Get handles GET /admin/settings.
func (h *SettingsAdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Get()
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}

// Reload handles POST /admin/settings/reload.
func (h *SettingsAdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Reload(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}
