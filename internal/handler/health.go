package handler

import (
	"context"
	"net/http"

	"github.com/xpump/platform/internal/domain"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SettingsStatus reports whether a usable settings snapshot is loaded.
type SettingsStatus interface {
	Current() (*domain.Settings, error)
}

// HealthHandler reports database reachability and whether scoring is enabled.
func HealthHandler(db Pinger, settings SettingsStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		resp := map[string]interface{}{"status": "healthy", "scoring": "enabled"}
		if cfg, err := settings.Current(); err != nil {
			resp["scoring"] = "disabled"
		} else {
			resp["settings_version"] = cfg.Version
		}
		RespondJSON(w, http.StatusOK, resp)
	}
}
