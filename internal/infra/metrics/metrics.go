// Package metrics provides Prometheus metrics for the gamification engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─── Scoring ────────────────────────────────────────────────────────────────

// XPAwarded tracks XP granted by activity kind.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded.",
}, []string{"kind"})

// XPRevoked tracks XP removed when activities are deleted.
var XPRevoked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "xp_revoked_total",
	Help:      "Total XP revoked.",
}, []string{"kind"})

// LevelUps counts level increases.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "level_ups_total",
	Help:      "Total level-up transitions.",
})

// DailyCapHits counts workouts whose award was cut by the daily cap.
var DailyCapHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "daily_cap_hits_total",
	Help:      "Workouts truncated or zeroed by the daily XP cap.",
})

// ScoringErrors counts failed scoring attempts by error code.
var ScoringErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "scoring_errors_total",
	Help:      "Activity scoring failures.",
}, []string{"kind", "code"})

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakResets counts streaks that were broken, by streak kind.
var StreakResets = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "streak_resets_total",
	Help:      "Streaks reset to zero.",
}, []string{"kind"})

// ─── Outbox ─────────────────────────────────────────────────────────────────

// OutboxPublished counts outbox events delivered to Kafka.
var OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "outbox_published_total",
	Help:      "Outbox events published.",
}, []string{"topic"})

// CheckinsThrottled counts check-ins rejected by the per-user rate limiter.
var CheckinsThrottled = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "checkins_throttled_total",
	Help:      "Check-ins rejected by the rate limiter.",
})

// OutboxSkipped counts publishes skipped because a topic's circuit was open.
var OutboxSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "xpump",
	Name:      "outbox_skipped_total",
	Help:      "Outbox publishes skipped by an open circuit.",
}, []string{"topic"})

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
