//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates engine and fixture tables and restores the seeded settings
// row as the only active version. meal_configs keeps its seed rows.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"xp_entries",
		"meals",
		"workouts",
		"meal_streaks",
		"workout_streaks",
		"score_states",
		"group_members",
		"groups",
		"seasons",
		"profiles",
	}
	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}

	_, _ = env.Pool.Exec(ctx, "DELETE FROM settings WHERE version > 1")
	_, _ = env.Pool.Exec(ctx, "UPDATE settings SET active = true WHERE version = 1")
}
