package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpump/platform/internal/auth"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/settings"
)

const testSecret = "cli-test-secret-at-least-32-characters"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	tokenRealm, tokenSubject, tokenEmail, tokenRole = string(auth.RealmUser), "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"settings", "apply"},
		{"settings", "validate"},
		{"streaks", "sweep"},
		{"streaks", "frequency"},
		{"ledger", "verify"},
		{"events", "tail"},
		{"token"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestSettingsValidate(t *testing.T) {
	out, err := run(t, "settings", "validate", filepath.Join("..", "..", "configs", "settings.example.toml"))
	require.NoError(t, err)
	assert.Contains(t, out, "settings.example.toml: ok")
	assert.Contains(t, out, "max_level")
}

func TestSettingsValidate_Missing(t *testing.T) {
	_, err := run(t, "settings", "validate", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSettingsDefaults(t *testing.T) {
	out, err := run(t, "settings", "defaults")
	require.NoError(t, err)

	s, err := settings.Decode(strings.NewReader(out))
	require.NoError(t, err)
	def := domain.DefaultSettings()
	assert.Equal(t, def.XPBase, s.XPBase)
	assert.Equal(t, def.WorkoutStreakMultipliers, s.WorkoutStreakMultipliers)
}

func TestToken_User(t *testing.T) {
	subject := uuid.New()
	out, err := run(t, "token", "--subject", subject.String(), "--email", "a@example.com")
	require.NoError(t, err)

	mgr := auth.NewJWTManager(testSecret, 0, 0)
	claims, err := mgr.ValidateTokenForRealm(strings.TrimSpace(out), auth.RealmUser)
	require.NoError(t, err)
	assert.Equal(t, subject.String(), claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestToken_Admin(t *testing.T) {
	out, err := run(t, "token", "--realm", "admin", "--role", auth.RoleAdmin)
	require.NoError(t, err)

	mgr := auth.NewJWTManager(testSecret, 0, 0)
	claims, err := mgr.ValidateTokenForRealm(strings.TrimSpace(out), auth.RealmAdmin)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestToken_Rejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"admin without role", []string{"token", "--realm", "admin"}},
		{"role on user realm", []string{"token", "--role", auth.RoleAdmin}},
		{"unknown realm", []string{"token", "--realm", "partner"}},
		{"bad subject", []string{"token", "--subject", "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestMigrateDown_BadSteps(t *testing.T) {
	_, err := run(t, "migrate", "down", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid step count")
}

func TestStreaksSweep_BadTime(t *testing.T) {
	_, err := run(t, "streaks", "sweep", "--at", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")
	sweepAt = ""
}
