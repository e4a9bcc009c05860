// Package cli implements xpumpctl, the operator command line for the
// gamification engine. Commands share the API's environment configuration.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/xpump/platform/internal/app"
	"github.com/xpump/platform/internal/infra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "xpumpctl",
	Short: "xpumpctl manages the xpump gamification engine",
	Long: `xpumpctl runs operator tasks against the gamification database:
schema migrations, settings rollout, streak sweeps, ledger audits and
event inspection. Connection settings come from the same environment
variables the API reads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is the per-invocation state shared by commands that touch the database.
type env struct {
	cfg      *infra.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	services *app.Services
}

func (e *env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

func loadConfig() (*infra.Config, *slog.Logger, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// openEnv connects to Postgres and wires services. When withSettings is set
// the active settings row must load, otherwise the command fails.
func openEnv(ctx context.Context, withSettings bool) (*env, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	e := &env{cfg: cfg, logger: logger, pool: pool}

	e.services, err = app.NewServices(pool, cfg, logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("wire services: %w", err)
	}
	if withSettings {
		if _, err := e.services.Settings.Reload(ctx); err != nil {
			e.Close()
			return nil, fmt.Errorf("load settings: %w", err)
		}
	}
	return e, nil
}
