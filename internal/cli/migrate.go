package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xpump/platform/internal/infra"
)

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
	Long: `Runs the SQL migrations under db/migrations. Set MIGRATIONS_DIR when
running outside the repository.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(mg *infra.Migrator) error {
			if err := mg.Up(); err != nil {
				return err
			}
			return printVersion(cmd, mg)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down N",
	Short: "Roll back the last N migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return withMigrator(func(mg *infra.Migrator) error {
			if err := mg.Down(steps); err != nil {
				return err
			}
			return printVersion(cmd, mg)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied migration version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(mg *infra.Migrator) error {
			return printVersion(cmd, mg)
		})
	},
}

func withMigrator(fn func(*infra.Migrator) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	mg, err := infra.NewMigrator(cfg.DSN(), logger)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func printVersion(cmd *cobra.Command, mg *infra.Migrator) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", v, state)
	return nil
}
