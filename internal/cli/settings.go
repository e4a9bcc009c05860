package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/settings"
)

func init() {
	settingsCmd.AddCommand(settingsValidateCmd, settingsApplyCmd, settingsShowCmd, settingsDefaultsCmd)
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and roll out gamification settings",
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a TOML settings file without touching the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
		return printSettings(cmd.OutOrStdout(), &s)
	},
}

var settingsApplyCmd = &cobra.Command{
	Use:   "apply FILE",
	Short: "Activate a TOML settings file as the next settings version",
	Long: `Validates FILE, stores it as a new settings version and marks it active.
Running API instances pick it up on their next reload.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsApply,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active settings as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.services.SettingsAdmin.Get()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# version %d\n", s.Version)
		return settings.Encode(cmd.OutOrStdout(), s)
	},
}

var settingsDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default settings as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := domain.DefaultSettings()
		return settings.Encode(cmd.OutOrStdout(), &s)
	},
}

func runSettingsApply(cmd *cobra.Command, args []string) error {
	s, err := settings.LoadFile(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.Close()

	active, err := e.services.SettingsAdmin.Apply(cmd.Context(), s)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "settings version %d active\n", active.Version)
	return nil
}

func printSettings(out io.Writer, s *domain.Settings) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "xp_base\t%g\n", s.XPBase)
	fmt.Fprintf(w, "exponential_factor\t%g\n", s.ExponentialFactor)
	fmt.Fprintf(w, "max_level\t%d\n", s.MaxLevel)
	fmt.Fprintf(w, "workout\t%g XP per %d min, cap %g/day\n", s.WorkoutXP, s.WorkoutMinutesBase, s.MaxWorkoutXPPerDay)
	fmt.Fprintf(w, "meal\t%g XP\n", s.MealXP)
	fmt.Fprintf(w, "workout tiers\t%d\n", len(s.WorkoutStreakMultipliers))
	fmt.Fprintf(w, "meal tiers\t%d\n", len(s.MealStreakMultipliers))
	fmt.Fprintf(w, "season bonus\t%g%% within %g%% of first, last %g months\n",
		s.SeasonBonusPercentage, s.PercentageFromFirstPosition, s.MonthsToEndSeason)
	return w.Flush()
}
