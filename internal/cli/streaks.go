package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	sweepAt       string
	frequencyUser string
)

func init() {
	streaksSweepCmd.Flags().StringVar(&sweepAt, "at", "", "reference time (RFC 3339), defaults to now")
	streaksFrequencyCmd.Flags().StringVar(&frequencyUser, "user", "", "user id (required)")
	_ = streaksFrequencyCmd.MarkFlagRequired("user")

	streaksCmd.AddCommand(streaksSweepCmd, streaksFrequencyCmd)
	rootCmd.AddCommand(streaksCmd)
}

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Maintain workout streaks",
}

var streaksSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reset workout streaks whose tracked week ended short of its target",
	Args:  cobra.NoArgs,
	RunE:  runStreaksSweep,
}

var streaksFrequencyCmd = &cobra.Command{
	Use:   "frequency N",
	Short: "Set a user's weekly workout target (1-7)",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreaksFrequency,
}

func runStreaksSweep(cmd *cobra.Command, args []string) error {
	ref := time.Now()
	if sweepAt != "" {
		t, err := time.Parse(time.RFC3339, sweepAt)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		ref = t
	}

	e, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.services.Streaks.SweepWorkoutStreaks(cmd.Context(), ref)
	fmt.Fprintf(cmd.OutOrStdout(), "checked %d, reset %d, failed %d\n", res.Checked, res.Reset, res.Failed)
	return err
}

func runStreaksFrequency(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(frequencyUser)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid frequency %q", args[0])
	}

	e, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.services.Streaks.SetWorkoutFrequency(cmd.Context(), userID, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user %s: %d workouts per week, streak %d\n", userID, st.Frequency, st.Current)
	return nil
}
