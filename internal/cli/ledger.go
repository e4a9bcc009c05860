package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	ledgerUser    string
	ledgerEntries bool
)

var errLedgerMismatch = errors.New("ledger verification failed")

func init() {
	ledgerVerifyCmd.Flags().StringVar(&ledgerUser, "user", "", "user id (required)")
	ledgerVerifyCmd.Flags().BoolVar(&ledgerEntries, "entries", false, "also print the xp entries")
	_ = ledgerVerifyCmd.MarkFlagRequired("user")

	ledgerCmd.AddCommand(ledgerVerifyCmd)
	rootCmd.AddCommand(ledgerCmd)
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Audit the xp ledger",
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay a user's xp entries and compare against the stored score",
	Args:  cobra.NoArgs,
	RunE:  runLedgerVerify,
}

func runLedgerVerify(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(ledgerUser)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	e, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.services.Audit.Verify(cmd.Context(), userID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "user\t%s\n", userID)
	fmt.Fprintf(w, "entries\t%d\n", res.EntryCount)
	fmt.Fprintf(w, "replayed score\t%.2f\n\n", res.Replayed)
	fmt.Fprintln(w, "CHECK\tRESULT\tDETAIL")
	for _, c := range res.Invariants {
		result := "ok"
		if !c.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, result, c.Detail)
	}

	if ledgerEntries {
		entries, err := e.services.Audit.History(cmd.Context(), userID)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "\nID\tTYPE\tSOURCE\tAMOUNT\tSCORE\tLEVEL\tAT")
		for _, en := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%d\t%s\n",
				en.ID, en.Type, en.Source, en.Amount, en.ScoreAfter, en.LevelAfter,
				en.CreatedAt.Format("2006-01-02 15:04"))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !res.AllPassed {
		return errLedgerMismatch
	}
	return nil
}
