package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runx-dev/runx/internal/cache"
)

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "Show recent runs",
	SilenceUsage: true,
	RunE:         runHistory,
}

func init() {
	historyCmd.Flags().IntP("count", "n", 20, "Number of runs to show")
	historyCmd.Flags().Bool("clear", false, "Clear the run history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := cache.Open("", 0)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	history, err := cache.OpenHistory(store.Dir())
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer history.Close()

	if clear, _ := cmd.Flags().GetBool("clear"); clear {
		if err := history.Clear(); err != nil {
			return err
		}

		fmt.Println("History cleared")
		return nil
	}

	count, _ := cmd.Flags().GetInt("count")

	runs, err := history.Recent(count)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tSOURCE\tLANGUAGE\tSTATUS\tEXIT\tDURATION\tCACHE")

	for _, run := range runs {
		hit := ""
		if run.CacheHit {
			hit = "hit"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			run.Timestamp.Format(time.DateTime), run.Source, run.Language,
			run.Status, run.ExitCode, run.Duration.Round(time.Millisecond), hit)
	}

	return w.Flush()
}
