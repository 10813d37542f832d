package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/txpredict/internal/audit"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/replay"
	"github.com/danielpatrickdp/txpredict/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a fixture through a fresh session",
		Long: "Replay loads the fixture's first seed records, pushes the rest one at a time " +
			"and prints predicted against actual for every step. Exits 1 when the fixture's " +
			"expectations are not met.",
		RunE: runReplay,
	}

	cmd.Flags().StringP("fixture", "x", "", "Fixture JSON path (required)")
	cmd.Flags().String("audit-db", "", "Also record the replay into this audit log")
	cmd.Flags().BoolP("quiet", "q", false, "Print only the summary")
	_ = cmd.MarkFlagRequired("fixture")

	RootCmd.AddCommand(cmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("fixture")
	dbPath, _ := cmd.Flags().GetString("audit-db")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return replayFixture(cmd.OutOrStdout(), path, dbPath, quiet)
}

// replayFixture runs the fixture at path and prints the comparison table.
// It returns errExpectation when the fixture's baseline is missed.
func replayFixture(w io.Writer, path, dbPath string, quiet bool) error {
	f, err := replay.LoadFixture(path)
	if err != nil {
		return err
	}

	var opts []session.Option
	if dbPath != "" {
		store, err := audit.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer store.Close()
		if _, err := store.BeginRun(fmt.Sprintf(`{"fixture":%q}`, path)); err != nil {
			return fmt.Errorf("begin audit run: %w", err)
		}
		opts = append(opts, session.WithSink(store), session.WithWeightRecorder(store))
	}

	results, final := replay.Replay(f.ToRecords(), f.ToReplayConfig(), opts...)
	sum := replay.Summarize(results, final)

	if f.Description != "" {
		fmt.Fprintf(w, "%s\n\n", f.Description)
	}
	if !quiet {
		printSteps(w, results)
	}
	fmt.Fprintf(w, "\nSummary: %d pushed, %d scored, %d win, %d loss (%.2f%%), %d updates\n",
		sum.TotalSteps, sum.Scored, sum.Wins, sum.Losses, sum.WinRate(), sum.Updates)
	fmt.Fprintf(w, "Next: session %d -> %s at %.2f\n",
		final.Prediction.TargetSession, final.Prediction.Category, final.Prediction.Confidence)

	failures := checkExpected(f.Expected, sum)
	for _, msg := range failures {
		fmt.Fprintf(w, "FAIL: %s\n", msg)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%s: %w", path, errExpectation)
	}
	return nil
}

func printSteps(w io.Writer, results []replay.ReplayResult) {
	fmt.Fprintf(w, "%-12s| %-9s| %-7s| %-6s| %s\n", "Session", "Predicted", "Actual", "Conf", "Match")
	fmt.Fprintf(w, "%-12s+%-10s+%-8s+%-7s+%s\n",
		"------------", "----------", "--------", "-------", "------")
	for _, r := range results {
		predicted, conf, match := "-", "-", "-"
		if r.Scored {
			predicted = string(r.Predicted)
			conf = fmt.Sprintf("%.2f", r.Confidence)
			match = "DIFF"
			if r.Hit {
				match = "OK"
			}
		}
		fmt.Fprintf(w, "%-12d| %-9s| %-7s| %-6s| %s\n", r.Session, predicted, r.Actual, conf, match)
	}
}

// checkExpected compares a summary against the fixture baseline.
func checkExpected(exp replay.FixtureExpected, sum replay.ReplaySummary) []string {
	var out []string
	if exp.Scored > 0 && sum.Scored != exp.Scored {
		out = append(out, fmt.Sprintf("scored %d, expected %d", sum.Scored, exp.Scored))
	}
	if exp.MinWins > 0 && sum.Wins < exp.MinWins {
		out = append(out, fmt.Sprintf("wins %d, expected at least %d", sum.Wins, exp.MinWins))
	}
	if exp.FinalCategory != "" && outcome.Category(exp.FinalCategory) != sum.Final.Prediction.Category {
		out = append(out, fmt.Sprintf("final prediction %s, expected %s", sum.Final.Prediction.Category, exp.FinalCategory))
	}
	return out
}
