package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/txpredict/internal/audit"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a run recorded in the audit log",
		RunE:  runInspect,
	}

	cmd.Flags().StringP("db", "d", "", "Audit log path (default: audit.path from config)")
	cmd.Flags().String("run", "", "Run ID (default: newest run)")
	cmd.Flags().IntP("last", "n", 20, "Show N most recent predictions")
	cmd.Flags().Bool("runs", false, "List recorded runs instead")
	cmd.Flags().Bool("json", false, "Output as JSON instead of a table")

	RootCmd.AddCommand(cmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		dbPath = cfg.Audit.Path
	}
	if dbPath == "" {
		return fmt.Errorf("no audit log: pass --db or set audit.path")
	}
	runID, _ := cmd.Flags().GetString("run")
	last, _ := cmd.Flags().GetInt("last")
	listRuns, _ := cmd.Flags().GetBool("runs")
	jsonOut, _ := cmd.Flags().GetBool("json")

	store, err := audit.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	if listRuns {
		return inspectRuns(cmd.OutOrStdout(), store, last, jsonOut)
	}
	return inspectRun(cmd.OutOrStdout(), store, runID, last, jsonOut)
}

// #region runs-mode

type runRow struct {
	RunID     string `json:"run_id"`
	StartedAt string `json:"started_at"`
}

func inspectRuns(w io.Writer, store *audit.Store, limit int, jsonOut bool) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	rows := make([]runRow, len(runs))
	for i, r := range runs {
		rows[i] = runRow{RunID: r.RunID, StartedAt: r.StartedAt.Format(time.RFC3339)}
	}
	if jsonOut {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	fmt.Fprintf(w, "%-26s  %s\n", "Run", "Started")
	for _, r := range rows {
		fmt.Fprintf(w, "%-26s  %s\n", r.RunID, r.StartedAt)
	}
	return nil
}

// #endregion runs-mode

// #region run-mode

type predictionRow struct {
	Session    int64   `json:"target_session"`
	Predicted  string  `json:"predicted"`
	Confidence float64 `json:"confidence"`
	Actual     string  `json:"actual,omitempty"`
	Hit        *bool   `json:"hit,omitempty"`
}

type runReport struct {
	RunID       string             `json:"run_id"`
	StartedAt   string             `json:"started_at"`
	Predictions int                `json:"predictions"`
	Resolved    int                `json:"resolved"`
	Wins        int                `json:"wins"`
	WinRate     float64            `json:"win_rate"`
	Weights     map[string]float64 `json:"weights,omitempty"`
	WeightsAt   int64              `json:"weights_session,omitempty"`
	Recent      []predictionRow    `json:"recent"`
}

func inspectRun(w io.Writer, store *audit.Store, runID string, last int, jsonOut bool) error {
	if runID == "" {
		runs, err := store.ListRuns(1)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs recorded")
		}
		runID = runs[0].RunID
	}

	sum, err := store.Summarize(runID)
	if err != nil {
		return err
	}
	recent, err := store.RecentPredictions(runID, last)
	if err != nil {
		return err
	}

	rep := runReport{
		RunID:       sum.Run.RunID,
		StartedAt:   sum.Run.StartedAt.Format(time.RFC3339),
		Predictions: sum.Predictions,
		Resolved:    sum.Resolved,
		Wins:        sum.Wins,
		WinRate:     sum.WinRate(),
		Recent:      make([]predictionRow, len(recent)),
	}
	if lw := sum.LatestWeights; lw != nil {
		rep.WeightsAt = lw.Session
		rep.Weights = make(map[string]float64, len(lw.Weights))
		for id, v := range lw.Weights {
			rep.Weights[string(id)] = v
		}
	}
	for i, p := range recent {
		row := predictionRow{Session: p.TargetSession, Predicted: p.Predicted, Confidence: p.Confidence, Actual: p.Actual}
		if p.Actual != "" {
			hit := p.Hit
			row.Hit = &hit
		}
		rep.Recent[i] = row
	}

	if jsonOut {
		return printJSON(w, rep)
	}
	printReport(w, rep)
	return nil
}

func printReport(w io.Writer, rep runReport) {
	fmt.Fprintf(w, "Run %s (started %s)\n", rep.RunID, rep.StartedAt)
	fmt.Fprintf(w, "  %d predictions, %d resolved, %d wins (%.2f%%)\n\n",
		rep.Predictions, rep.Resolved, rep.Wins, rep.WinRate)

	if len(rep.Weights) > 0 {
		ids := make([]string, 0, len(rep.Weights))
		for id := range rep.Weights {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return rep.Weights[ids[i]] > rep.Weights[ids[j]] })
		fmt.Fprintf(w, "Weights after session %d:\n", rep.WeightsAt)
		for _, id := range ids {
			fmt.Fprintf(w, "  %-10s %.4f\n", id, rep.Weights[id])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%-12s| %-9s| %-6s| %-7s| %s\n", "Session", "Predicted", "Conf", "Actual", "Match")
	fmt.Fprintf(w, "%-12s+%-10s+%-7s+%-8s+%s\n",
		"------------", "----------", "-------", "--------", "------")
	for _, p := range rep.Recent {
		actual, match := "-", "pending"
		if p.Hit != nil {
			actual = p.Actual
			match = "DIFF"
			if *p.Hit {
				match = "OK"
			}
		}
		fmt.Fprintf(w, "%-12d| %-9s| %-6.2f| %-7s| %s\n", p.Session, p.Predicted, p.Confidence, actual, match)
	}
}

// #endregion run-mode

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
