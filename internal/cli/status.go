package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/txpredict/internal/config"
	"github.com/danielpatrickdp/txpredict/internal/rpc"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running server for its prediction and stats",
		RunE:  runStatus,
	}

	cmd.Flags().String("addr", "", "Server address (default: server.addr from config)")
	cmd.Flags().Uint32P("history", "n", 10, "Recent records to show")
	cmd.Flags().Bool("weights", false, "Also show the weight table and each predictor's call")
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Duration("timeout", 5*time.Second, "Per-call timeout")

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	flags := &config.Config{}
	flags.Server.Addr, _ = cmd.Flags().GetString("addr")
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetUint32("history")
	showWeights, _ := cmd.Flags().GetBool("weights")
	jsonOut, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client, err := rpc.Dial(cfg.Server.Addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return printStatus(ctx, cmd.OutOrStdout(), client, n, showWeights, jsonOut)
}

type statusReport struct {
	Prediction rpc.PredictionView `json:"prediction"`
	Stats      rpc.StatsView      `json:"stats"`
	History    []rpc.HistoryItem  `json:"history"`
	Weights    map[string]float64 `json:"weights,omitempty"`
	Opinions   []rpc.OpinionView  `json:"opinions,omitempty"`
}

// printStatus queries client and prints the current state of the server.
func printStatus(ctx context.Context, w io.Writer, client *rpc.Client, n uint32, showWeights, jsonOut bool) error {
	var rep statusReport
	var err error
	if rep.Prediction, err = client.Prediction(ctx); err != nil {
		return err
	}
	if rep.Stats, err = client.Stats(ctx); err != nil {
		return err
	}
	if n > 0 {
		h, err := client.History(ctx, n)
		if err != nil {
			return err
		}
		rep.History = h.Records
	}
	if showWeights {
		wv, err := client.Weights(ctx)
		if err != nil {
			return err
		}
		rep.Weights = wv.Weights
		rep.Opinions = wv.Opinions
	}

	if jsonOut {
		return printJSON(w, rep)
	}

	p := rep.Prediction
	if p.CurrentSession == nil {
		fmt.Fprintf(w, "Prediction: %s\n", p.Result)
	} else {
		fmt.Fprintf(w, "Last: session %d %v = %d (%s)\n", *p.PreviousSession, *p.Dice, *p.Total, p.Result)
		fmt.Fprintf(w, "Next: session %d -> %s (%s)\n", *p.CurrentSession, p.Prediction, p.Confidence)
	}
	s := rep.Stats
	fmt.Fprintf(w, "Stats: %d predictions, %d wins, %d losses, win rate %s\n",
		s.TotalPredictions, s.TotalWins, s.TotalLosses, s.WinRate)

	if len(rep.History) > 0 {
		fmt.Fprint(w, "Recent:")
		for _, r := range rep.History {
			fmt.Fprintf(w, " %s", r.Label)
		}
		fmt.Fprintln(w)
	}
	if len(rep.Weights) > 0 {
		calls := make(map[string]string, len(rep.Opinions))
		for _, op := range rep.Opinions {
			calls[op.ID] = op.Call
		}
		ids := make([]string, 0, len(rep.Weights))
		for id := range rep.Weights {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprintln(w, "Weights:")
		for _, id := range ids {
			fmt.Fprintf(w, "  %-18s %.4f  %s\n", id, rep.Weights[id], calls[id])
		}
	}
	return nil
}
