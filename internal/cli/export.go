package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/txpredict/internal/config"
	"github.com/danielpatrickdp/txpredict/internal/feed"
	"github.com/danielpatrickdp/txpredict/internal/replay"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Snapshot the upstream feed into a replay fixture",
		RunE:  runExport,
	}

	cmd.Flags().String("feed-url", "", "Upstream history endpoint (default: feed.url from config)")
	cmd.Flags().StringP("out", "o", "", "Output fixture JSON path (required)")
	cmd.Flags().Int("seed", replay.DefaultReplayConfig().Seed, "Records the replay passes to LoadInitial")
	cmd.Flags().String("description", "", "Fixture description")
	_ = cmd.MarkFlagRequired("out")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	flags := &config.Config{}
	flags.Feed.URL, _ = cmd.Flags().GetString("feed-url")
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if cfg.Feed.URL == "" {
		return fmt.Errorf("feed url is required (--feed-url or feed.url)")
	}
	out, _ := cmd.Flags().GetString("out")
	seed, _ := cmd.Flags().GetInt("seed")
	desc, _ := cmd.Flags().GetString("description")

	return exportFixture(cmd.Context(), cmd.OutOrStdout(), cfg.PollerConfig(), out, seed, desc)
}

// exportFixture fetches one upstream batch and writes it as a fixture.
func exportFixture(ctx context.Context, w io.Writer, fc feed.Config, out string, seed int, desc string) error {
	payloads, err := feed.NewFetcher(fc, nil).Fetch(ctx)
	if err != nil {
		return err
	}
	records := feed.Normalize(payloads)
	if len(records) == 0 {
		return feed.ErrEmptyBatch
	}
	if desc == "" {
		desc = fmt.Sprintf("feed snapshot, sessions %d-%d", records[0].Session, records[len(records)-1].Session)
	}

	f := &replay.Fixture{
		Description: desc,
		Seed:        max(0, min(seed, len(records))),
		Records:     replay.FromRecords(records),
	}
	if err := replay.SaveFixture(out, f); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d records to %s\n", len(records), out)
	return nil
}
