package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/txpredict/internal/audit"
	"github.com/danielpatrickdp/txpredict/internal/config"
	"github.com/danielpatrickdp/txpredict/internal/feed"
	"github.com/danielpatrickdp/txpredict/internal/rpc"
	"github.com/danielpatrickdp/txpredict/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll the feed and serve predictions over gRPC",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "gRPC listen address")
	cmd.Flags().String("feed-url", "", "Upstream history endpoint")
	cmd.Flags().String("audit-db", "", "SQLite audit log path")
	cmd.Flags().Bool("no-audit", false, "Disable the audit log")
	cmd.Flags().Bool("parallel", false, "Evaluate predictors concurrently")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := &config.Config{}
	flags.Server.Addr, _ = cmd.Flags().GetString("addr")
	flags.Feed.URL, _ = cmd.Flags().GetString("feed-url")
	flags.Audit.Path, _ = cmd.Flags().GetString("audit-db")
	flags.Ensemble.Parallel, _ = cmd.Flags().GetBool("parallel")

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if noAudit, _ := cmd.Flags().GetBool("no-audit"); noAudit {
		cfg.Audit.Path = ""
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, cfg, lis)
}

// serve wires the session to its audit log, the feed poller and the gRPC
// server, and blocks until ctx is done or one of them fails.
func serve(ctx context.Context, cfg *config.Config, lis net.Listener) error {
	if cfg.Feed.URL == "" {
		lis.Close()
		return errors.New("feed url is required (feed.url, TXPREDICT_FEED_URL or --feed-url)")
	}

	var opts []session.Option
	if cfg.Audit.Path != "" {
		store, err := audit.NewStore(cfg.Audit.Path)
		if err != nil {
			lis.Close()
			return fmt.Errorf("open audit log: %w", err)
		}
		defer store.Close()

		meta, _ := json.Marshal(cfg)
		run, err := store.BeginRun(string(meta))
		if err != nil {
			lis.Close()
			return fmt.Errorf("begin audit run: %w", err)
		}
		log.Printf("[AUDIT] run %s -> %s", run.RunID, cfg.Audit.Path)
		opts = append(opts, session.WithSink(store), session.WithWeightRecorder(store))
	}

	sess := session.New(cfg.SessionConfig(), opts...)
	defer sess.Close()

	pc := cfg.PollerConfig()
	poller := feed.NewPoller(pc, feed.NewFetcher(pc, nil), sess)
	srv := rpc.NewServer(rpc.NewService(sess, cfg.ServiceConfig()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	pollErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx, lis, cfg.Server.ShutdownGrace) }()
	go func() { pollErr <- poller.Run(ctx) }()
	log.Printf("[RPC] serving %s on %s, feed %s", rpc.ServiceName, lis.Addr(), pc.URL)

	var err error
	select {
	case err = <-serveErr:
		cancel()
		<-pollErr
	case err = <-pollErr:
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		cancel()
		if serr := <-serveErr; err == nil {
			err = serr
		}
	}
	log.Printf("[RPC] stopped after %d records", sess.Len())
	return err
}
