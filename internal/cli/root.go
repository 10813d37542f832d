// Package cli implements the txpredict commands.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/txpredict/internal/config"
)

var configPath string

// errExpectation marks a run that completed but missed its baseline.
var errExpectation = errors.New("expectations not met")

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "txpredict",
	Short: "Tai/Xiu outcome prediction ensemble",
	Long: "Polls a Tai/Xiu result feed, predicts the next outcome with a weighted " +
		"ensemble of sequence heuristics and serves predictions over gRPC.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $TXPREDICT_CONFIG or ./"+config.DefaultPath+")")
}

// loadConfig resolves the config file, environment and the given flag
// overrides.
func loadConfig(flags *config.Config) (*config.Config, error) {
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errExpectation):
		return 1
	default:
		return 2
	}
}
