package main

import (
	"os"

	"github.com/danielpatrickdp/txpredict/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
