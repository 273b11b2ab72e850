package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petal-labs/researchbridge/cli"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "researchbridge",
	Short:        "MCP adapter for the research execution backend",
	Long:         "ResearchBridge exposes a research execution backend as MCP tools: spawn, getStatus, getResults, and list.",
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("researchbridge version %s\n", version))

	rootCmd.AddCommand(cli.NewServeCmd(version))
	rootCmd.AddCommand(cli.NewCallCmd())
}
