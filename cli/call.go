package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewCallCmd creates the "call" subcommand for one-shot tool invocations
// without an MCP client.
func NewCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool once and print the envelope",
		Long:  "Invoke one of spawn, getStatus, getResults, or list against the configured backend and print the resulting envelope to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCall,
	}

	cmd.Flags().String("config", "", "Path to researchbridge.yaml")
	cmd.Flags().StringP("args", "a", "", "Tool arguments as inline JSON object")
	cmd.Flags().StringP("args-file", "f", "", "Tool arguments from a JSON file")

	return cmd
}

func runCall(cmd *cobra.Command, posArgs []string) error {
	loadEnvFile()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)

	adapter, _, err := buildAdapter(cfg, logger)
	if err != nil {
		return err
	}

	toolArgs, err := resolveCallArgs(cmd)
	if err != nil {
		return err
	}

	envelope := adapter.Dispatch(cmd.Context(), posArgs[0], toolArgs)
	fmt.Fprintln(cmd.OutOrStdout(), envelope)
	return nil
}

// resolveCallArgs merges --args and --args-file, inline JSON winning on
// conflict.
func resolveCallArgs(cmd *cobra.Command) (map[string]any, error) {
	args := map[string]any{}

	if path, _ := cmd.Flags().GetString("args-file"); strings.TrimSpace(path) != "" {
		// #nosec G304 -- path supplied explicitly by the operator.
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, exitError(exitInputParse, "reading args file: %v", err)
		}
		if err := json.Unmarshal(data, &args); err != nil {
			return nil, exitError(exitInputParse, "parsing args file %q: %v", path, err)
		}
	}

	if inline, _ := cmd.Flags().GetString("args"); strings.TrimSpace(inline) != "" {
		overrides := map[string]any{}
		if err := json.Unmarshal([]byte(inline), &overrides); err != nil {
			return nil, exitError(exitInputParse, "parsing --args: %v", err)
		}
		for key, value := range overrides {
			args[key] = value
		}
	}

	return args, nil
}
