// Package cli implements the researchbridge command surface: serve runs the
// MCP server, call performs one-shot tool invocations.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	researchbridge "github.com/petal-labs/researchbridge"
	"github.com/petal-labs/researchbridge/backend"
	"github.com/petal-labs/researchbridge/config"
	rbotel "github.com/petal-labs/researchbridge/otel"
)

const (
	exitSuccess    = 0
	exitConfig     = 1
	exitRuntime    = 2
	exitInputParse = 4
)

// loadEnvFile picks up a local .env before config resolution so that
// RESEARCHBRIDGE_* overrides declared there take effect.
func loadEnvFile() {
	_ = godotenv.Load(".env")
}

// loadConfig resolves the effective configuration from the --config flag,
// discovery, and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicitPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(explicitPath)
	if err != nil {
		return config.Config{}, exitError(exitConfig, "loading config: %v", err)
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Logs go to stderr: stdout belongs to the stdio MCP transport.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// buildAdapter assembles the backend client, observer, and dispatcher from
// resolved configuration.
func buildAdapter(cfg config.Config, logger *slog.Logger) (*researchbridge.Adapter, *backend.Client, error) {
	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, exitError(exitConfig, "creating backend client: %v", err)
	}

	observer, err := rbotel.NewDispatchObserver(
		otelapi.GetMeterProvider().Meter("researchbridge/adapter"),
		otelapi.GetTracerProvider().Tracer("researchbridge/adapter"),
	)
	if err != nil {
		return nil, nil, exitError(exitRuntime, "initializing dispatch observability: %v", err)
	}

	adapter, err := researchbridge.NewAdapter(researchbridge.AdapterConfig{
		Backend:  client,
		Logger:   logger,
		Observer: observer,
	})
	if err != nil {
		return nil, nil, exitError(exitRuntime, "creating adapter: %v", err)
	}
	return adapter, client, nil
}
