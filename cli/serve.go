package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/researchbridge/backend"
	"github.com/petal-labs/researchbridge/mcpserver"
	rbotel "github.com/petal-labs/researchbridge/otel"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, version)
		},
	}

	cmd.Flags().String("config", "", "Path to researchbridge.yaml")
	cmd.Flags().String("http-addr", "", "Also serve MCP over SSE on this address, e.g. :8765")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 0, "HTTP write timeout (0 disables, required for SSE)")

	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	loadEnvFile()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("http-addr"); addr != "" {
		cfg.Serve.HTTPAddr = addr
	}

	logger := newLogger(cfg.Log.Level)

	shutdownTracing, err := rbotel.SetupTracing(cmd.Context(), rbotel.TracingConfig{
		Endpoint:    cfg.Tracing.OTLPEndpoint,
		ServiceName: "researchbridge",
		Insecure:    true,
	})
	if err != nil {
		return exitError(exitRuntime, "initializing tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	adapter, client, err := buildAdapter(cfg, logger)
	if err != nil {
		return err
	}

	server, err := mcpserver.NewServer(mcpserver.Config{
		Adapter: adapter,
		Name:    "researchbridge",
		Version: version,
		Logger:  logger,
	})
	if err != nil {
		return exitError(exitRuntime, "creating MCP server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Serve.HealthIntervalSeconds > 0 {
		monitor, err := backend.NewHealthMonitor(backend.HealthMonitorConfig{
			Client:   client,
			Interval: cfg.Serve.HealthInterval(),
			Logger:   logger,
		})
		if err != nil {
			return exitError(exitRuntime, "creating health monitor: %v", err)
		}
		if err := monitor.Start(ctx); err != nil {
			return exitError(exitRuntime, "starting health monitor: %v", err)
		}
		defer func() {
			_ = monitor.Stop(context.Background())
		}()
	}

	errCh := make(chan error, 2)

	var httpServer *http.Server
	if cfg.Serve.HTTPAddr != "" {
		readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
		writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
		httpServer = &http.Server{
			Addr:         cfg.Serve.HTTPAddr,
			Handler:      mcpserver.HTTPHandler(server),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		}
		go func() {
			logger.Info("MCP SSE endpoint listening", "addr", cfg.Serve.HTTPAddr)
			errCh <- httpServer.ListenAndServe()
		}()
	}

	go func() {
		logger.Info("MCP server listening on stdio", "backend", cfg.Backend.URL)
		errCh <- mcpserver.ServeStdio(ctx, server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return exitError(exitRuntime, "shutdown error: %v", err)
			}
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}
