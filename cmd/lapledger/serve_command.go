package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/lapledger/internal/config"
	"github.com/rpggio/lapledger/internal/mcp"
	"github.com/rpggio/lapledger/internal/tracker"
	"github.com/rpggio/lapledger/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var transportFlag, host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over MCP (stdio or HTTP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if transportFlag != "" {
				cfg.Transport.Mode = transportFlag
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tr, err := ctx.openTracker(runCtx, true)
			if err != nil {
				return err
			}
			defer ctx.close()

			logger := ctx.logger
			unsubscribe := tr.Subscribe(func(ev tracker.Event) {
				if ev.Type == tracker.EventPersonalBest && ev.Entry != nil {
					logger.Info("personal best", "circuit", ev.Entry.Circuit, "time", ev.Entry.Time)
				}
			})
			defer unsubscribe()

			mcpServer := mcp.NewServer(mcp.Config{Tracker: tr, Logger: logger})

			if cfg.Transport.Mode == config.TransportStdio {
				return runStdioMode(runCtx, logger, mcpServer)
			}
			return runHTTPMode(runCtx, logger, mcpServer, tr, cfg.Addr())
		},
	}
	cmd.Flags().StringVar(&transportFlag, "transport", "", "stdio or http (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port (overrides config)")
	return cmd
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, tr *tracker.Tracker, addr string) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewRouter(mcpHandler, tr, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
