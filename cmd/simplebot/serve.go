package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/simplebot/internal/cli"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Hosts the bot over HTTP: POST /api/messages, GET /health, GET /info and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		svc, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.Error("Failed to close storage", "error", err)
			}
		}()

		srv := cli.NewServer(cfg, svc)

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting server", "addr", srv.Addr, "storage", cfg.Storage.Driver, "metrics", cfg.Metrics.Enabled)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding turns a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides server.addr)")
}
