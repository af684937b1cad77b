package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brcurves/svenfit/internal/attempt"
	"github.com/brcurves/svenfit/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		attempts, observations, closeStores, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStores()

		manager := attempt.NewManager(attempts, observations, attempt.Config{
			Optimizer: cfg.OptimizerSettings(),
			Seed:      cfg.Seed,
		})

		addr := cfg.Listen
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.NewServer(addr, manager, observations)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case sig := <-stop:
			slog.Info("Received signal, shutting down", "signal", sig.String())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
