package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adforge/internal/config"
	"adforge/internal/pruning"
	"adforge/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP/SSE server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generate/prune/delete API over HTTP",
	Long: `Starts the HTTP server. Generate and delete are JSON endpoints;
prune streams its progress as server-sent events. The logging section
of the config file is hot-reloaded on change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	oracle, err := newOracle()
	if err != nil {
		return err
	}

	c := newCache()
	defer c.Stop()

	stopWatch, err := config.Watch(configPath, func() {
		logger.Info("config reloaded", zap.String("path", configPath))
	})
	if err != nil {
		logger.Warn("config watch unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	srv := server.New(st, oracle, logger, server.Options{
		Addr:            addr,
		DefaultMinScore: cfg.Scoring.MinScore,
		ItemTimeout:     config.ParseDuration(cfg.Scoring.ItemTimeout, pruning.DefaultItemTimeout),
		EventBuffer:     cfg.Scoring.EventBuffer,
	})

	ctx, cancel := signalContext()
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		config.ParseDuration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-serveErr
}
