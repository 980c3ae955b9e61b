// orcsim — a development stand-in for the orc backend. It serves the
// dashboard's WebSocket subscribe endpoint and feeds it a scripted
// stream of plausible task-lifecycle events.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randalmurphal/orcdash/pkg/simulator"
	"github.com/randalmurphal/orcdash/pkg/version"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	interval := flag.Duration("interval", time.Second, "Delay between simulated events")
	heartbeat := flag.Duration("heartbeat", 30*time.Second, "Heartbeat cadence for subscribers that ask for it")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	logger.Info("Starting orcsim",
		"version", version.Full(),
		"addr", *addr,
		"interval", *interval)

	server := simulator.NewServer(logger, simulator.Options{
		HeartbeatInterval: *heartbeat,
	})
	gen := simulator.NewGenerator(logger, *interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gen.Run(ctx, server.Broadcast)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		logger.Error("Server error triggered shutdown", "error", err)
	}

	cancel()
	server.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}
