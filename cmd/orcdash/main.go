// orcdash terminal dashboard — subscribes to an orc backend's event
// stream and renders live task state.
package main

import (
	"flag"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randalmurphal/orcdash/pkg/config"
	"github.com/randalmurphal/orcdash/pkg/dispatch"
	"github.com/randalmurphal/orcdash/pkg/events"
	"github.com/randalmurphal/orcdash/pkg/stream"
	"github.com/randalmurphal/orcdash/pkg/transport"
	"github.com/randalmurphal/orcdash/pkg/ui"
	"github.com/randalmurphal/orcdash/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupLogger sends slog to ORCDASH_LOG_FILE when set, otherwise
// discards it — the TUI owns the terminal, so logs cannot go to stdout.
func setupLogger() (*slog.Logger, func()) {
	path := os.Getenv("ORCDASH_LOG_FILE")
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("could not open log file, discarding logs", "path", path, "error", err)
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})),
		func() { _ = f.Close() }
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "."),
		"Path to configuration directory")
	flag.Parse()

	logger, closeLog := setupLogger()
	defer closeLog()
	slog.SetDefault(logger)

	// 1. Load configuration
	cfg, err := config.Load(*configDir)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting orcdash",
		"version", version.Full(),
		"server_url", cfg.ServerURL,
		"task_id", cfg.TaskID)

	// 2. Build the core: stores, router, stream client
	stores := dispatch.NewStores()
	router := dispatch.NewRouter(stores, logger)

	ws := transport.NewWebSocket(cfg.ServerURL, logger)
	client := stream.NewClient(ws, logger, stream.Options{
		BaseDelay:     cfg.ReconnectBaseDelay,
		MaxReconnects: cfg.MaxReconnects,
		StaleTimeout:  cfg.StaleTimeout,
	})

	// 3. Build the TUI and wire the core into it
	model := ui.NewModel(stores, ui.Options{NoColor: cfg.NoColor})
	program := tea.NewProgram(model, tea.WithAltScreen())

	offEvents := client.On(func(ev events.Event) {
		router.HandleEvent(ev)
	})
	defer offEvents()
	offStatus := client.OnStatusChange(func(s stream.Status) {
		program.Send(ui.StatusMsg{Status: s})
	})
	defer offStatus()

	// 4. Connect and run until the user quits
	client.Connect(stream.SubscribeRequest{
		ProjectIDs:       cfg.ProjectIDs,
		TaskID:           cfg.TaskID,
		InitiativeID:     cfg.InitiativeID,
		EventTypes:       cfg.EventTypes,
		IncludeHeartbeat: cfg.IncludeHeartbeat,
	})
	defer client.Disconnect()

	if _, err := program.Run(); err != nil {
		slog.Error("Dashboard terminated with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}
