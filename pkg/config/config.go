// Package config loads dashboard configuration from the environment,
// optionally seeded from a .env file in the config directory.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the dashboard needs to connect and render.
type Config struct {
	// ServerURL is the orc backend base URL.
	ServerURL string

	// ProjectIDs limits the subscription to the given projects.
	ProjectIDs []string

	// TaskID limits the subscription to a single task.
	TaskID string

	// InitiativeID limits the subscription to one initiative's tasks.
	InitiativeID string

	// EventTypes is an allowlist of wire event types. Empty means all.
	EventTypes []string

	// IncludeHeartbeat asks the server for periodic heartbeats.
	IncludeHeartbeat bool

	// StaleTimeout forces a reconnect when a heartbeat-enabled stream
	// stays silent this long. Zero disables staleness detection.
	StaleTimeout time.Duration

	// ReconnectBaseDelay is the first backoff delay (doubles per attempt).
	ReconnectBaseDelay time.Duration

	// MaxReconnects is the backoff attempt budget.
	MaxReconnects int

	// NoColor disables terminal styling.
	NoColor bool
}

// Load reads configuration from configDir/.env (if present) and the
// ORCDASH_* environment variables.
func Load(configDir string) (*Config, error) {
	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Debug("no .env file, using existing environment", "path", envPath)
	} else {
		slog.Info("loaded environment", "path", envPath)
	}

	cfg := &Config{
		ServerURL:          getEnv("ORCDASH_SERVER_URL", "http://localhost:8080"),
		ProjectIDs:         splitList(os.Getenv("ORCDASH_PROJECT_IDS")),
		TaskID:             os.Getenv("ORCDASH_TASK_ID"),
		InitiativeID:       os.Getenv("ORCDASH_INITIATIVE_ID"),
		EventTypes:         splitList(os.Getenv("ORCDASH_EVENT_TYPES")),
		IncludeHeartbeat:   getBool("ORCDASH_HEARTBEAT", true),
		NoColor:            getBool("NO_COLOR", false),
		ReconnectBaseDelay: time.Second,
		MaxReconnects:      5,
	}

	var err error
	if cfg.StaleTimeout, err = getDuration("ORCDASH_STALE_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if d, derr := getDuration("ORCDASH_RECONNECT_BASE_DELAY", cfg.ReconnectBaseDelay); derr != nil {
		return nil, derr
	} else if d > 0 {
		cfg.ReconnectBaseDelay = d
	}
	if n, nerr := getInt("ORCDASH_MAX_RECONNECTS", cfg.MaxReconnects); nerr != nil {
		return nil, nerr
	} else if n > 0 {
		cfg.MaxReconnects = n
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "value", v)
		return fallback
	}
	return b
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// splitList parses a comma-separated list, trimming blanks.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
