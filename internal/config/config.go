package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultAPIBase is the hosted marketplace API
const DefaultAPIBase = "https://v2.api.noroff.dev"

// Backend selects how client state is persisted
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Config carries everything the CLI needs to construct its stack
type Config struct {
	APIBase      string
	StateBackend Backend
	StateDir     string
	LogLevel     string
}

// ServerConfig carries the local dev API server settings
type ServerConfig struct {
	Port    int
	Secret  string
	GinMode string
}

// Env abstracts environment lookup for tests
type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// Load reads the CLI configuration from the process environment
func Load() (Config, error) {
	return LoadFromEnv(osEnv{})
}

// LoadFromEnv reads the CLI configuration from the given environment
func LoadFromEnv(env Env) (Config, error) {
	cfg := Config{
		APIBase:      DefaultAPIBase,
		StateBackend: BackendFile,
		LogLevel:     "warning",
	}

	if raw := env.Getenv("LOTMARKET_API_BASE"); raw != "" {
		cfg.APIBase = raw
	}

	switch raw := env.Getenv("LOTMARKET_STATE_BACKEND"); raw {
	case "":
	case string(BackendFile), string(BackendSQLite):
		cfg.StateBackend = Backend(raw)
	default:
		return Config{}, fmt.Errorf("invalid LOTMARKET_STATE_BACKEND %q (want file or sqlite)", raw)
	}

	cfg.StateDir = env.Getenv("LOTMARKET_STATE_DIR")
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".lotmarket")
	}

	if raw := env.Getenv("LOTMARKET_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}

	return cfg, nil
}

// StatePath returns the backing file for the configured state backend
func (c Config) StatePath() string {
	if c.StateBackend == BackendSQLite {
		return filepath.Join(c.StateDir, "state.db")
	}
	return filepath.Join(c.StateDir, "state.json")
}

// LoadServer reads the dev API server configuration from the process environment
func LoadServer() (ServerConfig, error) {
	return LoadServerFromEnv(osEnv{})
}

// LoadServerFromEnv reads the dev API server configuration from the given environment
func LoadServerFromEnv(env Env) (ServerConfig, error) {
	cfg := ServerConfig{
		Port:    8080,
		Secret:  "dev-only-secret",
		GinMode: "release",
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return ServerConfig{}, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	if raw := env.Getenv("DEVAPI_SECRET"); raw != "" {
		cfg.Secret = raw
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}

	return cfg, nil
}
