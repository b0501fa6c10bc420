// Package config loads the tool's own configuration: gateway and Konnect
// endpoints, logging, history storage, and plugin activation. Sync state
// never lives here; this file only tells the tool where to connect.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

// GatewayConfig locates the gateway admin API.
type GatewayConfig struct {
	AdminURL string `toml:"admin_url"`
}

// KonnectConfig locates a Konnect control plane. All three fields must be
// set for Konnect operations to be available.
type KonnectConfig struct {
	Endpoint       string `toml:"endpoint"`
	ControlPlaneID string `toml:"control_plane_id"`
	Token          string `toml:"token"`
}

// Configured reports whether every field needed to reach Konnect is set.
func (k KonnectConfig) Configured() bool {
	return k.Endpoint != "" && k.ControlPlaneID != "" && k.Token != ""
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// HistoryConfig locates the apply-history database.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// PluginConfig selects which compiled-in plugins are active and carries
// their per-plugin settings.
type PluginConfig struct {
	Enabled  []string                  `toml:"enabled"`
	Settings map[string]map[string]any `toml:"settings"`
}

// Config is the tool's full configuration.
type Config struct {
	Gateway GatewayConfig `toml:"gateway"`
	Konnect KonnectConfig `toml:"konnect"`
	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
	Plugins PluginConfig  `toml:"plugins"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "sysops", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "sysops", "config.toml")
}

func defaults() Config {
	return Config{
		Gateway: GatewayConfig{AdminURL: "http://localhost:8001"},
		Log:     LogConfig{Level: "info", Format: "text"},
		History: HistoryConfig{Path: defaultHistoryPath()},
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".local", "share", "sysops", "history.db")
}

// Load reads the config file at path, layering it over defaults and
// applying environment overrides last. A missing file is not an error:
// defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read config: %s", path), err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "TOML", err)
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv lets environment variables override file values, so tokens can
// stay out of the config file entirely.
func applyEnv(cfg *Config) {
	set := func(target *string, key string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	set(&cfg.Gateway.AdminURL, "SYSOPS_GATEWAY_ADMIN_URL")
	set(&cfg.Konnect.Endpoint, "SYSOPS_KONNECT_ENDPOINT")
	set(&cfg.Konnect.ControlPlaneID, "SYSOPS_KONNECT_CONTROL_PLANE_ID")
	set(&cfg.Konnect.Token, "SYSOPS_KONNECT_TOKEN")
	set(&cfg.Log.Level, "SYSOPS_LOG_LEVEL")
	set(&cfg.Log.Format, "SYSOPS_LOG_FORMAT")
	set(&cfg.History.Path, "SYSOPS_HISTORY_PATH")
}
