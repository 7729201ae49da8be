// Package config handles reading and writing the atril config file plus
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	ServerURL string `yaml:"server_url"`
	// RequestTimeout is the per-request timeout in seconds.
	RequestTimeout int `yaml:"request_timeout"`
	// LogoutWait bounds, in seconds, how long sign-out waits for server-side
	// invalidation before clearing local state regardless.
	LogoutWait int  `yaml:"logout_wait"`
	Debug      bool `yaml:"debug"`
}

const appDir = ".atril"
const configFile = "config.yaml"

// Dir returns the atril state directory under the user's home, creating
// nothing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, appDir), nil
}

// Read loads config.yaml from dir, applies environment overrides, and falls
// back to defaults when the file does not exist.
func Read(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnv()

	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, fmt.Errorf("server_url is required (config.yaml or ATRIL_SERVER_URL)")
	}

	return cfg, nil
}

// Write writes cfg to config.yaml in dir, creating the directory if needed.
func Write(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		RequestTimeout: 10,
		LogoutWait:     3,
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ATRIL_SERVER_URL")); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ATRIL_REQUEST_TIMEOUT")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.RequestTimeout = secs
		}
	}
	if v := strings.TrimSpace(os.Getenv("ATRIL_LOGOUT_WAIT")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.LogoutWait = secs
		}
	}
	if v := strings.TrimSpace(os.Getenv("ATRIL_DEBUG")); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Debug = debug
		}
	}
}
