package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/arko-chat/pushbridge/internal/credentials"
)

const (
	appName    = "pushbridge"
	configFile = "config.json"

	channelSecretKey = "channel_secret"
)

const (
	ShellWebview = "webview"
	ShellBrowser = "browser"
	ShellNone    = "none"
)

type Config struct {
	ListenAddr     string `json:"listen_addr"`
	DataDir        string `json:"data_dir"`
	LogLevel       string `json:"log_level"`
	LogFormat      string `json:"log_format"`
	StrictCommands bool   `json:"strict_commands"`
	Shell          string `json:"shell"`
	HostURL        string `json:"host_url"`
	DedupKey       string `json:"dedup_key,omitempty"`
	DedupSize      int    `json:"dedup_size,omitempty"`
	ChannelSecret  string `json:"-"`
}

func Default(appDir string) Config {
	return Config{
		ListenAddr: "127.0.0.1:0",
		DataDir:    filepath.Join(appDir, "data"),
		LogLevel:   "info",
		LogFormat:  "text",
		Shell:      ShellWebview,
	}
}

// Load reads the config from the user config directory.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(configDir, appName))
}

// LoadFrom reads appDir/config.json, writing the defaults on first run, then
// applies the environment overrides and loads the channel secret.
func LoadFrom(appDir string) (*Config, error) {
	path := filepath.Join(appDir, configFile)
	cfg := Default(appDir)

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		if err := os.MkdirAll(appDir, 0700); err != nil {
			return nil, err
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		_ = os.WriteFile(path, out, 0600)
		slog.Info("generated new config", "path", path)
	}

	cfg.ChannelSecret, err = credentials.EnsureAppSecret(channelSecretKey, 32)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Shell {
	case ShellWebview, ShellBrowser, ShellNone:
	default:
		return fmt.Errorf("config: unknown shell %q", c.Shell)
	}
	if c.DedupKey != "" && c.DedupSize <= 0 {
		return fmt.Errorf("config: dedup_size must be positive when dedup_key is set")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PUSHBRIDGE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PUSHBRIDGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PUSHBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PUSHBRIDGE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PUSHBRIDGE_STRICT_COMMANDS"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PUSHBRIDGE_STRICT_COMMANDS: %w", err)
		}
		cfg.StrictCommands = strict
	}
	if v := os.Getenv("PUSHBRIDGE_SHELL"); v != "" {
		cfg.Shell = v
	}
	if v := os.Getenv("PUSHBRIDGE_HOST_URL"); v != "" {
		cfg.HostURL = v
	}
	if v := os.Getenv("PUSHBRIDGE_CHANNEL_SECRET"); v != "" {
		cfg.ChannelSecret = v
	}
	return nil
}
