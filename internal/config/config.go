package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings. Values come from the YAML config file
// under the data dir, with environment variables taking precedence.
type Config struct {
	TelegramToken string `yaml:"telegram_token"`
	DatabaseURL   string `yaml:"database_url"`
	DataDir       string `yaml:"data_dir"`

	// PollTimeout is the getUpdates long-poll window.
	PollTimeoutSeconds int `yaml:"poll_timeout_seconds"`

	// StatsIntervalHours sets how often the live-statistics digest is
	// logged. 0 disables it.
	StatsIntervalHours int `yaml:"stats_interval_hours"`

	// ExportTime is an HH:MM time for the daily full export snapshot.
	// Empty disables it.
	ExportTime string `yaml:"export_time"`
}

// Load resolves configuration: data dir from env, then the optional YAML
// file, then env overrides. The token may also live in a mode-0600 token
// file under the config dir.
func Load() (Config, error) {
	cfg := Config{
		DataDir:            "userwatch_data",
		PollTimeoutSeconds: 30,
		StatsIntervalHours: 6,
	}
	if dir := strings.TrimSpace(os.Getenv("DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}

	if err := cfg.readFile(); err != nil {
		return cfg, err
	}
	cfg.applyEnv()

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = filepath.Join(cfg.DataDir, "database", "userwatch.db")
	}
	if cfg.PollTimeoutSeconds <= 0 {
		cfg.PollTimeoutSeconds = 30
	}

	if cfg.TelegramToken == "" {
		if token, err := os.ReadFile(cfg.TokenPath()); err == nil {
			cfg.TelegramToken = strings.TrimSpace(string(token))
		}
	}
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("telegram token is required: set TELEGRAM_TOKEN, %s, or %s",
			filepath.Join(cfg.ConfigDir(), "config.yaml"), cfg.TokenPath())
	}

	return cfg, nil
}

func (c *Config) readFile() error {
	path := filepath.Join(c.ConfigDir(), "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		c.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("POLL_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PollTimeoutSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("STATS_INTERVAL_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.StatsIntervalHours = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("EXPORT_TIME")); v != "" {
		c.ExportTime = v
	}
}

func (c Config) ConfigDir() string  { return filepath.Join(c.DataDir, "config") }
func (c Config) ExportsDir() string { return filepath.Join(c.DataDir, "exports") }
func (c Config) TokenPath() string  { return filepath.Join(c.ConfigDir(), ".token") }

func (c Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

func (c Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalHours) * time.Hour
}

// EnsureDirs creates the data directory layout.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{
		filepath.Join(c.DataDir, "database"),
		c.ExportsDir(),
		c.ConfigDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %q: %w", dir, err)
		}
	}
	return nil
}

// SaveToken writes the bot token to the token file with owner-only
// permissions.
func (c Config) SaveToken(token string) error {
	if err := os.MkdirAll(c.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(c.TokenPath(), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
