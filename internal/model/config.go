package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds connection settings for the CrowdBricks admin API.
type APIConfig struct {
	// BaseURL is the root URL of the platform API
	// (e.g., https://api.crowdbricks.example).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// SyncConfig holds the timer settings for the background sync loops.
type SyncConfig struct {
	// PollIntervalSec is the notification refetch period used when the
	// push channel is unavailable.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// UnreadCheckIntervalSec is the unread-ticket-count polling period.
	UnreadCheckIntervalSec int `mapstructure:"unread_check_interval_sec" yaml:"unread_check_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// BellAlerts rings the terminal bell when new support activity is
	// detected. Off by default; the terminal has to grant audible bells.
	BellAlerts bool `mapstructure:"bell_alerts" yaml:"bell_alerts"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// LogFile is where the debug log is written. The UI owns the
	// terminal, so logging never goes to stdout.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/crowdbricks/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "crowdbricks", "config.yaml")
}

// DefaultDataPath returns the default path for the local SQLite database.
func DefaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "admin.db")
	}
	return filepath.Join(home, ".config", "crowdbricks", "admin.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Sync: SyncConfig{
			PollIntervalSec:        10,
			UnreadCheckIntervalSec: 30,
		},
		Display: DisplayConfig{
			Theme:      "default",
			BellAlerts: false,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("sync.poll_interval_sec", 10)
	v.SetDefault("sync.unread_check_interval_sec", 30)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.bell_alerts", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.PollIntervalSec <= 0 {
		cfg.Sync.PollIntervalSec = 10
	}
	if cfg.Sync.UnreadCheckIntervalSec <= 0 {
		cfg.Sync.UnreadCheckIntervalSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("sync", cfg.Sync)
	v.Set("display", cfg.Display)
	v.Set("log_file", cfg.LogFile)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
