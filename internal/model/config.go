package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds connection settings for the EMR backend.
type ServerConfig struct {
	// BaseURL is the root URL of the backend service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// NotificationsConfig holds settings for the due-date watcher and the
// notification store.
type NotificationsConfig struct {
	// ScanIntervalSec is how often (in seconds) the due-date watcher
	// scans loaded tasks.
	ScanIntervalSec int `mapstructure:"scan_interval_sec" yaml:"scan_interval_sec"`

	// RetentionHours is how long notifications are kept before pruning.
	RetentionHours int `mapstructure:"retention_hours" yaml:"retention_hours"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server        ServerConfig        `mapstructure:"server" yaml:"server"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/careboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "careboard", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL: "http://localhost:9500",
		},
		Notifications: NotificationsConfig{
			ScanIntervalSec: 30,
			RetentionHours:  24,
		},
		Display: DisplayConfig{
			Theme: "default",
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
	v.SetDefault("server.base_url", "http://localhost:9500")
	v.SetDefault("notifications.scan_interval_sec", 30)
	v.SetDefault("notifications.retention_hours", 24)
	v.SetDefault("display.theme", "default")

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

	if cfg.Notifications.ScanIntervalSec <= 0 {
		cfg.Notifications.ScanIntervalSec = 30
	}
	if cfg.Notifications.RetentionHours <= 0 {
		cfg.Notifications.RetentionHours = 24
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

	v.Set("server", cfg.Server)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
