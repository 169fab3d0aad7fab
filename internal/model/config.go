package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds connection settings for the aggregation backend.
type ServerConfig struct {
	// BaseURL is the root URL of the backend API
	// (e.g., http://127.0.0.1:8000/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request HTTP timeout.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// OAuthConfig holds settings for the loopback OAuth callback listener.
type OAuthConfig struct {
	// ListenAddr is the address the callback listener binds to.
	// The backend's provider apps must redirect here.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// SyncConfig holds background polling settings.
type SyncConfig struct {
	// PollIntervalSec is how often (in seconds) to refresh emails
	// and connected accounts from the backend.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// ThemeMode is "auto" or "manual" (see theme.Scheduler).
	ThemeMode string `mapstructure:"theme_mode" yaml:"theme_mode"`

	// DarkMode is the manually chosen value when ThemeMode is "manual".
	DarkMode bool `mapstructure:"dark_mode" yaml:"dark_mode"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	OAuth   OAuthConfig   `mapstructure:"oauth" yaml:"oauth"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/maildeck/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "maildeck", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:    "http://127.0.0.1:8000/api",
			TimeoutSec: 30,
		},
		OAuth: OAuthConfig{
			ListenAddr: "127.0.0.1:8765",
		},
		Sync: SyncConfig{
			PollIntervalSec: 120,
		},
		Display: DisplayConfig{
			ThemeMode: "auto",
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
	v.SetDefault("server.base_url", "http://127.0.0.1:8000/api")
	v.SetDefault("server.timeout_sec", 30)
	v.SetDefault("oauth.listen_addr", "127.0.0.1:8765")
	v.SetDefault("sync.poll_interval_sec", 120)
	v.SetDefault("display.theme_mode", "auto")

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

	if cfg.Server.TimeoutSec <= 0 {
		cfg.Server.TimeoutSec = 30
	}
	if cfg.Sync.PollIntervalSec <= 0 {
		cfg.Sync.PollIntervalSec = 120
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
	v.Set("oauth", cfg.OAuth)
	v.Set("sync", cfg.Sync)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
