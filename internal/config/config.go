package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig points the engine at the remote task service.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// StoreConfig controls local persistence.
type StoreConfig struct {
	// Path is the SQLite database location.
	Path string `mapstructure:"path" yaml:"path"`
	// Profile is "guest" (demo seed merged on load) or "account"
	// (straight replace, no seed).
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// UndoConfig controls the delete-undo affordance.
type UndoConfig struct {
	WindowMS int `mapstructure:"window_ms" yaml:"window_ms"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API      APIConfig   `mapstructure:"api" yaml:"api"`
	Store    StoreConfig `mapstructure:"store" yaml:"store"`
	Undo     UndoConfig  `mapstructure:"undo" yaml:"undo"`
	OwnerTag string      `mapstructure:"owner_tag" yaml:"owner_tag"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/fivetodo/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "fivetodo", "config.yaml")
}

// defaultStorePath puts the database next to the config file.
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "fivetodo.db")
	}
	return filepath.Join(home, ".config", "fivetodo", "fivetodo.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API:   APIConfig{BaseURL: "http://localhost:8000"},
		Store: StoreConfig{Path: defaultStorePath(), Profile: "guest"},
		Undo:  UndoConfig{WindowMS: 3000},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.profile", "guest")
	v.SetDefault("undo.window_ms", 3000)

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

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("store", cfg.Store)
	v.Set("undo", cfg.Undo)
	v.Set("owner_tag", cfg.OwnerTag)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
