package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main Atrium configuration
type Config struct {
	// Artifacts directory watched for deployments
	ArtifactsDir string `json:"artifacts_dir" mapstructure:"artifacts_dir"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Watcher configuration
	Watcher WatcherConfig `json:"watcher" mapstructure:"watcher"`

	// Object store configuration
	Store StoreConfig `json:"store" mapstructure:"store"`

	// Extension loader configuration
	Loaders LoadersConfig `json:"loaders" mapstructure:"loaders"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// ServerConfig holds the event/admin server configuration
type ServerConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Port    int    `json:"port" mapstructure:"port"`
	Host    string `json:"host" mapstructure:"host"`
}

// WatcherConfig holds the hot-deploy watcher configuration
type WatcherConfig struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs int  `json:"debounce_ms" mapstructure:"debounce_ms"`
}

// StoreConfig holds object store configuration
type StoreConfig struct {
	Persistent     bool   `json:"persistent" mapstructure:"persistent"`
	ExpirySchedule string `json:"expiry_schedule" mapstructure:"expiry_schedule"`
	MaxAgeHours    int    `json:"max_age_hours" mapstructure:"max_age_hours"`
	MaxEntries     int    `json:"max_entries" mapstructure:"max_entries"`
}

// LoadersConfig selects which extension loaders are registered besides the
// built-in one.
type LoadersConfig struct {
	RPC bool `json:"rpc" mapstructure:"rpc"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
			Host:    "127.0.0.1",
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMs: 500,
		},
		Store: StoreConfig{
			Persistent:     true,
			ExpirySchedule: "@hourly",
		},
		Loaders: LoadersConfig{
			RPC: true,
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d", c.Server.Port)
		}
	}

	if c.Watcher.DebounceMs < 0 {
		return fmt.Errorf("watcher debounce_ms must be >= 0")
	}

	if c.Store.MaxAgeHours < 0 {
		return fmt.Errorf("store max_age_hours must be >= 0")
	}
	if c.Store.MaxEntries < 0 {
		return fmt.Errorf("store max_entries must be >= 0")
	}

	return nil
}
