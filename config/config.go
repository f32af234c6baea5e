// Package config provides configuration loading and management for the
// timeclock service.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the complete timeclock configuration.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	HTTP     HTTPConfig     `yaml:"http"`
	NATS     NATSConfig     `yaml:"nats"`
	Devices  DevicesConfig  `yaml:"devices"`
	Log      LogConfig      `yaml:"log"`
}

// SnapshotConfig selects the snapshot backend for the time-entry log.
type SnapshotConfig struct {
	// Driver is "file" (JSON) or "sqlite".
	Driver string `yaml:"driver"`
	// Path is the snapshot file or database path. Defaults to
	// ~/.timeclock/time_entries.json (or .db for sqlite).
	Path string `yaml:"path"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	// Addr is the listen address (default :8080).
	Addr string `yaml:"addr"`
}

// NATSConfig configures the event bus connection.
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server).
	URL string `yaml:"url"`
	// Embedded indicates whether to run an embedded NATS server.
	Embedded bool `yaml:"embedded"`
	// SubjectPrefix prefixes all timeclock subjects (default "timeclock").
	SubjectPrefix string `yaml:"subject_prefix"`
}

// DevicesConfig configures the hardware device registry.
type DevicesConfig struct {
	// Registry is the path to the device registry YAML file.
	Registry string `yaml:"registry"`
	// Allow lists glob patterns for accepted device IDs (empty = allow all).
	Allow []string `yaml:"allow"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			Driver: "file",
			Path:   "", // Resolved against the home directory at use.
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		NATS: NATSConfig{
			URL:           "",
			Embedded:      true,
			SubjectPrefix: "timeclock",
		},
		Devices: DevicesConfig{
			Registry: "",
			Allow:    nil, // Allow all
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Snapshot.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("snapshot.driver must be file or sqlite, got %q", c.Snapshot.Driver)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("nats.subject_prefix is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}

// SnapshotPath resolves the snapshot location, defaulting into the
// user's home directory when unset.
func (c *Config) SnapshotPath() (string, error) {
	if c.Snapshot.Path != "" {
		return c.Snapshot.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	name := "time_entries.json"
	if c.Snapshot.Driver == "sqlite" {
		name = "time_entries.db"
	}
	return filepath.Join(home, ".timeclock", name), nil
}

// HardwareSubject returns the subject hardware events arrive on.
func (c *Config) HardwareSubject() string {
	return c.NATS.SubjectPrefix + ".hardware.event"
}

// Merge merges another config into this one; other takes precedence
// for non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Snapshot.Driver != "" {
		c.Snapshot.Driver = other.Snapshot.Driver
	}
	if other.Snapshot.Path != "" {
		c.Snapshot.Path = other.Snapshot.Path
	}

	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
	if other.NATS.SubjectPrefix != "" {
		c.NATS.SubjectPrefix = other.NATS.SubjectPrefix
	}

	if other.Devices.Registry != "" {
		c.Devices.Registry = other.Devices.Registry
	}
	if len(other.Devices.Allow) > 0 {
		c.Devices.Allow = other.Devices.Allow
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
