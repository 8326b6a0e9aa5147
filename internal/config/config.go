// Package config handles TOML configuration loading for temptrace.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultEnvVar is the variable the run command exports the session
// directory in.
const DefaultEnvVar = "TEMPTRACE_DIR"

// Config represents the main configuration structure.
type Config struct {
	Session SessionConfig `toml:"session"`
	Run     RunConfig     `toml:"run"`
}

// SessionConfig holds defaults for session creation.
type SessionConfig struct {
	Parent   string `toml:"parent"`
	Template string `toml:"template"`
	Keep     bool   `toml:"keep"`
	Log      bool   `toml:"log"`
}

// RunConfig holds settings for the run command.
type RunConfig struct {
	EnvVar string `toml:"env_var"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			Parent:   os.TempDir(),
			Template: "", // program name
			Keep:     false,
			Log:      false,
		},
		Run: RunConfig{
			EnvVar: DefaultEnvVar,
		},
	}
}

// DefaultConfigPath returns the default config file path.
// Returns empty string if home directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "temptrace", "config.toml")
}

// Load reads configuration from a TOML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if _, decodeErr := toml.Decode(string(data), cfg); decodeErr != nil {
		return nil, fmt.Errorf("parsing config: %w", decodeErr)
	}

	if cfg.Run.EnvVar == "" {
		cfg.Run.EnvVar = DefaultEnvVar
	}
	cfg.Session.Parent = expandPath(cfg.Session.Parent)

	return cfg, nil
}

// Save writes the configuration to a TOML file, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // return unexpanded on error
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
