// Package system provides infrastructure for system-level configuration.
// This covers the user config file (~/.armature/config.yaml) and its
// ARMATURE_* environment overrides.
package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
)

const (
	// DirName is the per-user configuration directory under $HOME.
	DirName = ".armature"
	// FileName is the system config file inside DirName.
	FileName = "config.yaml"
)

// Config represents the global configuration file (~/.armature/config.yaml).
// This is infrastructure-level configuration separate from rulebooks.
type Config struct {
	// Rulebooks are overlaid onto the built-in rulebook, left to right.
	Rulebooks []string        `yaml:"rulebooks" env:"ARMATURE_RULEBOOKS" envSeparator:","`
	Output    OutputConfig    `yaml:"output"`
	Checks    ChecksConfig    `yaml:"checks"`
	Execution ExecutionConfig `yaml:"execution"`
}

// OutputConfig sets report defaults.
type OutputConfig struct {
	Format string `yaml:"format" env:"ARMATURE_FORMAT"`
}

// ChecksConfig toggles optional validation behavior.
type ChecksConfig struct {
	Strict            bool `yaml:"strict" env:"ARMATURE_STRICT"`
	SkipPerformance   bool `yaml:"skip_performance" env:"ARMATURE_SKIP_PERFORMANCE"`
	SkipCompatibility bool `yaml:"skip_compatibility" env:"ARMATURE_SKIP_COMPATIBILITY"`
}

// ExecutionConfig controls batch execution.
type ExecutionConfig struct {
	Sequential bool `yaml:"sequential" env:"ARMATURE_SEQUENTIAL"`
	// MaxConcurrent of 0 means use the engine default.
	MaxConcurrent int `yaml:"max_concurrent" env:"ARMATURE_MAX_CONCURRENT"`
	// Timeout of 0 means no limit.
	Timeout time.Duration `yaml:"timeout" env:"ARMATURE_TIMEOUT"`
}

// ConfigLoader loads system configuration from disk and the environment.
type ConfigLoader struct {
	// environment overrides os.Environ when set. Used by tests.
	environment map[string]string
}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// WithEnvironment returns a loader that reads overrides from the given map
// instead of the process environment.
func (l *ConfigLoader) WithEnvironment(environment map[string]string) *ConfigLoader {
	return &ConfigLoader{environment: environment}
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		Rulebooks: []string{},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// DefaultPath returns ~/.armature/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, DirName, FileName), nil
}

// Load loads the system configuration from the specified path and applies
// ARMATURE_* environment overrides. If the file does not exist, the
// overrides are applied to DefaultConfig(), so armature works out of the box.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	cfg, err := l.loadFile(path)
	if err != nil {
		return nil, err
	}

	opts := env.Options{}
	if l.environment != nil {
		opts.Environment = l.environment
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *ConfigLoader) loadFile(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is the user-provided config file
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot use.
func (c *Config) Validate() error {
	if c.Execution.MaxConcurrent < 0 {
		return fmt.Errorf("execution.max_concurrent cannot be negative, got %d", c.Execution.MaxConcurrent)
	}
	if c.Execution.Timeout < 0 {
		return fmt.Errorf("execution.timeout cannot be negative, got %s", c.Execution.Timeout)
	}
	return nil
}
