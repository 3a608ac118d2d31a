// Package config provides configuration management for the datespine CLI.
//
// This package extends the shared project types from internal/config with
// CLI-specific fields (state path, output mode, environments). The shared
// types are re-exported here via type aliases for convenience.
package config

import (
	intconfig "github.com/rahulmdinesh/stock-market-data-pipeline/internal/config"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing pkg/core.
type TargetConfig = core.TargetConfig

// CalendarConfig is an alias for the shared calendar configuration.
type CalendarConfig = intconfig.CalendarConfig

// UpstreamConfig is an alias for the shared upstream configuration.
type UpstreamConfig = intconfig.UpstreamConfig

// DestinationConfig is an alias for the shared destination configuration.
type DestinationConfig = intconfig.DestinationConfig

// ServerConfig holds configuration for the status API server.
type ServerConfig struct {
	Addr string `koanf:"addr" yaml:"addr"`
}

// Config holds all CLI configuration options.
type Config struct {
	Calendar     CalendarConfig       `koanf:"calendar" yaml:"calendar"`
	Upstream     UpstreamConfig       `koanf:"upstream" yaml:"upstream"`
	Destination  DestinationConfig    `koanf:"destination" yaml:"destination"`
	StatePath    string               `koanf:"state_path" yaml:"state_path"`
	Environment  string               `koanf:"environment" yaml:"environment"`
	Verbose      bool                 `koanf:"verbose" yaml:"verbose"`
	OutputFormat string               `koanf:"output" yaml:"output"`
	Target       *TargetConfig        `koanf:"target" yaml:"target,omitempty"`
	Server       ServerConfig         `koanf:"server" yaml:"server"`
	Environments map[string]EnvConfig `koanf:"environments" yaml:"environments,omitempty"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target      *TargetConfig      `koanf:"target" yaml:"target,omitempty"`
	Destination *DestinationConfig `koanf:"destination" yaml:"destination,omitempty"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultStateFile  = ".datespine/state.db"
	DefaultEnv        = "dev"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServerAddr = "127.0.0.1:8086"
)

// Project returns the shared project view of the configuration.
func (c *Config) Project() *intconfig.ProjectConfig {
	return &intconfig.ProjectConfig{
		Calendar:    c.Calendar,
		Upstream:    c.Upstream,
		Destination: c.Destination,
		Target:      c.Target,
	}
}

// Validate checks the calendar, relations and target.
func (c *Config) Validate() error {
	return c.Project().Validate()
}
