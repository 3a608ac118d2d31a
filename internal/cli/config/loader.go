package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/rahulmdinesh/stock-market-data-pipeline/internal/config"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/secret"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix is the prefix of environment variables read into the config.
// A double underscore separates nesting levels:
// DATESPINE_CALENDAR__ROW_COUNT sets calendar.row_count.
const EnvPrefix = "DATESPINE_"

// flagKeys maps persistent flag names to config keys. Flags not listed here
// (--config, --target) steer loading and are not config values.
var flagKeys = map[string]string{
	"start-date": "calendar.start_date",
	"row-count":  "calendar.row_count",
	"state":      "state_path",
	"env":        "environment",
	"verbose":    "verbose",
	"output":     "output",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit --config file
//  2. Search upward from CWD for datespine.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := intconfig.FindProjectRoot(cwd, maxUpwardSearchLevels); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey transforms DATESPINE_CALENDAR__ROW_COUNT into calendar.row_count.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithTarget(cfgFile, "", flags)
}

// LoadConfigWithTarget loads configuration with an optional target override.
// The targetOverride parameter specifies which environment's target to use.
// The flags parameter allows CLI flags to override config file and env var values.
func LoadConfigWithTarget(cfgFile string, targetOverride string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")
	configFileUsed = ""

	projectRoot := inferProjectRoot(cfgFile)

	// State path given as a flag is relative to CWD, not the project root.
	var flagStatePath string
	if flags != nil && flags.Changed("state") {
		if v, _ := flags.GetString("state"); v != "" {
			flagStatePath, _ = filepath.Abs(v)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"calendar.start_date":         intconfig.DefaultStartDate,
		"calendar.row_count":          intconfig.DefaultRowCount,
		"calendar.label_style":        intconfig.DefaultLabelStyle,
		"calendar.label_case":         intconfig.DefaultLabelCase,
		"upstream.table":              intconfig.DefaultUpstreamTable,
		"upstream.column":             intconfig.DefaultUpstreamColumn,
		"destination.table":           intconfig.DefaultDestinationName,
		"destination.materialization": core.MaterializationTable,
		"state_path":                  DefaultStateFile,
		"environment":                 DefaultEnv,
		"verbose":                     false,
		"output":                      DefaultOutput,
		"server.addr":                 DefaultServerAddr,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = intconfig.FindConfigFile(projectRoot)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DATESPINE_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}

	// Determine which environment to use for target selection
	envForTarget := cfg.Environment
	if targetOverride != "" {
		envForTarget = targetOverride
		cfg.Environment = targetOverride
	}

	if envCfg, ok := cfg.Environments[envForTarget]; ok {
		if envCfg.Target != nil {
			cfg.Target = MergeTargetConfig(cfg.Target, envCfg.Target)
		}
		if envCfg.Destination != nil {
			cfg.Destination = mergeDestination(cfg.Destination, *envCfg.Destination)
		}
	}

	// Initialize default target if not specified
	if cfg.Target == nil {
		cfg.Target = &core.TargetConfig{Type: "duckdb"}
	}

	intconfig.ApplyTargetDefaults(cfg.Target)

	if err := expandTargetSecrets(cfg.Target); err != nil {
		return nil, err
	}

	if cfg.Target.Type == "duckdb" {
		cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig or LoadConfigWithTarget is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandTargetSecrets resolves ${VAR} and keyring: references in the
// connection fields of a target.
func expandTargetSecrets(t *core.TargetConfig) error {
	if t == nil {
		return nil
	}
	fields := []struct {
		name string
		val  *string
	}{
		{"password", &t.Password},
		{"user", &t.User},
		{"host", &t.Host},
		{"database", &t.Database},
		{"account", &t.Account},
	}
	for _, f := range fields {
		if !secret.IsReference(*f.val) {
			continue
		}
		v, err := secret.Resolve(*f.val)
		if err != nil {
			return fmt.Errorf("target.%s: %w", f.name, err)
		}
		*f.val = v
	}
	return nil
}

func mergeDestination(base, override DestinationConfig) DestinationConfig {
	if override.Database != "" {
		base.Database = override.Database
	}
	if override.Schema != "" {
		base.Schema = override.Schema
	}
	if override.Table != "" {
		base.Table = override.Table
	}
	if override.Materialization != "" {
		base.Materialization = override.Materialization
	}
	return base
}

// MergeTargetConfig merges two target configs, with override taking precedence.
func MergeTargetConfig(base, override *core.TargetConfig) *core.TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a copy of base
	merged := &core.TargetConfig{
		Type:      base.Type,
		Database:  base.Database,
		Host:      base.Host,
		Port:      base.Port,
		User:      base.User,
		Password:  base.Password,
		Schema:    base.Schema,
		Account:   base.Account,
		Warehouse: base.Warehouse,
		Role:      base.Role,
		Options:   make(map[string]string),
		Params:    make(map[string]any),
	}

	for k, v := range base.Options {
		merged.Options[k] = v
	}
	for k, v := range base.Params {
		merged.Params[k] = v
	}

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	if override.Account != "" {
		merged.Account = override.Account
	}
	if override.Warehouse != "" {
		merged.Warehouse = override.Warehouse
	}
	if override.Role != "" {
		merged.Role = override.Role
	}

	// Override takes precedence for options and params
	for k, v := range override.Options {
		merged.Options[k] = v
	}
	for k, v := range override.Params {
		merged.Params[k] = v
	}

	return merged
}
