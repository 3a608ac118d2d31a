package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/config"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/output"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/engine"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return nil, nil, err
	}

	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		if err := eng.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close engine", "error", err)
		}
	}

	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need database access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// getConfig returns the configuration loaded by the root command, loading
// it from the working directory when a command runs standalone.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", cmd.Root().PersistentFlags())
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	start, err := cfg.Calendar.Start()
	if err != nil {
		return nil, err
	}

	var adapterConfig *core.AdapterConfig
	if cfg.Target != nil {
		ac := cfg.Target.AdapterConfig()
		adapterConfig = &ac
	}

	return engine.New(engine.Config{
		Start:            start,
		RowCount:         cfg.Calendar.RowCount,
		Labels:           cfg.Calendar.Labels(),
		FailOnTruncation: cfg.Calendar.FailOnTruncation,
		Upstream:         cfg.Upstream.Relation(),
		UpstreamColumn:   cfg.Upstream.Column,
		Destination:      cfg.Destination.Relation(),
		Materialization:  cfg.Destination.Materialization,
		StatePath:        cfg.StatePath,
		Environment:      cfg.Environment,
		AdapterConfig:    adapterConfig,
		Logger:           logger,
	})
}

// parseWatermark parses a --watermark flag value. Empty means no override.
func parseWatermark(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := calendar.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("--watermark: %w", err)
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(calendar.DateLayout)
}

func formatWatermark(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(calendar.DateLayout)
}
