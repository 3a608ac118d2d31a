package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/output"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/engine"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Watermark  string
	JSONOutput bool
}

// RunOutput is the JSON shape of a finished run.
type RunOutput struct {
	Run      *core.Run `json:"run"`
	Duration string    `json:"duration"`
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rebuild the calendar dimension",
		Long: `Rebuild the calendar dimension with a full replace.

Reads max(quote_date) from the upstream table, generates one row per day from
calendar.start_date up to that watermark (bounded by calendar.row_count), and
swaps the result into the destination table. The run is recorded in the state
database whether it succeeds or fails.`,
		Example: `  # Rebuild the calendar
  datespine run

  # Rebuild against a fixed watermark instead of reading upstream
  datespine run --watermark 2025-06-30

  # Rebuild the prod target with JSON output for CI/CD integration
  datespine run -t prod --json`,
		Aliases: []string{"build"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Watermark, "watermark", "", "Use this date (YYYY-MM-DD) instead of the upstream watermark")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output the run record as JSON")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	wm, err := parseWatermark(opts.Watermark)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	startTime := time.Now()
	run, runErr := eng.Run(cmd.Context(), cmdCtx.Cfg.Environment, engine.RunOptions{Watermark: wm})
	if run == nil {
		return runErr
	}
	elapsed := time.Since(startTime).Round(time.Millisecond)

	if opts.JSONOutput || r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(RunOutput{Run: run, Duration: elapsed.String()}); err != nil {
			return err
		}
	} else {
		renderRun(r, run, elapsed)
	}

	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

func renderRun(r *output.Renderer, run *core.Run, elapsed time.Duration) {
	r.Header(1, fmt.Sprintf("Run %s", run.ID))
	r.KeyValue("Status", r.Status(string(run.Status)))
	r.KeyValue("Environment", run.Environment)
	r.KeyValue("Destination", run.Destination)
	r.KeyValue("Start date", formatDate(run.StartDate))
	r.KeyValue("Watermark", formatWatermark(run.Watermark))
	r.KeyValue("Rows written", strconv.FormatInt(run.RowsWritten, 10))
	r.KeyValue("Duration", elapsed.String())
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}
	if run.Status == core.RunStatusCompleted {
		r.Success(fmt.Sprintf("%s replaced with %d rows", run.Destination, run.RowsWritten))
	}
	if run.Truncated {
		r.Warning(fmt.Sprintf("calendar stops at its %d-day horizon before the upstream watermark; raise calendar.row_count", run.RowLimit))
	}
}
