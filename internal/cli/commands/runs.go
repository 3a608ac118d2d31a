package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/output"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show run history",
		Long:  `List recorded calendar runs from the state database, newest first.`,
		Example: `  datespine runs
  datespine runs --limit 50 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cmdCtx.Engine.Runs(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*core.Run{}
		}
		return r.JSON(runs)
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	if len(runs) == 0 {
		r.Println("No runs recorded yet.")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			run.ID,
			run.Environment,
			r.Status(string(run.Status)),
			run.StartedAt.Local().Format(time.DateTime),
			formatWatermark(run.Watermark),
			strconv.FormatInt(run.RowsWritten, 10),
			strconv.FormatBool(run.Truncated),
			run.Error,
		}
	}
	r.Table([]string{"id", "environment", "status", "started", "watermark", "rows", "truncated", "error"}, rows)
	return nil
}
