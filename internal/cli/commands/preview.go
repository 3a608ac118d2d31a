package commands

import (
	"fmt"
	"strconv"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/output"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/engine"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/materialize"
	"github.com/spf13/cobra"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	Limit     int
	Watermark string
}

// PreviewOutput is the JSON shape of a preview.
type PreviewOutput struct {
	Coverage calendar.Coverage `json:"coverage"`
	Rows     []calendar.Day    `json:"rows"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show generated calendar rows without writing them",
		Long: `Generate the calendar exactly as run would and print the first rows.
Nothing is written to the warehouse or the state database.`,
		Example: `  # Show the first 10 days
  datespine preview

  # Show 31 days against a fixed watermark
  datespine preview --limit 31 --watermark 2020-01-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Maximum number of rows to show (0 for all)")
	cmd.Flags().StringVar(&opts.Watermark, "watermark", "", "Use this date (YYYY-MM-DD) instead of the upstream watermark")

	return cmd
}

func runPreview(cmd *cobra.Command, opts *PreviewOptions) error {
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	wm, err := parseWatermark(opts.Watermark)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Preview(cmd.Context(), engine.RunOptions{Watermark: wm}, opts.Limit)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		rows := res.Rows
		if rows == nil {
			rows = []calendar.Day{}
		}
		return r.JSON(PreviewOutput{Coverage: res.Coverage, Rows: rows})
	}

	r.Header(1, "Calendar preview")
	r.KeyValue("Coverage", res.Coverage.String())
	r.Println("")
	if len(res.Rows) == 0 {
		r.Println("(0 rows)")
		return nil
	}

	rows := make([][]string, len(res.Rows))
	for i, d := range res.Rows {
		rows[i] = []string{
			d.DateKey.Format(calendar.DateLayout),
			strconv.Itoa(d.Year),
			strconv.Itoa(d.Month),
			d.MonthName,
			strconv.Itoa(d.Quarter),
			strconv.Itoa(d.DayOfWeek),
			d.DayName,
			d.LoadTimestamp.Format("2006-01-02 15:04:05"),
		}
	}
	r.Table(materialize.ColumnNames(), rows)
	if len(res.Rows) < res.Coverage.Days {
		r.Printf("(%d of %d rows)\n", len(res.Rows), res.Coverage.Days)
	}
	return nil
}
