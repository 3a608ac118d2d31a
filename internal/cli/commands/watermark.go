package commands

import (
	"strconv"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/output"
	"github.com/spf13/cobra"
)

// CoverageOutput is the JSON shape of the watermark command.
type CoverageOutput struct {
	Upstream    string            `json:"upstream"`
	Destination string            `json:"destination"`
	Coverage    calendar.Coverage `json:"coverage"`
}

// NewWatermarkCommand creates the watermark command.
func NewWatermarkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watermark",
		Short: "Show the upstream watermark and planned calendar coverage",
		Long: `Read max(quote_date) from the upstream table and show which dates the
next run would cover. Flags configurations whose horizon ends before the
watermark.`,
		Example: `  datespine watermark
  datespine watermark -t prod --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatermark(cmd)
		},
	}
}

func runWatermark(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	cov, err := eng.Coverage(cmd.Context())
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(CoverageOutput{Upstream: eng.Upstream(), Destination: eng.Destination(), Coverage: cov})
	}

	r.Header(1, "Upstream watermark")
	r.KeyValue("Upstream", eng.Upstream())
	r.KeyValue("Watermark", cov.Watermark.String())
	r.KeyValue("Start date", formatDate(cov.Start))
	r.KeyValue("Horizon", formatDate(cov.Horizon))
	r.KeyValue("Coverage", cov.String())
	if cov.Truncated {
		r.Warning("calendar horizon ends " + strconv.FormatInt(cov.MissingDays, 10) +
			" days before the upstream watermark; raise calendar.row_count")
	}
	return nil
}
