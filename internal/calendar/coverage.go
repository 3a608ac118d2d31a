package calendar

import (
	"fmt"
	"time"
)

// Coverage describes the date range a generation pass covers relative to the
// configured horizon and the upstream watermark.
type Coverage struct {
	Start     time.Time `json:"start"`
	Horizon   time.Time `json:"horizon"` // Start + RowCount - 1
	Watermark Watermark `json:"watermark"`

	// From and To bound the generated rows; both are zero when Days is 0.
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
	Days int       `json:"days"`

	// Truncated is set when the watermark lies past the horizon.
	Truncated   bool  `json:"truncated"`
	MissingDays int64 `json:"missing_days,omitempty"`
}

// Plan computes the coverage for wm without generating rows.
func (g *Generator) Plan(wm Watermark) Coverage {
	start := DateOf(g.Start)
	cov := Coverage{Start: start, Watermark: wm}
	if g.RowCount <= 0 {
		return cov
	}
	cov.Horizon = start.AddDate(0, 0, g.RowCount-1)

	if !wm.Valid || wm.Date.Before(start) {
		return cov
	}

	cov.From = start
	cov.To = wm.Date
	if wm.Date.After(cov.Horizon) {
		cov.To = cov.Horizon
		cov.Truncated = true
		cov.MissingDays = DaysBetween(cov.Horizon, wm.Date)
	}
	cov.Days = int(DaysBetween(cov.From, cov.To)) + 1
	return cov
}

// Empty reports whether no rows are covered.
func (c Coverage) Empty() bool {
	return c.Days == 0
}

// String summarizes the coverage for logs and terminal output.
func (c Coverage) String() string {
	if c.Empty() {
		return fmt.Sprintf("no days (start %s, watermark %s)", c.Start.Format(DateLayout), c.Watermark)
	}
	s := fmt.Sprintf("%s..%s (%d days)", c.From.Format(DateLayout), c.To.Format(DateLayout), c.Days)
	if c.Truncated {
		s += fmt.Sprintf(", truncated at horizon %s, %d days short of watermark %s",
			c.Horizon.Format(DateLayout), c.MissingDays, c.Watermark)
	}
	return s
}
