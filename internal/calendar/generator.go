package calendar

import (
	"errors"
	"time"
)

// Generator produces calendar rows over [Start, min(Start+RowCount-1, watermark)].
type Generator struct {
	// Start is the first date_key. Only its calendar day is used.
	Start time.Time
	// RowCount is the maximum number of candidate days before the watermark filter.
	RowCount int
	// Labels controls month_name and day_name rendering.
	Labels Labels
	// Clock stamps load_timestamp. Defaults to time.Now.
	Clock func() time.Time
}

// Result is the output of one generation pass.
type Result struct {
	Rows     []Day    `json:"rows"`
	Coverage Coverage `json:"coverage"`
}

// Validate checks the generator configuration.
func (g *Generator) Validate() error {
	var errs []error
	if g.Start.IsZero() {
		errs = append(errs, errors.New("start date is required"))
	}
	if g.RowCount <= 0 {
		errs = append(errs, errors.New("row count must be positive"))
	}
	if err := g.Labels.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Generate returns the calendar rows bounded by wm, in ascending date_key
// order. An undefined watermark or one before Start yields no rows. When the
// watermark lies past the horizon the rows stop at the horizon and
// Coverage.Truncated is set.
func (g *Generator) Generate(wm Watermark) Result {
	cov := g.Plan(wm)
	rows := make([]Day, 0, cov.Days)
	if cov.Days == 0 {
		return Result{Rows: rows, Coverage: cov}
	}

	loaded := g.now()
	lb := g.Labels.labeler()
	start := DateOf(g.Start)

	for i := range Offsets(g.RowCount) {
		date := start.AddDate(0, 0, i)
		if date.After(wm.Date) {
			break
		}
		rows = append(rows, lb.day(date, loaded))
	}
	return Result{Rows: rows, Coverage: cov}
}

func (g *Generator) now() time.Time {
	if g.Clock != nil {
		return g.Clock().UTC()
	}
	return time.Now().UTC()
}
