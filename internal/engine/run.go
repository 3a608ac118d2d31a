package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/materialize"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/watermark"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

// ErrTruncated is returned when fail_on_truncation is set and the upstream
// watermark lies past the calendar horizon.
var ErrTruncated = errors.New("calendar horizon ends before the upstream watermark")

// RunOptions adjusts a single run.
type RunOptions struct {
	// Watermark overrides the upstream watermark when set.
	Watermark *time.Time
}

// Run performs one full-replace build of the calendar dimension and records
// it in the state store. Every failure is recorded as a failed run.
func (e *Engine) Run(ctx context.Context, env string, opts RunOptions) (*core.Run, error) {
	if env == "" {
		env = e.environment
	}

	e.logger.Info("starting run", "environment", env, "destination", e.Destination())

	run := &core.Run{
		Environment: env,
		Destination: e.Destination(),
		StartDate:   calendar.DateOf(e.generator.Start),
		RowLimit:    e.generator.RowCount,
	}
	if err := e.store.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	e.logger.Debug("created run", "run_id", run.ID)

	outcome, runErr := e.execute(ctx, opts)
	if runErr != nil {
		outcome.Status = core.RunStatusFailed
		outcome.Error = runErr.Error()
		e.logger.Error("run failed", "run_id", run.ID, "error", runErr.Error())
	} else {
		outcome.Status = core.RunStatusCompleted
		e.logger.Info("run completed", "run_id", run.ID, "rows", outcome.RowsWritten, "watermark", watermarkString(outcome.Watermark))
	}

	if err := e.store.CompleteRun(run.ID, outcome); err != nil {
		e.logger.Warn("failed to record run outcome", "run_id", run.ID, "error", err)
	}
	if recorded, err := e.store.GetRun(run.ID); err == nil {
		run = recorded
	}
	return run, runErr
}

func (e *Engine) execute(ctx context.Context, opts RunOptions) (core.RunOutcome, error) {
	var outcome core.RunOutcome

	if err := e.ensureDBConnected(ctx); err != nil {
		return outcome, err
	}

	wm, err := e.readWatermark(ctx, opts)
	if err != nil {
		return outcome, err
	}
	if wm.Valid {
		d := wm.Date
		outcome.Watermark = &d
	}

	res := e.generator.Generate(wm)
	outcome.Truncated = res.Coverage.Truncated

	if res.Coverage.Truncated {
		e.logger.Warn("calendar truncated at horizon before upstream watermark",
			"horizon", res.Coverage.Horizon.Format(calendar.DateLayout),
			"watermark", wm.String(),
			"missing_days", res.Coverage.MissingDays,
			"row_count", e.generator.RowCount)
		if e.failOnTruncation {
			return outcome, fmt.Errorf("%w: %s", ErrTruncated, res.Coverage)
		}
	}
	if res.Coverage.Empty() {
		e.logger.Info("no calendar days to write; destination will be empty", "watermark", wm.String())
	}

	stats, err := e.writer().Write(ctx, res.Rows)
	outcome.RowsWritten = stats.Rows
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Preview generates the calendar without writing it. A positive limit caps
// the returned rows; coverage always describes the full result.
func (e *Engine) Preview(ctx context.Context, opts RunOptions, limit int) (calendar.Result, error) {
	wm, err := e.readWatermark(ctx, opts)
	if err != nil {
		return calendar.Result{}, err
	}
	res := e.generator.Generate(wm)
	if limit > 0 && len(res.Rows) > limit {
		res.Rows = res.Rows[:limit]
	}
	return res, nil
}

// Coverage reads the upstream watermark and plans coverage without generating rows.
func (e *Engine) Coverage(ctx context.Context) (calendar.Coverage, error) {
	wm, err := e.readWatermark(ctx, RunOptions{})
	if err != nil {
		return calendar.Coverage{}, err
	}
	return e.generator.Plan(wm), nil
}

func (e *Engine) readWatermark(ctx context.Context, opts RunOptions) (calendar.Watermark, error) {
	src, err := e.watermarkSource(ctx, opts)
	if err != nil {
		return calendar.Watermark{}, err
	}
	wm, err := src.MaxObservedDate(ctx)
	if err != nil {
		return calendar.Watermark{}, fmt.Errorf("failed to read upstream watermark: %w", err)
	}
	e.logger.Debug("upstream watermark", "upstream", e.Upstream(), "watermark", wm.String())
	return wm, nil
}

func (e *Engine) watermarkSource(ctx context.Context, opts RunOptions) (watermark.Source, error) {
	if opts.Watermark != nil {
		return watermark.Static{Watermark: calendar.At(*opts.Watermark)}, nil
	}
	if e.source != nil {
		return e.source, nil
	}
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	return &watermark.SQLSource{
		Querier:  e.db,
		Relation: e.upstream,
		Column:   e.upstreamColumn,
		Dialect:  e.dialect,
	}, nil
}

func (e *Engine) writer() *materialize.Writer {
	return &materialize.Writer{
		Adapter:     e.db,
		Dialect:     e.dialect,
		Destination: e.destination,
		Strategy:    e.materialization,
		BatchSize:   e.batchSize,
		Logger:      e.logger,
	}
}

func watermarkString(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(calendar.DateLayout)
}
