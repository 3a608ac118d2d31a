package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/materialize"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

// Validate checks the project configuration and reports every problem found.
func (p *ProjectConfig) Validate() error {
	var errs []error

	start, err := p.Calendar.Start()
	if err != nil {
		errs = append(errs, fmt.Errorf("calendar.start_date: %w", err))
	} else if start.IsZero() {
		errs = append(errs, errors.New("calendar.start_date is required"))
	}
	if p.Calendar.RowCount <= 0 {
		errs = append(errs, fmt.Errorf("calendar.row_count must be positive, got %d", p.Calendar.RowCount))
	}
	if err := p.Calendar.Labels().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("calendar: %w", err))
	}

	if err := p.Upstream.Relation().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("upstream: %w", err))
	}
	if !core.ValidIdentifier(p.Upstream.Column) {
		errs = append(errs, fmt.Errorf("upstream.column: invalid identifier %q", p.Upstream.Column))
	}

	if err := p.Destination.Relation().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("destination: %w", err))
	}
	if err := materialize.ValidateStrategy(p.Destination.Materialization); err != nil {
		errs = append(errs, fmt.Errorf("destination.materialization: %w", err))
	}

	if err := ValidateTarget(p.Target); err != nil {
		errs = append(errs, fmt.Errorf("target: %w", err))
	} else if strings.EqualFold(p.Target.Type, "postgres") {
		// a postgres connection is bound to one database
		if p.Upstream.Database != "" || p.Destination.Database != "" {
			errs = append(errs, errors.New("postgres relations cannot name a database; set target.database instead"))
		}
	}

	return errors.Join(errs...)
}
