// Package watermark reads the upstream bound for calendar generation: the
// maximum quote date observed in the upstream dataset.
package watermark

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// ErrUpstreamUnavailable is matched by every failure to read the upstream watermark.
var ErrUpstreamUnavailable = errors.New("upstream dataset unavailable")

// UpstreamError reports that the upstream relation could not be read.
type UpstreamError struct {
	Relation string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Relation, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUpstreamUnavailable) true for any UpstreamError.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// Source provides the maximum observed upstream date. An empty upstream
// dataset yields an undefined watermark, not an error.
type Source interface {
	MaxObservedDate(ctx context.Context) (calendar.Watermark, error)
}

// Querier is the subset of core.Adapter a SQLSource needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) (*sql.Row, error)
}

// SQLSource reads MAX(Column) from Relation.
type SQLSource struct {
	Querier  Querier
	Relation core.Relation
	Column   string
	Dialect  *dialect.Dialect
}

// Validate checks the relation and column identifiers.
func (s *SQLSource) Validate() error {
	if err := s.Relation.Validate(); err != nil {
		return fmt.Errorf("upstream relation: %w", err)
	}
	if !core.ValidIdentifier(s.Column) {
		return fmt.Errorf("invalid upstream column %q", s.Column)
	}
	return nil
}

// Query returns the aggregate statement issued against the upstream relation.
func (s *SQLSource) Query() string {
	rel := s.Relation.String()
	if s.Dialect != nil {
		rel = s.Dialect.Qualify(s.Relation)
	}
	return fmt.Sprintf("SELECT MAX(%s) FROM %s", s.Column, rel)
}

// MaxObservedDate implements Source.
func (s *SQLSource) MaxObservedDate(ctx context.Context) (calendar.Watermark, error) {
	if err := s.Validate(); err != nil {
		return calendar.Watermark{}, err
	}

	row, err := s.Querier.QueryRow(ctx, s.Query())
	if err != nil {
		return calendar.Watermark{}, &UpstreamError{Relation: s.Relation.String(), Err: err}
	}

	var maxDate sql.NullTime
	if err := row.Scan(&maxDate); err != nil {
		return calendar.Watermark{}, &UpstreamError{Relation: s.Relation.String(), Err: err}
	}
	if !maxDate.Valid {
		return calendar.Undefined(), nil
	}
	return calendar.At(maxDate.Time), nil
}

// Static is a Source with a fixed watermark.
type Static struct {
	Watermark calendar.Watermark
}

// MaxObservedDate implements Source.
func (s Static) MaxObservedDate(context.Context) (calendar.Watermark, error) {
	return s.Watermark, nil
}

var (
	_ Source = (*SQLSource)(nil)
	_ Source = Static{}
)
