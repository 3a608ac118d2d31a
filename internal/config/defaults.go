package config

import (
	"strings"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

// Default configuration values.
const (
	DefaultStartDate       = "2020-01-01"
	DefaultRowCount        = 10000
	DefaultLabelStyle      = "full"
	DefaultLabelCase       = "title"
	DefaultUpstreamTable   = "stock_quotes"
	DefaultUpstreamColumn  = "quote_date"
	DefaultDestinationName = "dim_date"
)

// ApplyDefaults fills unset project values.
func (p *ProjectConfig) ApplyDefaults() {
	if p == nil {
		return
	}
	if p.Calendar.StartDate == "" {
		p.Calendar.StartDate = DefaultStartDate
	}
	if p.Calendar.RowCount == 0 {
		p.Calendar.RowCount = DefaultRowCount
	}
	if p.Calendar.LabelStyle == "" {
		p.Calendar.LabelStyle = DefaultLabelStyle
	}
	if p.Calendar.LabelCase == "" {
		p.Calendar.LabelCase = DefaultLabelCase
	}
	if p.Upstream.Table == "" {
		p.Upstream.Table = DefaultUpstreamTable
	}
	if p.Upstream.Column == "" {
		p.Upstream.Column = DefaultUpstreamColumn
	}
	if p.Destination.Table == "" {
		p.Destination.Table = DefaultDestinationName
	}
	if p.Destination.Materialization == "" {
		p.Destination.Materialization = core.MaterializationTable
	}
	if p.Target != nil {
		ApplyTargetDefaults(p.Target)
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Type = strings.ToLower(t.Type)

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Type == "postgres" && t.Port == 0 {
		t.Port = 5432
	}
}
