// Package config provides the shared project configuration types for datespine.
// This package is decoupled from CLI concerns so the engine wiring and the
// status server can load a project without going through cobra.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// TargetConfig is an alias for the shared warehouse target configuration.
type TargetConfig = core.TargetConfig

// CalendarConfig controls calendar generation.
type CalendarConfig struct {
	// StartDate is the first date_key (YYYY-MM-DD).
	StartDate string `koanf:"start_date" yaml:"start_date"`
	// RowCount bounds the number of generated days.
	RowCount int `koanf:"row_count" yaml:"row_count"`
	// LabelStyle is full or short.
	LabelStyle string `koanf:"label_style" yaml:"label_style"`
	// LabelCase is title, upper or lower.
	LabelCase string `koanf:"label_case" yaml:"label_case"`
	// FailOnTruncation fails a run whose watermark lies past the horizon.
	FailOnTruncation bool `koanf:"fail_on_truncation" yaml:"fail_on_truncation"`
}

// Start parses StartDate.
func (c CalendarConfig) Start() (time.Time, error) {
	return calendar.ParseDate(c.StartDate)
}

// Labels returns the label options.
func (c CalendarConfig) Labels() calendar.Labels {
	return calendar.Labels{
		Style: calendar.LabelStyle(strings.ToLower(c.LabelStyle)),
		Case:  calendar.LabelCase(strings.ToLower(c.LabelCase)),
	}
}

// UpstreamConfig locates the dataset whose maximum quote date bounds the calendar.
type UpstreamConfig struct {
	Database string `koanf:"database" yaml:"database,omitempty"`
	Schema   string `koanf:"schema" yaml:"schema,omitempty"`
	Table    string `koanf:"table" yaml:"table"`
	Column   string `koanf:"column" yaml:"column"`
}

// Relation returns the upstream relation.
func (u UpstreamConfig) Relation() core.Relation {
	return core.Relation{Database: u.Database, Schema: u.Schema, Name: u.Table}
}

// DestinationConfig locates the calendar table.
type DestinationConfig struct {
	Database        string `koanf:"database" yaml:"database,omitempty"`
	Schema          string `koanf:"schema" yaml:"schema,omitempty"`
	Table           string `koanf:"table" yaml:"table"`
	Materialization string `koanf:"materialization" yaml:"materialization"`
}

// Relation returns the destination relation.
func (d DestinationConfig) Relation() core.Relation {
	return core.Relation{Database: d.Database, Schema: d.Schema, Name: d.Table}
}

// ProjectConfig holds the configuration needed to build the calendar.
type ProjectConfig struct {
	Calendar    CalendarConfig    `koanf:"calendar" yaml:"calendar"`
	Upstream    UpstreamConfig    `koanf:"upstream" yaml:"upstream"`
	Destination DestinationConfig `koanf:"destination" yaml:"destination"`
	Target      *TargetConfig     `koanf:"target" yaml:"target,omitempty"`
}

// DefaultSchemaForType returns the default schema for a database type.
// It looks up the dialect in the registry; if not found, returns "main" as fallback.
func DefaultSchemaForType(dbType string) string {
	if d, ok := dialect.Get(dbType); ok && d.DefaultSchema != "" {
		return d.DefaultSchema
	}
	return "main"
}

// ValidateTarget checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	switch strings.ToLower(t.Type) {
	case "postgres":
		if t.Database == "" {
			return fmt.Errorf("postgres target requires database")
		}
	case "snowflake":
		if t.Account == "" {
			return fmt.Errorf("snowflake target requires account")
		}
		if t.User == "" {
			return fmt.Errorf("snowflake target requires user")
		}
	}
	return nil
}
