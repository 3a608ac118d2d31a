// Package dialect provides warehouse dialect descriptors.
//
// A Dialect captures the handful of SQL differences the calendar writer has to
// care about: parameter placeholders, column type names, and how a staged table
// is swapped into place. Concrete dialects are registered by the adapter
// packages under pkg/adapters/.
package dialect

import (
	"fmt"
	"strconv"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

// PlaceholderStyle selects how bind parameters are written.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses "?" for every parameter (DuckDB, Snowflake).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses "$1", "$2", ... (PostgreSQL).
	PlaceholderDollar
)

// SwapMode selects how a fully staged table replaces the destination.
type SwapMode int

const (
	// SwapRename drops the destination and renames staging in one transaction.
	SwapRename SwapMode = iota
	// SwapCopy rewrites the destination from staging in one transaction.
	SwapCopy
	// SwapExchange uses an atomic ALTER TABLE ... SWAP WITH statement.
	SwapExchange
)

// String returns the configuration name of the swap mode.
func (m SwapMode) String() string {
	switch m {
	case SwapRename:
		return "rename"
	case SwapCopy:
		return "copy"
	case SwapExchange:
		return "exchange"
	default:
		return "unknown"
	}
}

// ColumnKind is the logical type of a destination column.
type ColumnKind int

// Column kinds used by the calendar dimension.
const (
	KindDate ColumnKind = iota
	KindInteger
	KindText
	KindTimestamp
)

// Dialect describes a warehouse SQL dialect.
type Dialect struct {
	Name          string
	DefaultSchema string
	Placeholder   PlaceholderStyle
	SwapMode      SwapMode

	// ColumnTypes maps logical kinds to DDL type names.
	ColumnTypes map[ColumnKind]string
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
// Returns "?" for PlaceholderQuestion style, "$1", "$2" etc. for PlaceholderDollar style.
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default:
		return "?"
	}
}

// ColumnType returns the DDL type name for a column kind.
func (d *Dialect) ColumnType(kind ColumnKind) string {
	if t, ok := d.ColumnTypes[kind]; ok {
		return t
	}
	return defaultColumnTypes[kind]
}

// Qualify renders a relation, filling in the default schema when the relation has none.
// A database without a schema would otherwise render as a two-part name that
// warehouses read as schema.table.
func (d *Dialect) Qualify(rel core.Relation) string {
	if rel.Schema == "" && d.DefaultSchema != "" {
		rel.Schema = d.DefaultSchema
	}
	return rel.String()
}

// Validate checks that the dialect is usable.
func (d *Dialect) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dialect name is required")
	}
	if d.SwapMode < SwapRename || d.SwapMode > SwapExchange {
		return fmt.Errorf("dialect %s: unknown swap mode %d", d.Name, d.SwapMode)
	}
	return nil
}

var defaultColumnTypes = map[ColumnKind]string{
	KindDate:      "DATE",
	KindInteger:   "INTEGER",
	KindText:      "VARCHAR",
	KindTimestamp: "TIMESTAMP",
}
