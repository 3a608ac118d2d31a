package core

// Materialization constants for destination tables.
// Only MaterializationTable (full replace) is executed; the others are
// recognized so that configuration errors can name them.
const (
	MaterializationTable       = "table"
	MaterializationView        = "view"
	MaterializationIncremental = "incremental"
)
