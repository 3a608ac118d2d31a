// Package state records datespine run history in SQLite.
package state

import (
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

// Type aliases for the run-history contracts defined in pkg/core.
type (
	// Store is an alias for core.Store.
	Store = core.Store

	// Run is an alias for core.Run.
	Run = core.Run

	// RunStatus is an alias for core.RunStatus.
	RunStatus = core.RunStatus

	// RunOutcome is an alias for core.RunOutcome.
	RunOutcome = core.RunOutcome
)

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
