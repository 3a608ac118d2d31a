// Package core defines the shared language of the datespine system.
//
// This package contains:
//   - Domain entities (Relation, Run, RunOutcome)
//   - Service interfaces (Adapter, Store)
//   - Configuration types (TargetConfig)
//   - Materialization strategy names
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
