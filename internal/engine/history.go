package engine

import "github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"

// Runs returns the most recent runs, newest first.
func (e *Engine) Runs(limit int) ([]*core.Run, error) {
	return e.store.ListRuns(limit)
}

// LatestRun returns the most recent run for env, or the default environment when env is empty.
func (e *Engine) LatestRun(env string) (*core.Run, error) {
	if env == "" {
		env = e.environment
	}
	return e.store.GetLatestRun(env)
}

// GetRun returns a run by ID.
func (e *Engine) GetRun(id string) (*core.Run, error) {
	return e.store.GetRun(id)
}
