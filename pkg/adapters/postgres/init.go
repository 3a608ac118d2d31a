package postgres

import (
	"log/slog"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

func init() {
	dialect.Register(Dialect)
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
