package commands

import (
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only status API",
		Long: `Serve run history and calendar coverage over HTTP.

Endpoints:
  GET /healthz
  GET /api/runs?limit=N
  GET /api/runs/latest?env=NAME
  GET /api/runs/{id}
  GET /api/coverage`,
		Example: `  datespine serve
  datespine serve --addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = cmdCtx.Cfg.Server.Addr
			}
			srv := server.New(server.Config{
				Status: cmdCtx.Engine,
				Addr:   addr,
				Logger: cmdCtx.Logger,
			})
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")

	return cmd
}
