package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/leaguerank/internal/api"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over a JSON HTTP API",
	Long: `Start a read-only JSON API in front of the prediction pipeline.

Routes:
  GET /healthz
  GET /api/v1/predictions?year=&teams=&bootstrap=&confidence=
  GET /api/v1/validation?folds=
  GET /api/v1/teams/{team}/form?year=
  GET /api/v1/runs?limit=

The server shuts down gracefully on SIGINT or SIGTERM.

Examples:
  leaguerank serve --addr :8080 --runs-backend sqlite
  curl 'localhost:8080/api/v1/predictions?year=2023&bootstrap=200'`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg, cacheManager).ListenAndServe(ctx, cfg.Addr)
	},
}
