package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/popvault/popdash/internal/server"
)

var (
	servePort    int
	serveProfile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dataset over HTTP",
	Long: `Loads the configured source once and serves filtering, category
tallies, and rankings as a JSON API. POST /api/reload re-fetches the
source at runtime; queries already in flight keep the snapshot they
started with.

Examples:
  # Serve the configured source on the configured port
  popdash serve

  # Override the port
  popdash serve --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		profile, err := resolveProfile(serveProfile)
		if err != nil {
			return err
		}

		runner := newRunner(cfg.Source.Location, profile)
		ds, err := runner.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: initial load")
		}
		if ds.Diagnostics.AllPricesMissing() {
			zap.L().Warn("serve: every record is missing a price; queries will be refused")
		}
		if ds.Diagnostics.AllVolumesMissing() {
			zap.L().Warn("serve: every record is missing a volume; queries will be refused")
		}

		srv := server.New(cfg.Server, cfg.Query, runner, ds)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default from config)")
	serveCmd.Flags().StringVar(&serveProfile, "profile", "", "schema profile YAML (default from config)")
	rootCmd.AddCommand(serveCmd)
}
