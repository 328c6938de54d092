package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"estadocuenta/internal/jobs"
	"estadocuenta/internal/logger"
	"estadocuenta/internal/proxy"
	"estadocuenta/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the same-origin proxy and dashboard API",
	Long: `Serve the endpoints the dashboard talks to:

  GET  /api/fetchFacturas               relay of the read endpoint
  POST /api/marcarPagada                relay of the write endpoint
  GET  /api/facturas                    filtered facturas with summary
  POST /api/facturas/{nro}/pagada       mark a factura as paid
  POST /api/facturas/recargar           reload from the spreadsheet

The loaded facturas can be refreshed on a cron schedule with --refresh.`,
	Example: `  # Serve on the configured address
  estadocuenta serve

  # Reload every five minutes
  estadocuenta serve --addr :9090 --refresh "@every 5m"`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: LISTEN_ADDR)")
	serveCmd.Flags().String("refresh", "", "Cron schedule for reloading facturas (default: REFRESH_SCHEDULE)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ListenAddr
	}
	schedule := cfg.RefreshSchedule
	if cmd.Flags().Changed("refresh") {
		schedule, _ = cmd.Flags().GetString("refresh")
	}

	ctx, cancel := createContext(0, log)
	defer cancel()

	be, err := newBackend(ctx, cfg, log)
	if err != nil {
		return err
	}

	sess := session.NewSession(be.source, be.writer, cfg.Today)
	if err := sess.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial load failed, serving without facturas until the next reload")
	}

	refresher, err := jobs.NewRefresher(schedule, cfg.Location(), sess, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule: %w", err)
	}
	refresher.Start()
	defer refresher.Stop()

	srv := proxy.NewServer(proxy.Options{
		ReadURL:    cfg.ReadURL,
		WriteURL:   cfg.WriteURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Session:    sess,
	})

	log.Info().
		Str("addr", addr).
		Str("backend", be.name).
		Str("refresh", schedule).
		Msg("Serving")

	return srv.ListenAndServe(ctx, addr)
}
