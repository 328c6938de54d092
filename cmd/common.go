package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"estadocuenta/internal/config"
	"estadocuenta/internal/factura"
	"estadocuenta/internal/filter"
	"estadocuenta/internal/sheets"
	"estadocuenta/internal/source"
	"estadocuenta/internal/writeback"
)

// backend bundles where facturas are read from and written to.
type backend struct {
	source source.RowSource
	writer writeback.Writer
	name   string
}

// loadConfig loads the environment configuration and logs validation errors.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, fmt.Errorf("invalid configuration, check your .env file: %w", err)
	}
	factura.SetLocation(cfg.Location())
	return cfg, nil
}

// createContext creates a context with timeout and signal handling. A zero
// timeout means no deadline.
func createContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// newBackend builds the read source and write-back target for the
// configured backend.
func newBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendSheets:
		svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			if errors.Is(err, sheets.ErrMissingCredentials) {
				log.Error().Err(err).Msg("Google credentials not configured")
				return nil, fmt.Errorf("missing Google credentials. Please set one of:\n" +
					"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n" +
					"  GOOGLE_CREDENTIALS='<json-credentials>'\n" +
					"Original error: %w", err)
			}
			return nil, fmt.Errorf("failed to create Google Sheets service: %w", err)
		}
		ws := svc.Worksheet(cfg.GoogleSheetWorksheet)
		log.Debug().Str("worksheet", ws.Name()).Msg("Using Google Sheets backend")
		return &backend{
			source: source.NewSheetsSource(svc, ws.Name()),
			writer: ws,
			name:   config.BackendSheets,
		}, nil
	default:
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		log.Debug().Str("read_url", cfg.ReadURL).Msg("Using Apps Script backend")
		return &backend{
			source: source.NewHTTPSource(cfg.ReadURL, client),
			writer: writeback.NewClient(cfg.WriteURL, client),
			name:   config.BackendHTTP,
		}, nil
	}
}

// addFilterFlags registers the filters shared by list and summary.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("cliente", "c", "", "Filtrar por cliente (sin distinguir mayúsculas)")
	cmd.Flags().StringP("tab", "t", string(filter.TabAll), "Pestaña: todas, mas-30, menos-30, pagadas, adeudadas")
	cmd.Flags().String("desde", "", "Fecha de emisión desde (YYYY-MM-DD)")
	cmd.Flags().String("hasta", "", "Fecha de emisión hasta (YYYY-MM-DD)")
	cmd.Flags().String("fecha", "", "Fecha de referencia para la antigüedad (YYYY-MM-DD, default: hoy)")
}

// criteriaFromFlags reads the filter flags.
func criteriaFromFlags(cmd *cobra.Command) (filter.Criteria, error) {
	clientQuery, _ := cmd.Flags().GetString("cliente")
	tabFlag, _ := cmd.Flags().GetString("tab")
	from, _ := cmd.Flags().GetString("desde")
	to, _ := cmd.Flags().GetString("hasta")

	tab, err := filter.ParseTab(tabFlag)
	if err != nil {
		return filter.Criteria{}, err
	}
	c := filter.Criteria{Client: clientQuery, Tab: tab}

	if from != "" {
		t, err := factura.ParseQueryDate(from)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("invalid --desde %q, expected YYYY-MM-DD", from)
		}
		c.From = &t
	}
	if to != "" {
		t, err := factura.ParseQueryDate(to)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("invalid --hasta %q, expected YYYY-MM-DD", to)
		}
		c.To = &t
	}
	return c, nil
}

// todayFromFlags returns --fecha if set, otherwise today in the configured
// time zone.
func todayFromFlags(cmd *cobra.Command, cfg *config.Config) (time.Time, error) {
	ref, _ := cmd.Flags().GetString("fecha")
	if ref == "" {
		return cfg.Today(), nil
	}
	t, err := factura.ParseQueryDate(ref)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --fecha %q, expected YYYY-MM-DD", ref)
	}
	return t, nil
}

func criteriaAll() filter.Criteria {
	return filter.Criteria{Tab: filter.TabAll}
}
