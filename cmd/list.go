package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"estadocuenta/internal/filter"
	"estadocuenta/internal/logger"
	"estadocuenta/internal/report"
	"estadocuenta/internal/session"
	"estadocuenta/internal/source"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List facturas with their aging and payment state",
	Long: `Load every factura from the spreadsheet, classify it and print the ones
matching the filters, followed by summary cards per payment state.

Tabs:
  todas      every factura
  mas-30     not paid and issued more than 30 days ago
  menos-30   not paid and issued 30 days ago or less
  pagadas    paid
  adeudadas  pending or unpaid`,
	Example: `  # Every factura
  estadocuenta list

  # Unpaid or pending facturas of one client
  estadocuenta list --cliente acme --tab adeudadas

  # Facturas issued in the first quarter, as JSON
  estadocuenta list --desde 2024-01-01 --hasta 2024-03-31 --json

  # Export the filtered view to Excel
  estadocuenta list --tab mas-30 --xlsx vencidas.xlsx`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	addFilterFlags(listCmd)
	listCmd.Flags().Bool("json", false, "Print the filtered facturas and summary as JSON")
	listCmd.Flags().String("xlsx", "", "Write the filtered facturas and summary to an Excel file")
	listCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")

	asJSON, _ := cmd.Flags().GetBool("json")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	view, err := loadView(cmd, timeoutSecs, log)
	if err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := writeWorkbook(xlsxPath, view, log); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		return nil
	}

	renderRecords(out, view.Records, view.Criteria)
	fmt.Fprintln(out)
	renderCards(out, view.Report.Summary)
	return nil
}

// loadedView is a session view together with the filters that produced it.
type loadedView struct {
	session.View
	Criteria filter.Criteria `json:"-"`
}

// loadView reads the flags, loads the records and applies the filters.
func loadView(cmd *cobra.Command, timeoutSecs int, log zerolog.Logger) (*loadedView, error) {
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}

	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	today, err := todayFromFlags(cmd, cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	be, err := newBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("backend", be.name).
		Str("cliente", criteria.Client).
		Str("tab", string(criteria.Tab)).
		Msg("Loading facturas")

	records, err := source.Load(ctx, be.source, today)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load facturas")
		return nil, fmt.Errorf("failed to load facturas: %w", err)
	}

	state := session.New(today).WithRecords(records).WithCriteria(criteria)
	return &loadedView{View: state.View(), Criteria: criteria}, nil
}

func writeWorkbook(path string, view *loadedView, log zerolog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close workbook")
		}
	}()

	if err := report.WriteXLSX(f, view.Records, view.Report); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	log.Info().
		Str("output_file", path).
		Int("facturas", len(view.Records)).
		Msg("Workbook written")
	return nil
}
