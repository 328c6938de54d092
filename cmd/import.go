package cmd

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/importer"
	"estadocuenta/internal/logger"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Create facturas from an Excel or CSV file",
	Long: `Read facturas from an .xlsx, .xls or .csv file and create each row through
the write endpoint. The first row must hold the column names (FECHA, FACTURA,
IMPORTE, CLIENTE, ...). Rows are sent in parallel; a failing row does not
stop the others.`,
	Example: `  # Preview what would be created
  estadocuenta import facturas.xlsx --dry-run

  # Import with 8 parallel workers
  estadocuenta import facturas.csv --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "Parse and preview the rows without creating them")
	importCmd.Flags().Int("workers", 0, "Number of parallel workers (default: IMPORT_WORKERS)")
	importCmd.Flags().Int("timeout", 600, "Timeout in seconds")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import")
	path := args[0]

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	workers, _ := cmd.Flags().GetInt("workers")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.ImportWorkers
	}

	rows, err := importer.ParseFile(path)
	if err != nil {
		log.Error().Err(err).Str("input_file", path).Msg("Failed to read import file")
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	log.Info().Str("input_file", path).Int("rows", len(rows)).Msg("Import file parsed")

	out := cmd.OutOrStdout()
	if dryRun {
		renderRecords(out, factura.Build(rows, cfg.Today()), criteriaAll())
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Dry run: %d filas, nada fue enviado.", len(rows))))
		return nil
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("El archivo no tiene filas para importar."))
		return nil
	}

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	be, err := newBackend(ctx, cfg, log)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Importando facturas"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	results := importer.New(be.writer, workers).Run(ctx, rows, func(importer.Result) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	fmt.Fprintln(cmd.ErrOrStderr())

	var failed []importer.Result
	for _, res := range results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Importadas %d de %d facturas", len(results)-len(failed), len(results))))
	for _, res := range failed {
		// +2: header row plus one-based numbering
		fmt.Fprintf(out, "  fila %d (%v): %v\n", res.Index+2, res.Row[factura.ColFactura], res.Err)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d rows failed to import", len(failed), len(results))
	}
	return nil
}
