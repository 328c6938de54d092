package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"estadocuenta/internal/factura"
	"estadocuenta/internal/logger"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a single factura to the spreadsheet",
	Long: `Create one factura through the write endpoint. The row is checked with the
same rules used when reading, so what you add shows up as you expect.`,
	Example: `  # New unpaid factura
  estadocuenta add --factura A-0042 --fecha 2024-03-01 --cliente "Acme SA" --importe 1234.50 --debe SI

  # Preview the record without sending it
  estadocuenta add --factura A-0042 --cliente Acme --importe 80 --dry-run`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addRecordFlags(addCmd)
	addCmd.Flags().Bool("dry-run", false, "Print the record but don't send it")
	addCmd.Flags().Int("timeout", 60, "Timeout in seconds")

	addCmd.MarkFlagRequired("factura")
}

func runAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("add")

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	row, err := rowFromFlags(cmd, cfg.Today())
	if err != nil {
		return err
	}

	rec, err := factura.Normalize(row, 0)
	if err != nil {
		return fmt.Errorf("invalid factura: %w", err)
	}
	rec = factura.Classify(rec, cfg.Today())

	out := cmd.OutOrStdout()
	renderRecords(out, []factura.Record{rec}, criteriaAll())
	if dryRun {
		fmt.Fprintln(out, mutedStyle.Render("Dry run: nothing was sent."))
		return nil
	}

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	be, err := newBackend(ctx, cfg, log)
	if err != nil {
		return err
	}

	resp, err := be.writer.Create(ctx, row)
	if err != nil {
		log.Error().Err(err).Str("invoice_number", rec.InvoiceNumber).Msg("Failed to add factura")
		return fmt.Errorf("failed to add factura %s: %w", rec.InvoiceNumber, err)
	}

	log.Info().Str("invoice_number", rec.InvoiceNumber).Msg("Factura added")
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Factura %s agregada", rec.InvoiceNumber)))
	if resp != "" {
		fmt.Fprintln(out, mutedStyle.Render(resp))
	}
	return nil
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("factura", "", "Invoice number [REQUIRED]")
	cmd.Flags().String("fecha", "", "Issue date (YYYY-MM-DD, default: today)")
	cmd.Flags().String("cliente", "", "Client name")
	cmd.Flags().String("importe", "", "Amount")
	cmd.Flags().String("condicion", "", "Payment terms")
	cmd.Flags().String("recibo", "", "Receipt reference")
	cmd.Flags().String("vencimiento", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().String("debe", "SI", "Owed flag: SI (unpaid), NO (pending), empty (paid)")
	cmd.Flags().String("detalle", "", "Detail")
	cmd.Flags().String("patente", "", "License plate")
}

// rowFromFlags builds a spreadsheet row. Dates are written dd/mm/yyyy, the
// way the sheet is kept.
func rowFromFlags(cmd *cobra.Command, today time.Time) (factura.RawRow, error) {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return strings.TrimSpace(v)
	}

	nro := get("factura")
	if nro == "" {
		return nil, fmt.Errorf("--factura must not be empty")
	}

	issued := today
	if v := get("fecha"); v != "" {
		t, err := factura.ParseQueryDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --fecha %q, expected YYYY-MM-DD", v)
		}
		issued = t
	}

	row := factura.RawRow{
		factura.ColFecha:     issued.Format("02/01/2006"),
		factura.ColFactura:   nro,
		factura.ColImporte:   get("importe"),
		factura.ColCliente:   get("cliente"),
		factura.ColCondicion: get("condicion"),
		factura.ColRecibo:    get("recibo"),
		factura.ColDebe:      strings.ToUpper(get("debe")),
		factura.ColDetalle:   get("detalle"),
		factura.ColPatente:   get("patente"),
	}

	if v := get("vencimiento"); v != "" {
		t, err := factura.ParseQueryDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --vencimiento %q, expected YYYY-MM-DD", v)
		}
		row[factura.ColVencimiento] = t.Format("02/01/2006")
	}

	return row, nil
}
