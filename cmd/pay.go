package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"estadocuenta/internal/logger"
	"estadocuenta/internal/session"
	"estadocuenta/internal/writeback"
)

var payCmd = &cobra.Command{
	Use:   "pay [nroFactura]",
	Short: "Mark a factura as paid in the spreadsheet",
	Long: `Send "mark as paid" for the given invoice number to the write endpoint.
Every row carrying that number is affected. The local view is only updated
once the endpoint confirms the change.`,
	Example: `  # Mark factura A-0001 as paid
  estadocuenta pay A-0001

  # Give a slow endpoint more time
  estadocuenta pay A-0001 --timeout 120`,
	Args: cobra.ExactArgs(1),
	RunE: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func runPay(cmd *cobra.Command, args []string) error {
	nro := args[0]
	log := logger.WithInvoice("pay", nro)

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	be, err := newBackend(ctx, cfg, log)
	if err != nil {
		return err
	}

	sess := session.NewSession(be.source, be.writer, cfg.Today)
	if err := sess.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not load facturas, sending write-back anyway")
	}

	res := sess.DispatchMarkPaid(ctx, nro).Wait()
	if res.Err != nil {
		if errors.Is(res.Err, writeback.ErrMissingInvoiceNumber) {
			return fmt.Errorf("invoice number must not be empty")
		}
		return fmt.Errorf("failed to mark factura %s as paid: %w", nro, res.Err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Factura %s marcada como pagada", nro)))
	if res.Response != "" {
		fmt.Fprintln(out, mutedStyle.Render(res.Response))
	}
	renderCards(out, sess.State().View().Report.Summary)
	return nil
}
