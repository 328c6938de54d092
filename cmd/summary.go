package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"estadocuenta/internal/logger"
	"estadocuenta/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals by payment state, month and client",
	Long: `Print the totals of the filtered facturas split by payment state, then the
facturación of the current year by month and the ranking of clients over
every factura.`,
	Example: `  # Totals for everything
  estadocuenta summary

  # Owed totals for one client, top 5 clients
  estadocuenta summary --cliente acme --tab adeudadas --top 5`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	addFilterFlags(summaryCmd)
	summaryCmd.Flags().Int("top", 10, "Number of clients in the ranking (0 for all)")
	summaryCmd.Flags().Bool("json", false, "Print the report as JSON")
	summaryCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func runSummary(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("summary")

	top, _ := cmd.Flags().GetInt("top")
	asJSON, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	view, err := loadView(cmd, timeoutSecs, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view.Report); err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		return nil
	}

	renderCards(out, view.Report.Summary)
	fmt.Fprintf(out, "Adeudado: $ %s\n\n", report.FormatAmount(view.Report.Summary.Owed()))
	renderBreakdowns(out, view.Report, top)
	return nil
}
