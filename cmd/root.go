package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estadocuenta/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "estadocuenta",
	Short: "Estado de cuenta - accounts receivable from a Google Sheet",
	Long: `estadocuenta reads the facturas kept in a Google spreadsheet, works out how
long each one has been outstanding and whether it is paid, pending or unpaid,
and lets you filter, summarize, export and mark them as paid.

The spreadsheet is reached either through its Apps Script endpoints
(BACKEND=http, the default) or directly through the Sheets API
(BACKEND=sheets). The serve command exposes the same data to the dashboard.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("Root command executed")

		_ = cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
