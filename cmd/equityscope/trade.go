package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade [command]",
	Short: "Execute a simulated buy or sell order",
	Long: `Parses a natural-language trade command like "buy 5 reliance" or
"sell 3 tcs", resolves the ticker, and fills the order in the simulated
ledger at the current live price.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrade,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
}

func runTrade(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	report, err := a.ReportService.ExecuteTrade(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	cmd.Println(report.Answer)
	return nil
}
