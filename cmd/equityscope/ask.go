package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Ask a question about one or more NSE stocks",
	Long: `Resolves the companies mentioned in the query, scrapes any that are not
yet in the local corpus, and answers from retrieved fundamentals plus live
quotes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	query := strings.Join(args, " ")
	report, err := a.ReportService.GenerateReport(context.Background(), query)
	if err != nil {
		return err
	}

	cmd.Println(report.Answer)
	if len(report.Tickers) > 0 {
		cmd.Println()
		cmd.Printf("Tickers: %s\n", strings.Join(report.Tickers, ", "))
	}
	return nil
}
