package main

import (
	"context"

	"github.com/spf13/cobra"
)

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "List companies available in the local corpus",
	RunE:  runTickers,
}

func init() {
	rootCmd.AddCommand(tickersCmd)
}

func runTickers(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	tickers, err := a.RetrieverService.AvailableTickers(context.Background())
	if err != nil {
		return err
	}

	if len(tickers) == 0 {
		cmd.Println("No companies indexed yet. Run 'equityscope scrape <ticker>' first.")
		return nil
	}

	for _, ticker := range tickers {
		cmd.Println(ticker)
	}
	return nil
}
