package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [ticker]...",
	Short: "Scrape screener.in data for the given tickers",
	Long: `Fetches fundamentals, news, and corporate events from screener.in and
saves one JSON document per ticker. Existing documents are rotated to
timestamped backups. The retrieval index picks the new documents up on the
next query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	if err := a.ScraperService.Scrape(context.Background(), args); err != nil {
		return err
	}

	cmd.Printf("Scraped: %s\n", strings.Join(args, ", "))
	return nil
}
