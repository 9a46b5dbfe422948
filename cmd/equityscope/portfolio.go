package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show current holdings with live prices",
	RunE:  runPortfolio,
}

var portfolioResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all holdings and trade history",
	RunE:  runPortfolioReset,
}

func init() {
	portfolioCmd.AddCommand(portfolioResetCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	statuses, err := a.LedgerService.PortfolioStatus(context.Background())
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		cmd.Println("No holdings.")
		return nil
	}

	cmd.Printf("%-14s %8s %12s %12s %14s\n", "TICKER", "QTY", "AVG PRICE", "LIVE", "UNREALIZED P&L")
	for _, s := range statuses {
		live, pnl := "-", "-"
		if s.LivePrice != nil {
			live = formatPrice(*s.LivePrice)
		}
		if s.UnrealizedPnL != nil {
			pnl = formatPrice(*s.UnrealizedPnL)
		}
		cmd.Printf("%-14s %8d %12s %12s %14s\n", s.Ticker, s.Quantity, formatPrice(s.AvgPrice), live, pnl)
	}
	return nil
}

func runPortfolioReset(cmd *cobra.Command, args []string) error {
	a, err := ensureApp()
	if err != nil {
		return err
	}
	defer closeApp()

	if err := a.LedgerService.Reset(); err != nil {
		return err
	}
	cmd.Println("Portfolio reset.")
	return nil
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
