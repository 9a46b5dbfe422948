package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/equityscope/equityscope/internal/app"
	"github.com/equityscope/equityscope/internal/common"
)

var (
	configFiles []string
	logLevel    string

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "equityscope",
	Short: "RAG-backed NSE equity research assistant",
	Long: `EquityScope answers questions about NSE-listed companies by retrieving
scraped screener.in fundamentals through a vector index and grounding an LLM
on them, with live quotes and a simulated trade ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil,
		"configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level override (debug, info, warn, error)")
}

// ensureApp initializes the application once per invocation. Commands that
// need no services (version) never call it, so they run without config,
// storage, or API keys.
func ensureApp() (*app.App, error) {
	if application != nil {
		return application, nil
	}

	paths := configFiles
	if len(paths) == 0 {
		// Auto-discover a config file next to the binary or in the repo layout
		for _, candidate := range []string{"equityscope.toml", "deployments/local/equityscope.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				paths = []string{candidate}
				break
			}
		}
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	application, err = app.New(config, logger)
	if err != nil {
		return nil, err
	}
	return application, nil
}

func closeApp() {
	if application != nil {
		application.Close()
		application = nil
	}
}
