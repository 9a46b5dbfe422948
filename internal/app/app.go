package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/services/chathistory"
	"github.com/equityscope/equityscope/internal/services/chunker"
	"github.com/equityscope/equityscope/internal/services/docstore"
	"github.com/equityscope/equityscope/internal/services/freshness"
	"github.com/equityscope/equityscope/internal/services/ledger"
	"github.com/equityscope/equityscope/internal/services/llm"
	"github.com/equityscope/equityscope/internal/services/quotes"
	"github.com/equityscope/equityscope/internal/services/report"
	"github.com/equityscope/equityscope/internal/services/resolver"
	"github.com/equityscope/equityscope/internal/services/retriever"
	"github.com/equityscope/equityscope/internal/services/scraper"
	"github.com/equityscope/equityscope/internal/services/vectorindex"
	badgerstorage "github.com/equityscope/equityscope/internal/storage/badger"
)

// App wires all application components together
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Retrieval pipeline
	DocumentStore    interfaces.DocumentStore
	RetrieverService interfaces.Retriever

	// Collaborators
	ScraperService  interfaces.Scraper
	QuoteService    interfaces.QuoteService
	LLMService      interfaces.LLMService
	EmbedService    interfaces.LLMService
	ResolverService *resolver.Service
	LedgerService   *ledger.Service
	HistoryService  *chathistory.Service
	ReportService   *report.Service

	scheduler *cron.Cron
}

// New initializes all services in dependency order. Storage comes first so
// the LLM factories can resolve API keys from the KV store.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badgerstorage.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	chatLLM, err := llm.NewLLMService(config, storageManager.KeyValueStorage(), logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	// Embeddings always go through Gemini; reuse the chat service when it
	// already is one.
	embedLLM := chatLLM
	if chatLLM.Provider() != interfaces.LLMProviderGemini {
		embedLLM, err = llm.NewEmbeddingService(config, storageManager.KeyValueStorage(), logger)
		if err != nil {
			chatLLM.Close()
			storageManager.Close()
			return nil, fmt.Errorf("failed to initialize embedding service: %w", err)
		}
	}

	documentStore, err := docstore.NewService(config, logger)
	if err != nil {
		if embedLLM != chatLLM {
			embedLLM.Close()
		}
		chatLLM.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	retrieverService := retriever.NewService(
		documentStore,
		chunker.NewService(logger),
		vectorindex.NewBuilder(embedLLM, logger),
		freshness.NewTracker(documentStore.Dir(), logger),
		embedLLM,
		config.Retrieval.AutoRefresh,
		logger,
	)

	quoteService := quotes.NewClient(
		quotes.WithBaseURL(config.Quotes.BaseURL),
		quotes.WithRateLimit(config.Quotes.RateLimit),
		quotes.WithLogger(logger),
	)

	scraperService := scraper.NewService(config, logger)
	resolverService := resolver.NewService(chatLLM, logger)
	ledgerService := ledger.NewService(storageManager.LedgerStorage(), quoteService, logger)
	historyService := chathistory.NewService(storageManager.ChatStorage(), logger)

	reportService := report.NewService(
		resolverService,
		retrieverService,
		scraperService,
		quoteService,
		chatLLM,
		ledgerService,
		historyService,
		report.Config{
			ContextK:        config.Retrieval.ContextK,
			DefaultQuantity: config.Ledger.DefaultQuantity,
		},
		logger,
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		StorageManager:   storageManager,
		DocumentStore:    documentStore,
		RetrieverService: retrieverService,
		ScraperService:   scraperService,
		QuoteService:     quoteService,
		LLMService:       chatLLM,
		EmbedService:     embedLLM,
		ResolverService:  resolverService,
		LedgerService:    ledgerService,
		HistoryService:   historyService,
		ReportService:    reportService,
	}

	if config.Refresh.Enabled {
		if err := a.startScheduler(); err != nil {
			a.Close()
			return nil, err
		}
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("llm_provider", string(chatLLM.Provider())).
		Bool("scheduled_refresh", config.Refresh.Enabled).
		Msg("Application initialized")

	return a, nil
}

// startScheduler runs the configured re-scrape schedule. Each run scrapes
// the tracked tickers (or everything already indexed when none are
// configured); the next query picks up the new documents through the
// fingerprint check.
func (a *App) startScheduler() error {
	a.scheduler = cron.New(cron.WithSeconds())

	_, err := a.scheduler.AddFunc(a.Config.Refresh.Schedule, a.runScheduledRefresh)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", a.Config.Refresh.Schedule, err)
	}

	a.scheduler.Start()
	a.Logger.Info().
		Str("schedule", a.Config.Refresh.Schedule).
		Strs("tickers", a.Config.Refresh.Tickers).
		Msg("Scheduled document refresh enabled")

	return nil
}

func (a *App) runScheduledRefresh() {
	ctx := context.Background()

	tickers := a.Config.Refresh.Tickers
	if len(tickers) == 0 {
		indexed, err := a.RetrieverService.AvailableTickers(ctx)
		if err != nil {
			a.Logger.Error().Err(err).Msg("Scheduled refresh could not list indexed tickers")
			return
		}
		tickers = indexed
	}
	if len(tickers) == 0 {
		a.Logger.Debug().Msg("Scheduled refresh skipped, nothing to refresh")
		return
	}

	a.Logger.Info().
		Int("tickers", len(tickers)).
		Msg("Running scheduled document refresh")

	if err := a.ScraperService.Scrape(ctx, tickers); err != nil {
		a.Logger.Error().Err(err).Msg("Scheduled refresh failed")
	}
}

// Close shuts down components in reverse dependency order
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	// EmbedService aliases LLMService when the chat provider is Gemini
	if a.EmbedService != nil && a.EmbedService != a.LLMService {
		if err := a.EmbedService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Embedding service close failed")
		}
	}
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("LLM service close failed")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
	}
}
