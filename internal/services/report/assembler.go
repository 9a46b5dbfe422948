package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
	"github.com/equityscope/equityscope/internal/services/chathistory"
	"github.com/equityscope/equityscope/internal/services/ledger"
	"github.com/equityscope/equityscope/internal/services/resolver"
)

const noTickerMessage = "I could not identify any valid stock tickers in your query. Please specify a valid NSE stock."

// Service assembles answers to user queries: it resolves tickers, scrapes
// documents that are missing from the corpus, retrieves grounding context
// and live quotes per company, and asks the LLM for the final analysis.
// Every answered query is recorded in the chat history.
type Service struct {
	tickers    interfaces.TickerResolver
	retriever  interfaces.Retriever
	scraper    interfaces.Scraper
	quotes     interfaces.QuoteService
	llm        interfaces.LLMService
	ledger     *ledger.Service
	history    *chathistory.Service
	contextK   int
	defaultQty int
	logger     arbor.ILogger
}

type Config struct {
	ContextK        int
	DefaultQuantity int
}

func NewService(
	tickers interfaces.TickerResolver,
	retrieverService interfaces.Retriever,
	scraperService interfaces.Scraper,
	quotes interfaces.QuoteService,
	llm interfaces.LLMService,
	ledgerService *ledger.Service,
	history *chathistory.Service,
	config Config,
	logger arbor.ILogger,
) *Service {
	if config.ContextK <= 0 {
		config.ContextK = 3
	}
	if config.DefaultQuantity <= 0 {
		config.DefaultQuantity = 1
	}
	return &Service{
		tickers:    tickers,
		retriever:  retrieverService,
		scraper:    scraperService,
		quotes:     quotes,
		llm:        llm,
		ledger:     ledgerService,
		history:    history,
		contextK:   config.ContextK,
		defaultQty: config.DefaultQuantity,
		logger:     logger,
	}
}

// GenerateReport answers an analysis query end to end. A query with no
// resolvable ticker gets a guidance message, not an error.
func (s *Service) GenerateReport(ctx context.Context, query string) (*models.Report, error) {
	detected, err := s.tickers.ResolveTickers(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(detected) == 0 {
		return &models.Report{Answer: noTickerMessage}, nil
	}

	if err := s.scrapeMissing(ctx, detected); err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Scraping missing tickers failed, answering from available data")
	}

	var contextBlocks, quoteBlocks strings.Builder
	for _, fullTicker := range detected {
		bare := common.BareTicker(fullTicker)

		chunkContext, err := s.retriever.GetContext(ctx, query, s.contextK, bare)
		if err != nil {
			return nil, fmt.Errorf("context retrieval failed for %s: %w", bare, err)
		}
		if chunkContext == "" {
			chunkContext = fmt.Sprintf("No specific data available from screener.in for %s.", bare)
		}
		fmt.Fprintf(&contextBlocks, "\n--- %s ---\n%s\n", bare, chunkContext)

		quoteLine := s.quoteLine(ctx, fullTicker)
		fmt.Fprintf(&quoteBlocks, "\n--- %s ---\n%s\n", bare, quoteLine)
	}

	prompt := fmt.Sprintf(analystPromptFormat,
		time.Now().Format("2006-01-02"),
		contextBlocks.String(),
		quoteBlocks.String(),
		query,
	)

	answer, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("analysis generation failed: %w", err)
	}
	answer = strings.TrimSpace(answer)

	if _, err := s.history.SaveChat(query, answer, detected); err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Failed to record chat history")
	}

	return &models.Report{
		Answer:  answer,
		Tickers: detected,
	}, nil
}

// ExecuteTrade parses and executes a buy/sell command against the simulated
// ledger at the current live price. The trade fails if no live price is
// available; orders are never filled at a made-up price.
func (s *Service) ExecuteTrade(ctx context.Context, query string) (*models.Report, error) {
	intent, ok := resolver.ParseTradeIntent(query)
	if !ok {
		return &models.Report{Answer: "I could not understand the trade command. Use e.g. 'buy 5 reliance' or 'sell 3 tcs'."}, nil
	}

	detected, err := s.tickers.ResolveTickers(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(detected) == 0 {
		return &models.Report{Answer: noTickerMessage}, nil
	}
	fullTicker := detected[0]

	quantity := intent.Quantity
	if quantity == 0 {
		quantity = s.defaultQty
	}

	price, err := s.quotes.GetLivePrice(ctx, fullTicker)
	if err != nil {
		return nil, fmt.Errorf("cannot execute trade without a live price for %s: %w", fullTicker, err)
	}

	var trade *models.Trade
	switch intent.Action {
	case models.TradeActionBuy:
		trade, err = s.ledger.ExecuteBuy(fullTicker, price, quantity)
	case models.TradeActionSell:
		trade, err = s.ledger.ExecuteSell(fullTicker, price, quantity)
	}
	if err != nil {
		return nil, err
	}

	answer := fmt.Sprintf("%s order executed: %d shares of %s at %.2f",
		trade.Action, trade.Quantity, trade.Ticker, trade.Price)

	return &models.Report{
		Answer:  answer,
		Tickers: []string{fullTicker},
	}, nil
}

// scrapeMissing scrapes every detected ticker that has no indexed document
func (s *Service) scrapeMissing(ctx context.Context, detected []string) error {
	available, err := s.retriever.AvailableTickers(ctx)
	if err != nil {
		return err
	}

	indexed := make(map[string]bool, len(available))
	for _, t := range available {
		indexed[common.BareTicker(t)] = true
	}

	var missing []string
	for _, fullTicker := range detected {
		bare := common.BareTicker(fullTicker)
		if !indexed[bare] {
			missing = append(missing, bare)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	s.logger.Info().
		Strs("tickers", missing).
		Msg("Scraping data for unindexed tickers")

	return s.scraper.Scrape(ctx, missing)
}

func (s *Service) quoteLine(ctx context.Context, fullTicker string) string {
	price, err := s.quotes.GetLivePrice(ctx, fullTicker)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("ticker", fullTicker).
			Msg("Live price unavailable for report")
		return fmt.Sprintf("Could not fetch live price for %s.", fullTicker)
	}
	return fmt.Sprintf("Live Price of %s: %.2f", fullTicker, price)
}
