package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

// Service maintains the simulated trade ledger: one holding per ticker with
// a quantity-weighted average cost, plus an append-only trade log. Holdings
// are keyed by the full .NS symbol.
type Service struct {
	storage interfaces.LedgerStorage
	quotes  interfaces.QuoteService
	logger  arbor.ILogger
}

func NewService(storage interfaces.LedgerStorage, quotes interfaces.QuoteService, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		quotes:  quotes,
		logger:  logger,
	}
}

// ExecuteBuy records a purchase, folding the fill into the average cost of
// any existing position.
func (s *Service) ExecuteBuy(ticker string, price float64, quantity int) (*models.Trade, error) {
	if err := validateOrder(price, quantity); err != nil {
		return nil, err
	}

	holding, err := s.storage.GetHolding(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load holding for %s: %w", ticker, err)
	}

	now := time.Now()
	if holding == nil {
		holding = &models.Holding{
			Ticker:   ticker,
			Quantity: quantity,
			AvgPrice: price,
		}
	} else {
		totalQty := holding.Quantity + quantity
		holding.AvgPrice = (float64(holding.Quantity)*holding.AvgPrice + float64(quantity)*price) / float64(totalQty)
		holding.Quantity = totalQty
	}
	holding.UpdatedAt = now

	if err := s.storage.UpsertHolding(holding); err != nil {
		return nil, fmt.Errorf("failed to update holding for %s: %w", ticker, err)
	}

	trade := &models.Trade{
		ID:         common.NewTradeID(),
		Ticker:     ticker,
		Action:     models.TradeActionBuy,
		Price:      price,
		Quantity:   quantity,
		ExecutedAt: now,
	}
	if err := s.storage.AppendTrade(trade); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("quantity", quantity).
		Float64("price", price).
		Float64("avg_price", holding.AvgPrice).
		Msg("Buy executed")

	return trade, nil
}

// ExecuteSell records a sale. Selling more than the held quantity fails
// with ErrInsufficientHoldings; the position is left untouched. The average
// cost never changes on a sell, and a position sold to zero is removed.
func (s *Service) ExecuteSell(ticker string, price float64, quantity int) (*models.Trade, error) {
	if err := validateOrder(price, quantity); err != nil {
		return nil, err
	}

	holding, err := s.storage.GetHolding(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load holding for %s: %w", ticker, err)
	}
	if holding == nil {
		return nil, fmt.Errorf("no holdings for %s: %w", ticker, interfaces.ErrInsufficientHoldings)
	}
	if quantity > holding.Quantity {
		return nil, fmt.Errorf("cannot sell %d of %s, only %d held: %w",
			quantity, ticker, holding.Quantity, interfaces.ErrInsufficientHoldings)
	}

	now := time.Now()
	holding.Quantity -= quantity
	holding.UpdatedAt = now

	if holding.Quantity == 0 {
		if err := s.storage.DeleteHolding(ticker); err != nil {
			return nil, fmt.Errorf("failed to close position for %s: %w", ticker, err)
		}
	} else {
		if err := s.storage.UpsertHolding(holding); err != nil {
			return nil, fmt.Errorf("failed to update holding for %s: %w", ticker, err)
		}
	}

	trade := &models.Trade{
		ID:         common.NewTradeID(),
		Ticker:     ticker,
		Action:     models.TradeActionSell,
		Price:      price,
		Quantity:   quantity,
		ExecutedAt: now,
	}
	if err := s.storage.AppendTrade(trade); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int("quantity", quantity).
		Float64("price", price).
		Int("remaining", holding.Quantity).
		Msg("Sell executed")

	return trade, nil
}

// PortfolioStatus joins each holding with a live quote. Quote failures
// degrade to a nil price and P&L rather than failing the whole listing.
func (s *Service) PortfolioStatus(ctx context.Context) ([]models.PositionStatus, error) {
	holdings, err := s.storage.ListHoldings()
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	statuses := make([]models.PositionStatus, 0, len(holdings))
	for _, holding := range holdings {
		status := models.PositionStatus{
			Ticker:   holding.Ticker,
			Quantity: holding.Quantity,
			AvgPrice: holding.AvgPrice,
		}

		price, err := s.quotes.GetLivePrice(ctx, holding.Ticker)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("ticker", holding.Ticker).
				Msg("Live price unavailable for position")
		} else {
			pnl := (price - holding.AvgPrice) * float64(holding.Quantity)
			status.LivePrice = &price
			status.UnrealizedPnL = &pnl
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// ListTrades returns the trade log, optionally filtered to one ticker
func (s *Service) ListTrades(ticker string) ([]*models.Trade, error) {
	return s.storage.ListTrades(ticker)
}

// Reset wipes all holdings and trades
func (s *Service) Reset() error {
	if err := s.storage.Reset(); err != nil {
		return fmt.Errorf("failed to reset portfolio: %w", err)
	}
	s.logger.Info().Msg("Portfolio reset")
	return nil
}

func validateOrder(price float64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("order quantity must be positive, got %d", quantity)
	}
	if price <= 0 {
		return fmt.Errorf("order price must be positive, got %.2f", price)
	}
	return nil
}
