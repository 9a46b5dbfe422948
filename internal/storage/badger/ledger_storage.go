package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

// LedgerStorage implements the LedgerStorage interface for Badger
type LedgerStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewLedgerStorage creates a new LedgerStorage instance
func NewLedgerStorage(db *BadgerDB, logger arbor.ILogger) interfaces.LedgerStorage {
	return &LedgerStorage{
		db:     db,
		logger: logger,
	}
}

// GetHolding returns the holding for a ticker, or nil when none exists
func (s *LedgerStorage) GetHolding(ticker string) (*models.Holding, error) {
	var holding models.Holding
	err := s.db.Store().Get(ticker, &holding)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding for %s: %w", ticker, err)
	}
	return &holding, nil
}

// UpsertHolding inserts or replaces the holding for a ticker
func (s *LedgerStorage) UpsertHolding(holding *models.Holding) error {
	if holding.Ticker == "" {
		return fmt.Errorf("holding ticker is required")
	}
	if err := s.db.Store().Upsert(holding.Ticker, holding); err != nil {
		return fmt.Errorf("failed to save holding for %s: %w", holding.Ticker, err)
	}
	return nil
}

// DeleteHolding removes the holding for a ticker
func (s *LedgerStorage) DeleteHolding(ticker string) error {
	err := s.db.Store().Delete(ticker, models.Holding{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete holding for %s: %w", ticker, err)
	}
	return nil
}

// ListHoldings returns all holdings sorted by ticker
func (s *LedgerStorage) ListHoldings() ([]*models.Holding, error) {
	var holdings []*models.Holding
	if err := s.db.Store().Find(&holdings, (&badgerhold.Query{}).SortBy("Ticker")); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

// AppendTrade records one executed trade
func (s *LedgerStorage) AppendTrade(trade *models.Trade) error {
	if trade.ID == "" {
		return fmt.Errorf("trade ID is required")
	}
	if err := s.db.Store().Insert(trade.ID, trade); err != nil {
		return fmt.Errorf("failed to record trade %s: %w", trade.ID, err)
	}
	return nil
}

// ListTrades returns trades in execution order. An empty ticker lists all.
func (s *LedgerStorage) ListTrades(ticker string) ([]*models.Trade, error) {
	query := &badgerhold.Query{}
	if ticker != "" {
		query = badgerhold.Where("Ticker").Eq(ticker).Index("Ticker")
	}

	var trades []*models.Trade
	if err := s.db.Store().Find(&trades, query.SortBy("ExecutedAt")); err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// Reset deletes all holdings and trades
func (s *LedgerStorage) Reset() error {
	if err := s.db.Store().DeleteMatching(models.Holding{}, nil); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}
	if err := s.db.Store().DeleteMatching(models.Trade{}, nil); err != nil {
		return fmt.Errorf("failed to clear trades: %w", err)
	}
	s.logger.Info().Msg("Ledger reset: holdings and trades cleared")
	return nil
}
