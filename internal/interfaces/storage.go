package interfaces

import (
	"context"

	"github.com/equityscope/equityscope/internal/models"
)

// StorageManager provides access to all persistent storage concerns
type StorageManager interface {
	LedgerStorage() LedgerStorage
	ChatStorage() ChatStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}

// LedgerStorage persists holdings and the append-only trade log
type LedgerStorage interface {
	GetHolding(ticker string) (*models.Holding, error)
	UpsertHolding(holding *models.Holding) error
	DeleteHolding(ticker string) error
	ListHoldings() ([]*models.Holding, error)

	AppendTrade(trade *models.Trade) error
	ListTrades(ticker string) ([]*models.Trade, error)

	// Reset deletes all holdings and trades.
	Reset() error
}

// ChatStorage persists query/response history
type ChatStorage interface {
	SaveChat(record *models.ChatRecord) error
	ListChats() ([]*models.ChatRecord, error)
	DeleteChat(id string) error
}

// KeyValueStorage stores small configuration values and API keys
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)
}
