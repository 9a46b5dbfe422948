package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

func setupTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	return manager
}

func TestKVStorage_CaseInsensitiveKeys(t *testing.T) {
	t.Log("=== Testing KV Storage Key Normalization ===")

	manager := setupTestManager(t)
	kv := manager.KeyValueStorage()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "Gemini_API_Key", "secret-1"))

	value, err := kv.Get(ctx, "GEMINI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "secret-1", value)

	value, err = kv.Get(ctx, "  gemini_api_key  ")
	require.NoError(t, err)
	assert.Equal(t, "secret-1", value)

	// Overwrite through a differently-cased key updates the same entry
	require.NoError(t, kv.Set(ctx, "gemini_api_key", "secret-2"))
	all, err := kv.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "secret-2", all["gemini_api_key"])

	require.NoError(t, kv.Delete(ctx, "GEMINI_api_key"))
	_, err = kv.Get(ctx, "gemini_api_key")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	t.Log("✅ Keys normalized to lowercase across Set/Get/Delete")
}

func TestKVStorage_MissingKey(t *testing.T) {
	manager := setupTestManager(t)
	kv := manager.KeyValueStorage()

	_, err := kv.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	err = kv.Delete(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestLedgerStorage_HoldingsRoundTrip(t *testing.T) {
	t.Log("=== Testing Ledger Holdings Round Trip ===")

	manager := setupTestManager(t)
	ledger := manager.LedgerStorage()

	missing, err := ledger.GetHolding("TCS.NS")
	require.NoError(t, err)
	assert.Nil(t, missing, "unknown ticker returns nil holding, not an error")

	require.NoError(t, ledger.UpsertHolding(&models.Holding{
		Ticker:    "TCS.NS",
		Quantity:  10,
		AvgPrice:  3500.50,
		UpdatedAt: time.Now(),
	}))
	require.NoError(t, ledger.UpsertHolding(&models.Holding{
		Ticker:    "INFY.NS",
		Quantity:  5,
		AvgPrice:  1450.00,
		UpdatedAt: time.Now(),
	}))

	holding, err := ledger.GetHolding("TCS.NS")
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, 10, holding.Quantity)
	assert.Equal(t, 3500.50, holding.AvgPrice)

	holdings, err := ledger.ListHoldings()
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "INFY.NS", holdings[0].Ticker, "holdings sorted by ticker")
	assert.Equal(t, "TCS.NS", holdings[1].Ticker)

	require.NoError(t, ledger.DeleteHolding("TCS.NS"))
	holding, err = ledger.GetHolding("TCS.NS")
	require.NoError(t, err)
	assert.Nil(t, holding)

	t.Log("✅ Holdings stored, listed sorted, and deleted")
}

func TestLedgerStorage_TradesAndReset(t *testing.T) {
	manager := setupTestManager(t)
	ledger := manager.LedgerStorage()

	base := time.Now().Add(-time.Hour)
	trades := []*models.Trade{
		{ID: common.NewTradeID(), Ticker: "TCS.NS", Action: models.TradeActionBuy, Price: 3500, Quantity: 10, ExecutedAt: base},
		{ID: common.NewTradeID(), Ticker: "INFY.NS", Action: models.TradeActionBuy, Price: 1450, Quantity: 5, ExecutedAt: base.Add(time.Minute)},
		{ID: common.NewTradeID(), Ticker: "TCS.NS", Action: models.TradeActionSell, Price: 3600, Quantity: 4, ExecutedAt: base.Add(2 * time.Minute)},
	}
	for _, trade := range trades {
		require.NoError(t, ledger.AppendTrade(trade))
	}

	all, err := ledger.ListTrades("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.TradeActionBuy, all[0].Action, "trades in execution order")
	assert.Equal(t, models.TradeActionSell, all[2].Action)

	tcsOnly, err := ledger.ListTrades("TCS.NS")
	require.NoError(t, err)
	require.Len(t, tcsOnly, 2)
	for _, trade := range tcsOnly {
		assert.Equal(t, "TCS.NS", trade.Ticker)
	}

	require.NoError(t, ledger.UpsertHolding(&models.Holding{Ticker: "TCS.NS", Quantity: 6, AvgPrice: 3500}))
	require.NoError(t, ledger.Reset())

	all, err = ledger.ListTrades("")
	require.NoError(t, err)
	assert.Empty(t, all)
	holdings, err := ledger.ListHoldings()
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestLedgerStorage_AppendTradeRequiresID(t *testing.T) {
	manager := setupTestManager(t)

	err := manager.LedgerStorage().AppendTrade(&models.Trade{Ticker: "TCS.NS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade ID is required")
}

func TestChatStorage_CRUD(t *testing.T) {
	t.Log("=== Testing Chat Storage CRUD ===")

	manager := setupTestManager(t)
	chat := manager.ChatStorage()

	base := time.Now().Add(-time.Hour)
	first := &models.ChatRecord{
		ID:        common.NewChatID(),
		Query:     "How is TCS performing?",
		Response:  "TCS shows steady revenue growth.",
		Tickers:   []string{"TCS.NS"},
		CreatedAt: base,
	}
	second := &models.ChatRecord{
		ID:        common.NewChatID(),
		Query:     "Compare TCS and Infosys",
		Response:  "Both are large-cap IT exporters.",
		Tickers:   []string{"TCS.NS", "INFY.NS"},
		CreatedAt: base.Add(time.Minute),
	}
	require.NoError(t, chat.SaveChat(second))
	require.NoError(t, chat.SaveChat(first))

	records, err := chat.ListChats()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID, "records listed oldest-first")
	assert.Equal(t, []string{"TCS.NS", "INFY.NS"}, records[1].Tickers)

	require.NoError(t, chat.DeleteChat(first.ID))
	records, err = chat.ListChats()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second.ID, records[0].ID)

	err = chat.DeleteChat("missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	t.Log("✅ Chat records saved, listed chronologically, and deleted")
}

func TestManager_ResetOnStartup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	logger := arbor.NewLogger()

	manager, err := NewManager(logger, &common.BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, manager.KeyValueStorage().Set(context.Background(), "k", "v"))
	require.NoError(t, manager.Close())

	// Reopening with reset_on_startup wipes prior state
	manager, err = NewManager(logger, &common.BadgerConfig{Path: dir, ResetOnStartup: true})
	require.NoError(t, err)
	defer manager.Close()

	_, err = manager.KeyValueStorage().Get(context.Background(), "k")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}
