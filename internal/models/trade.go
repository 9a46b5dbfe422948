package models

import (
	"time"
)

// TradeAction distinguishes the two sides of a simulated order
type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// Holding is the running position for one ticker. AvgPrice is the
// quantity-weighted average cost basis across all buys.
type Holding struct {
	Ticker    string    `json:"ticker" badgerhold:"key"`
	Quantity  int       `json:"quantity"`
	AvgPrice  float64   `json:"avg_price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Trade is one executed simulated order, append-only.
type Trade struct {
	ID         string      `json:"id" badgerhold:"key"`
	Ticker     string      `json:"ticker" badgerhold:"index"`
	Action     TradeAction `json:"action"`
	Price      float64     `json:"price"`
	Quantity   int         `json:"quantity"`
	ExecutedAt time.Time   `json:"executed_at"`
}

// PositionStatus is a holding joined with a live quote for display.
// LivePrice and UnrealizedPnL are nil when the quote lookup failed.
type PositionStatus struct {
	Ticker        string   `json:"ticker"`
	Quantity      int      `json:"quantity"`
	AvgPrice      float64  `json:"avg_price"`
	LivePrice     *float64 `json:"live_price,omitempty"`
	UnrealizedPnL *float64 `json:"unrealized_pnl,omitempty"`
}
