package models

import (
	"time"
)

// ChatRecord is one persisted query/response exchange
type ChatRecord struct {
	ID        string    `json:"id" badgerhold:"key"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Tickers   []string  `json:"tickers,omitempty"` // Tickers resolved for this query
	CreatedAt time.Time `json:"created_at"`
}
