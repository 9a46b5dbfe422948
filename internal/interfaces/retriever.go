package interfaces

import (
	"context"
)

// Retriever selects and formats grounding context from the vector index.
// All methods check document-store freshness first (when auto-refresh is
// enabled) and rebuild the index synchronously before serving.
type Retriever interface {
	// GetContext returns a formatted context string for the query. When
	// filterTicker is non-empty, chunks belonging to other tickers are
	// discarded entirely. Returns a sentinel string (never an error) when
	// the index is empty or no candidate survives filtering.
	GetContext(ctx context.Context, query string, k int, filterTicker string) (string, error)

	// GetCompanySummary concatenates all chunks for one ticker in fixed
	// type order (ratios, financials, news, events).
	GetCompanySummary(ctx context.Context, ticker string) (string, error)

	// AvailableTickers returns the sorted distinct tickers currently
	// indexed.
	AvailableTickers(ctx context.Context) ([]string, error)
}

// TickerResolver extracts canonical NSE tickers from free-form queries.
type TickerResolver interface {
	// ResolveTickers returns zero or more ".NS"-suffixed tickers found in
	// the query. Malformed model output and failed LLM calls both degrade
	// to an empty slice; the caller treats that as "no ticker identified".
	ResolveTickers(ctx context.Context, query string) ([]string, error)
}
