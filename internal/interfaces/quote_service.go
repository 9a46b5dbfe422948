package interfaces

import (
	"context"
)

// QuoteService looks up live market prices. Lookups are best-effort: an
// error means the price is simply unavailable and callers degrade to a
// sentinel rather than aborting multi-ticker work.
type QuoteService interface {
	// GetLivePrice returns the latest traded price for an exchange-suffixed
	// symbol (e.g., "TCS.NS").
	GetLivePrice(ctx context.Context, symbol string) (float64, error)
}
