package interfaces

import (
	"context"
)

// Scraper fetches company fundamentals and persists one JSON document per
// ticker into the document store directory. Scraping is best-effort per
// ticker: individual failures are logged and skipped, not returned.
type Scraper interface {
	// Scrape fetches and saves documents for the given bare tickers.
	Scrape(ctx context.Context, tickers []string) error
}
