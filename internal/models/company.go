package models

import (
	"time"
)

// CompanyDocument is one scraped record per NSE-listed company, stored as
// {TICKER}.json in the document directory. The scraper owns writes; the
// indexing pipeline treats documents as read-only.
//
// Table sections map row label -> column label -> value. Values are kept as
// interface{} because screener.in mixes numerics and formatted strings
// ("28.5", "1,20,000 Cr.").
type CompanyDocument struct {
	Ticker      string `json:"ticker" validate:"required"`
	CompanyName string `json:"company_name" validate:"required"`

	Ratios              map[string]interface{}            `json:"ratios,omitempty"`
	ProfitLoss          map[string]map[string]interface{} `json:"profit_loss,omitempty"`
	BalanceSheet        map[string]map[string]interface{} `json:"balance_sheet,omitempty"`
	CashFlow            map[string]map[string]interface{} `json:"cash_flow,omitempty"`
	RatiosTable         map[string]map[string]interface{} `json:"ratios_table,omitempty"`
	ShareholdingPattern map[string]map[string]interface{} `json:"shareholding_pattern,omitempty"`
	PeerComparison      map[string]map[string]interface{} `json:"peer_comparison,omitempty"`

	News          []NewsItem  `json:"news,omitempty"`
	Events        []EventItem `json:"events,omitempty"`
	Announcements []EventItem `json:"announcements,omitempty"`

	// Scrape metadata
	ScrapedAt time.Time `json:"scraped_at"`
	SourceURL string    `json:"source_url,omitempty"`
}

// NewsItem is one news entry attached to a company document
type NewsItem struct {
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
}

// EventItem is one corporate event or exchange announcement
type EventItem struct {
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// DisplayName returns the company name, falling back to the ticker when the
// scraper could not extract one.
func (d *CompanyDocument) DisplayName() string {
	if d.CompanyName != "" {
		return d.CompanyName
	}
	return d.Ticker
}
