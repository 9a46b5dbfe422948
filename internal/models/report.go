package models

// Report is the outcome of one natural-language query: the synthesized
// answer plus the tickers the query was resolved to. Answer carries a
// user-facing sentinel when no ticker could be identified or every
// external call degraded.
type Report struct {
	Answer  string   `json:"answer"`
	Tickers []string `json:"tickers"`
}
