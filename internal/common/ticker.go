package common

import (
	"regexp"
	"strings"
)

// NSESuffix is the exchange suffix for NSE-listed symbols in quote feeds
// (e.g., "TCS.NS"). Scraped documents and the vector index use the bare
// code ("TCS"); quote lookups use the suffixed form.
const NSESuffix = ".NS"

// tickerPattern matches valid bare NSE ticker codes (e.g., "TCS", "M&M",
// "BAJAJ-AUTO"). Codes are uppercase alphanumerics with optional & or -.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9&-]*$`)

// NormalizeNSETicker canonicalizes a ticker token to the suffixed form
// "CODE.NS". Returns false when the token is not a plausible NSE ticker.
// Accepts both bare ("TCS") and suffixed ("TCS.NS") input, any casing,
// with surrounding whitespace or quote characters.
func NormalizeNSETicker(token string) (string, bool) {
	t := strings.TrimSpace(token)
	t = strings.Trim(t, `"'`)
	t = strings.ToUpper(t)

	if t == "" || t == "NONE" {
		return "", false
	}

	t = strings.TrimSuffix(t, NSESuffix)
	if !tickerPattern.MatchString(t) {
		return "", false
	}

	return t + NSESuffix, true
}

// BareTicker strips the NSE suffix, returning the code used for document
// filenames and index metadata ("TCS.NS" -> "TCS").
func BareTicker(ticker string) string {
	return strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(ticker)), NSESuffix)
}

// QuoteSymbol returns the suffixed symbol used for live-quote lookups
// ("TCS" -> "TCS.NS"). Already-suffixed input is returned unchanged.
func QuoteSymbol(ticker string) string {
	return BareTicker(ticker) + NSESuffix
}
