package resolver

import (
	"regexp"
	"strconv"

	"github.com/equityscope/equityscope/internal/models"
)

var (
	buyPattern  = regexp.MustCompile(`(?i)\bbuy\b(?:\s+(\d+))?`)
	sellPattern = regexp.MustCompile(`(?i)\bsell\b(?:\s+(\d+))?`)
)

// TradeIntent is a parsed trade command. Quantity is zero when the query
// names no share count; the caller substitutes its configured default.
type TradeIntent struct {
	Action   models.TradeAction
	Quantity int
}

// ParseTradeIntent detects a buy/sell command like "buy 5 reliance" or
// "sell tcs". It returns false when the query contains neither verb; a buy
// verb wins when both appear.
func ParseTradeIntent(query string) (TradeIntent, bool) {
	if m := buyPattern.FindStringSubmatch(query); m != nil {
		return TradeIntent{Action: models.TradeActionBuy, Quantity: parseQuantity(m[1])}, true
	}
	if m := sellPattern.FindStringSubmatch(query); m != nil {
		return TradeIntent{Action: models.TradeActionSell, Quantity: parseQuantity(m[1])}, true
	}
	return TradeIntent{}, false
}

func parseQuantity(s string) int {
	if s == "" {
		return 0
	}
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return qty
}
