package scraper

import (
	"strconv"
	"strings"
)

// currencyMultipliers expands the abbreviated magnitudes screener.in uses
var currencyMultipliers = []struct {
	suffix     string
	multiplier float64
}{
	{"Cr", 1e7},
	{"L", 1e5},
	{"K", 1e3},
	{"M", 1e6},
	{"B", 1e9},
}

// cleanFinancialValue converts a scraped cell into a number where possible.
// Empty markers become nil, percentages lose their sign, abbreviated
// magnitudes are expanded, and anything unparseable is kept as the raw
// string rather than dropped.
func cleanFinancialValue(value string) interface{} {
	trimmed := strings.TrimSpace(value)
	switch trimmed {
	case "", "-", "--", "N/A", "NA", "n.a.":
		return nil
	}

	cleaned := strings.ReplaceAll(trimmed, ",", "")

	if strings.Contains(cleaned, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(cleaned, "%", "")), 64); err == nil {
			return f
		}
		return value
	}

	for _, m := range currencyMultipliers {
		if strings.HasSuffix(cleaned, m.suffix) {
			numPart := strings.TrimSpace(strings.TrimSuffix(cleaned, m.suffix))
			if f, err := strconv.ParseFloat(numPart, 64); err == nil {
				return f * m.multiplier
			}
		}
	}

	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return f
	}

	return value
}
