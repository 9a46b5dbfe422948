package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNSETicker(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare ticker", "TCS", "TCS.NS", true},
		{"already suffixed", "TCS.NS", "TCS.NS", true},
		{"lowercase", "tcs.ns", "TCS.NS", true},
		{"quoted", `"RELIANCE.NS"`, "RELIANCE.NS", true},
		{"whitespace", "  INFY  ", "INFY.NS", true},
		{"ampersand code", "M&M", "M&M.NS", true},
		{"hyphenated code", "BAJAJ-AUTO", "BAJAJ-AUTO.NS", true},
		{"none sentinel", "NONE", "", false},
		{"empty", "", "", false},
		{"sentence", "the ticker is TCS", "", false},
		{"leading symbol", "&TCS", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeNSETicker(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBareTicker(t *testing.T) {
	assert.Equal(t, "TCS", BareTicker("TCS.NS"))
	assert.Equal(t, "TCS", BareTicker("tcs"))
	assert.Equal(t, "INFY", BareTicker("  infy.ns "))
	assert.Equal(t, "", BareTicker(""))
}

func TestQuoteSymbol(t *testing.T) {
	assert.Equal(t, "TCS.NS", QuoteSymbol("TCS"))
	assert.Equal(t, "TCS.NS", QuoteSymbol("TCS.NS"))
}
