package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

// mockLLM returns a canned chat response and records the prompt it received
type mockLLM struct {
	response string
	err      error
	prompt   string
}

func (m *mockLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) > 0 {
		m.prompt = messages[len(messages)-1].Content
	}
	return m.response, m.err
}

func (m *mockLLM) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLM) Provider() interfaces.LLMProvider      { return interfaces.LLMProviderGemini }
func (m *mockLLM) Close() error                          { return nil }

func TestResolveTickers(t *testing.T) {
	t.Log("=== Testing Ticker Resolution ===")

	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{
			name:     "clean JSON array",
			response: `["TCS.NS", "RELIANCE.NS"]`,
			want:     []string{"TCS.NS", "RELIANCE.NS"},
		},
		{
			name:     "bare tickers get suffix",
			response: `["TCS", "INFY"]`,
			want:     []string{"TCS.NS", "INFY.NS"},
		},
		{
			name:     "markdown fenced response",
			response: "```json\n[\"HDFCBANK.NS\"]\n```",
			want:     []string{"HDFCBANK.NS"},
		},
		{
			name:     "comma separated fallback",
			response: "TCS.NS, INFY.NS",
			want:     []string{"TCS.NS", "INFY.NS"},
		},
		{
			name:     "duplicates collapsed",
			response: `["TCS.NS", "tcs", "TCS.NS"]`,
			want:     []string{"TCS.NS"},
		},
		{
			name:     "NONE sentinel rejected",
			response: `["NONE"]`,
			want:     []string{},
		},
		{
			name:     "empty array",
			response: `[]`,
			want:     []string{},
		},
		{
			name:     "chatty non-JSON noise rejected",
			response: "I could not find any listed company in that query.",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(&mockLLM{response: tt.response}, arbor.NewLogger())
			got, err := service.ResolveTickers(context.Background(), "some query")
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	t.Log("✅ Model output parsed defensively with normalization")
}

func TestResolveTickers_QueryInPrompt(t *testing.T) {
	llm := &mockLLM{response: `[]`}
	service := NewService(llm, arbor.NewLogger())

	_, err := service.ResolveTickers(context.Background(), "how is Infosys doing?")
	require.NoError(t, err)
	assert.Contains(t, llm.prompt, `"how is Infosys doing?"`)
}

func TestResolveTickers_EmptyQuery(t *testing.T) {
	service := NewService(&mockLLM{response: `["TCS.NS"]`}, arbor.NewLogger())

	got, err := service.ResolveTickers(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveTickers_LLMError(t *testing.T) {
	t.Log("=== Testing Resolution Degrades on LLM Failure ===")

	service := NewService(&mockLLM{err: fmt.Errorf("rate limited")}, arbor.NewLogger())

	got, err := service.ResolveTickers(context.Background(), "buy reliance")
	require.NoError(t, err, "an LLM outage means no tickers, not a failed query")
	assert.Empty(t, got)

	t.Log("✅ LLM failure treated as no tickers identified")
}

func TestParseTradeIntent(t *testing.T) {
	t.Log("=== Testing Trade Intent Parsing ===")

	tests := []struct {
		name     string
		query    string
		want     TradeIntent
		detected bool
	}{
		{"buy with quantity", "buy 5 reliance", TradeIntent{models.TradeActionBuy, 5}, true},
		{"sell with quantity", "please sell 12 TCS shares", TradeIntent{models.TradeActionSell, 12}, true},
		{"buy without quantity", "buy infosys", TradeIntent{models.TradeActionBuy, 0}, true},
		{"case insensitive", "BUY 3 HDFC Bank", TradeIntent{models.TradeActionBuy, 3}, true},
		{"buy wins over sell", "sell or buy 2 tcs", TradeIntent{models.TradeActionBuy, 2}, true},
		{"no verb", "how is the IT sector doing", TradeIntent{}, false},
		{"substring is not a verb", "the buyer backed out", TradeIntent{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, ok := ParseTradeIntent(tt.query)
			assert.Equal(t, tt.detected, ok)
			if tt.detected {
				assert.Equal(t, tt.want, intent)
			}
		})
	}

	t.Log("✅ Buy/sell verbs and quantities detected")
}
