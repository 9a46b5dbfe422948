package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
)

const resolvePromptFormat = `Identify the NSE (National Stock Exchange of India) tickers for every company mentioned in this query: "%s"

Rules:
- Respond ONLY with a JSON array of ticker symbols with the .NS suffix, e.g. ["TCS.NS", "RELIANCE.NS"].
- If no NSE-listed company is mentioned, respond with [].
- No extra text, no markdown.`

// Service resolves company mentions in free-text queries to NSE ticker
// symbols by asking the chat LLM. The model output is treated as untrusted:
// it is parsed defensively and every candidate is validated and normalized
// before use.
type Service struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

func NewService(llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llm,
		logger: logger,
	}
}

// ResolveTickers returns the normalized .NS tickers mentioned in the query,
// deduplicated in mention order. An empty slice means no valid ticker was
// identified; that is not an error. A failed LLM call degrades the same
// way: the caller answers "no ticker found" rather than failing the query.
func (s *Service) ResolveTickers(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	response, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: fmt.Sprintf(resolvePromptFormat, query)},
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("query", query).
			Msg("Ticker resolution LLM call failed, treating as no tickers")
		return nil, nil
	}

	candidates := parseCandidates(response)

	tickers := make([]string, 0, len(candidates))
	seen := make(map[string]bool)
	for _, candidate := range candidates {
		ticker, ok := common.NormalizeNSETicker(candidate)
		if !ok {
			continue
		}
		if seen[ticker] {
			continue
		}
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}

	s.logger.Debug().
		Str("query", query).
		Strs("tickers", tickers).
		Msg("Resolved tickers from query")

	return tickers, nil
}

// parseCandidates extracts ticker candidates from the raw model output. It
// prefers a JSON array but falls back to splitting on commas and newlines,
// since models occasionally ignore the format instruction.
func parseCandidates(response string) []string {
	cleaned := stripCodeFence(strings.TrimSpace(response))
	if cleaned == "" {
		return nil
	}

	if start := strings.Index(cleaned, "["); start >= 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			var parsed []string
			if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err == nil {
				return parsed
			}
		}
	}

	return strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ',' || r == '\n'
	})
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ interfaces.TickerResolver = (*Service)(nil)
