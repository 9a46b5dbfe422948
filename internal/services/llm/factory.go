package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
)

// NewLLMService creates the chat LLM service selected by llm.default_provider.
func NewLLMService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := interfaces.LLMProvider(strings.ToLower(strings.TrimSpace(config.LLM.DefaultProvider)))
	if provider == "" {
		provider = interfaces.LLMProviderGemini
	}

	switch provider {
	case interfaces.LLMProviderGemini:
		return NewGeminiService(config, kvStorage, logger)
	case interfaces.LLMProviderClaude:
		return NewClaudeService(config, kvStorage, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: gemini, claude)", provider)
	}
}

// NewEmbeddingService creates the embedding provider. Only Gemini exposes an
// embeddings API, so the vector index always embeds through it regardless of
// the configured chat provider.
func NewEmbeddingService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (interfaces.LLMService, error) {
	return NewGeminiService(config, kvStorage, logger)
}
