package interfaces

import (
	"context"
)

// LLMProvider identifies which backend serves chat completions
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for language model operations. The
// report assembler and ticker resolver consume Chat; the embedding index
// consumes Embed. Implementations may not support both (Claude serves chat
// only), so callers that need embeddings must be wired to a provider that
// supports them.
type LLMService interface {
	// Embed generates a fixed-dimension embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context in
	// chronological order, including any system prompt.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the service is operational.
	HealthCheck(ctx context.Context) error

	// Provider returns which backend this service talks to.
	Provider() LLMProvider

	// Close releases resources held by the service.
	Close() error
}
