package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
)

// ClaudeService implements the LLMService interface using the Anthropic
// Messages API. Claude does not expose an embeddings API, so Embed always
// returns an error; embedding callers must use the Gemini service.
type ClaudeService struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  anthropic.Client
	timeout time.Duration
}

// NewClaudeService creates a new Claude LLM service instance. The API key
// is resolved env -> KV store -> config fallback.
func NewClaudeService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*ClaudeService, error) {
	ctx := context.Background()
	apiKey, err := common.ResolveAPIKey(ctx, kvStorage, "anthropic_api_key", config.Claude.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API key is required (set EQUITYSCOPE_CLAUDE_API_KEY, the anthropic_api_key KV entry, or claude.api_key in config): %w", err)
	}

	if config.Claude.Model == "" {
		config.Claude.Model = "claude-sonnet-4-20250514"
	}
	if config.Claude.MaxTokens <= 0 {
		config.Claude.MaxTokens = 4096
	}

	timeout := common.ParseDurationOr(config.Claude.Timeout, 2*time.Minute, logger)

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	service := &ClaudeService{
		config:  &config.Claude,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Info().
		Str("model", config.Claude.Model).
		Int("max_tokens", config.Claude.MaxTokens).
		Dur("timeout", timeout).
		Msg("Claude LLM service initialized")

	return service, nil
}

// Embed is not supported by the Anthropic API
func (s *ClaudeService) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("claude provider does not support embeddings; use the gemini provider")
}

// Chat generates a completion response based on the conversation history.
// System messages are lifted into the request's System field.
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params, err := s.buildMessageParams(messages)
	if err != nil {
		return "", err
	}

	start := time.Now()

	message, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Claude chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	var response strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Claude chat completion completed")

	return response.String(), nil
}

// HealthCheck verifies the API is reachable with a minimal completion
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := s.client.Messages.New(probeCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: 8,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Claude health check failed: %w", err)
	}

	return nil
}

// Provider returns the Claude provider identifier
func (s *ClaudeService) Provider() interfaces.LLMProvider {
	return interfaces.LLMProviderClaude
}

// Close is a no-op for the Anthropic client
func (s *ClaudeService) Close() error {
	return nil
}

func (s *ClaudeService) buildMessageParams(messages []interfaces.Message) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.config.Model),
		MaxTokens:   int64(s.config.MaxTokens),
		Temperature: anthropic.Float(float64(s.config.Temperature)),
	}

	var systemText string
	anthropicMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	if len(anthropicMessages) == 0 {
		return params, fmt.Errorf("at least one message must have role 'user'")
	}

	params.Messages = anthropicMessages
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	return params, nil
}
