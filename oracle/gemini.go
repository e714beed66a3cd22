package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"

	"tripsynth/fetch"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiOracle calls Google Gemini through langchaingo.
type GeminiOracle struct {
	client  llms.Model
	timeout time.Duration
}

func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGeminiWithModel(client, timeout), nil
}

func newGeminiWithModel(client llms.Model, timeout time.Duration) *GeminiOracle {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiOracle{client: client, timeout: timeout}
}

func (g *GeminiOracle) Complete(ctx context.Context, prompt string, opts ...Option) (string, error) {
	o := Apply(opts...)
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	resp, err := g.client.GenerateContent(ctx, messages,
		llms.WithTemperature(o.Temperature),
		llms.WithMaxTokens(o.MaxTokens),
	)
	if err != nil {
		return "", translateError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// translateError marks quota errors so callers can treat them as rate limits.
func translateError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota") {
		return fmt.Errorf("gemini: %w: %w", fetch.ErrRateLimited, err)
	}
	return fmt.Errorf("gemini: %w", err)
}
