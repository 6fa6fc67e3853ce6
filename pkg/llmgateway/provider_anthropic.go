package llmgateway

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tmc/langchaingo/llms"
)

// AnthropicProvider is the "provider-a" backend, calling Claude
// directly via anthropic-sdk-go.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewAnthropicProvider builds an AnthropicProvider. baseURL is
// optional; an empty string uses the SDK's default endpoint.
func NewAnthropicProvider(apiKey, baseURL, model string, temperature float64, maxTokens int) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		client:      anthropic.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   int64(maxTokens),
	}
}

// rateLimitError marks 429 responses retryable explicitly; other SDK
// errors carry no Retryable verdict, which retry.Do also retries.
type rateLimitError struct{ err error }

func (e *rateLimitError) Error() string    { return e.err.Error() }
func (e *rateLimitError) Retryable() bool  { return true }
func (e *rateLimitError) Unwrap() error    { return e.err }

func (p *AnthropicProvider) Complete(ctx context.Context, system string, messages []llms.MessageContent) (string, error) {
	var userText string
	for _, m := range messages {
		for _, part := range m.Parts {
			if tp, ok := part.(llms.TextContent); ok {
				userText += tp.Text
			}
		}
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   p.maxTokens,
		Temperature: anthropic.Float(p.temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	})
	if err != nil {
		if isRateLimited(err) {
			return "", &rateLimitError{err: err}
		}
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}

func isRateLimited(err error) bool {
	var apiErr *anthropic.Error
	if ok := asAnthropicError(err, &apiErr); ok {
		return apiErr.StatusCode == 429
	}
	return false
}

func asAnthropicError(err error, target **anthropic.Error) bool {
	e, ok := err.(*anthropic.Error)
	if ok {
		*target = e
	}
	return ok
}
