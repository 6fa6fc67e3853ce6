package llmgateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
)

// BedrockProvider is the "provider-b" backend, calling a
// Bedrock-hosted model through aws-sdk-go-v2/bedrockruntime using the
// Anthropic-on-Bedrock message wire format.
type BedrockProvider struct {
	client      *bedrockruntime.Client
	modelID     string
	temperature float64
	maxTokens   int
}

// NewBedrockProvider loads the default AWS config chain (environment,
// shared config, IMDS) and builds a BedrockProvider against modelID.
func NewBedrockProvider(ctx context.Context, modelID string, temperature float64, maxTokens int) (*BedrockProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	return &BedrockProvider{
		client:      bedrockruntime.NewFromConfig(cfg),
		modelID:     modelID,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

type bedrockAnthropicRequest struct {
	AnthropicVersion string                   `json:"anthropic_version"`
	MaxTokens        int                      `json:"max_tokens"`
	Temperature      float64                  `json:"temperature"`
	System           string                   `json:"system"`
	Messages         []bedrockAnthropicMsg    `json:"messages"`
}

type bedrockAnthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockAnthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *BedrockProvider) Complete(ctx context.Context, system string, messages []llms.MessageContent) (string, error) {
	var userText string
	for _, m := range messages {
		for _, part := range m.Parts {
			if tp, ok := part.(llms.TextContent); ok {
				userText += tp.Text
			}
		}
	}

	reqBody, err := json.Marshal(bedrockAnthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        p.maxTokens,
		Temperature:      p.temperature,
		System:           system,
		Messages:         []bedrockAnthropicMsg{{Role: "user", Content: userText}},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: marshal request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        reqBody,
	})
	if err != nil {
		var throttle *bedrockruntime.ThrottlingException
		if ok := asThrottling(err, &throttle); ok {
			return "", &rateLimitError{err: err}
		}
		return "", fmt.Errorf("bedrock: invoke model: %w", err)
	}

	var resp bedrockAnthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrock: unmarshal response: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func asThrottling(err error, target **bedrockruntime.ThrottlingException) bool {
	e, ok := err.(*bedrockruntime.ThrottlingException)
	if ok {
		*target = e
	}
	return ok
}
