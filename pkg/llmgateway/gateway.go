// Package llmgateway is the single point of contact with the LLM used
// for phases 4-8's semantic extraction (spec.md §4.4). It exposes a
// closed registry of named prompts rather than a generic "send this
// text" API, wraps every call in the shared retry policy, and
// optionally caches responses in Redis, since repeated runs over the
// same dashboard/table frequently produce identical prompts.
package llmgateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"text/template"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/retry"
)

// Provider is the minimal contract every backing LLM implementation
// satisfies: turn a system instruction + user message into completion
// text. Both the provider-a (Anthropic) and provider-b (Bedrock)
// backends implement this directly against langchaingo's shared
// message types.
type Provider interface {
	Complete(ctx context.Context, system string, messages []llms.MessageContent) (string, error)
}

// Config configures a Gateway.
type Config struct {
	Provider       string // "provider-a" or "provider-b"
	Model          string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
	MaxContextSize int
}

// Gateway is the process-wide LLM entry point. It is safe for
// concurrent use: the phase engine's inner worker pool calls Invoke
// from many goroutines at once.
type Gateway struct {
	cfg      Config
	provider Provider
	cache    Cache
	retryPol retry.Policy

	initOnce sync.Once
	initErr  error
}

// New builds a Gateway around an already-constructed provider. It does
// not look at cfg.Provider; NewFromConfig is what selects the provider
// and returns an error for an unsupported value.
func New(cfg Config, provider Provider, cache Cache) *Gateway {
	return &Gateway{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		retryPol: retry.Default(),
	}
}

// Render executes the named prompt's template against data and
// returns the rendered user message; exported so callers (and tests)
// can inspect what will be sent without making a network call.
func Render(name PromptName, data interface{}) (system, body string, err error) {
	entry, ok := registry[name]
	if !ok {
		return "", "", fmt.Errorf("llmgateway: unknown prompt %q", name)
	}
	tmpl, err := template.New(string(name)).Parse(entry.template)
	if err != nil {
		return "", "", fmt.Errorf("llmgateway: parse template %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("llmgateway: execute template %q: %w", name, err)
	}
	return entry.system, buf.String(), nil
}

// Invoke renders the named prompt, checks the response cache, and on
// a miss calls the provider (with retry on transient failures),
// unmarshaling the response into out. out must be a pointer; pass a
// *string to receive the raw completion for free-text prompts like
// PromptFilterCondition.
func (g *Gateway) Invoke(ctx context.Context, name PromptName, data interface{}, out interface{}) error {
	system, body, err := Render(name, data)
	if err != nil {
		return err
	}

	cacheKey := g.cacheKey(name, body)
	if g.cache != nil {
		if cached, ok := g.cache.Get(ctx, cacheKey); ok {
			return unmarshalInto(cached, out)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	var completion string
	err = retry.Do(ctx, g.retryPol, func(attempt int) error {
		text, rerr := g.provider.Complete(ctx, system, []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, body),
		})
		if rerr != nil {
			return rerr
		}
		completion = text
		return nil
	})
	if err != nil {
		return fmt.Errorf("llmgateway: invoke %q: %w", name, err)
	}

	if g.cache != nil {
		g.cache.Set(ctx, cacheKey, completion, 24*time.Hour)
	}

	return unmarshalInto(completion, out)
}

func unmarshalInto(text string, out interface{}) error {
	if s, ok := out.(*string); ok {
		*s = text
		return nil
	}
	return json.Unmarshal([]byte(text), out)
}

func (g *Gateway) cacheKey(name PromptName, body string) string {
	sum := sha256.Sum256([]byte(string(name) + "|" + g.cfg.Model + "|" + body))
	return "llmgateway:" + hex.EncodeToString(sum[:])
}
