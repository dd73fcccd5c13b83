package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned before any network call when a provider is
// missing its credential. Callers map it to a fail-fast configuration error.
var ErrNotConfigured = errors.New("llm provider not configured")

// Message is a chat message in a provider-agnostic shape.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option sets optional request parameters.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // override the provider's default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider is the contract for any chat-completion backend.
type LLMProvider interface {
	// Chat sends a message history to the model and returns the completion text.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single system prompt (convenience for one-shot prompts).
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
