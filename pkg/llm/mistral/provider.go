package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"simbah-be/pkg/llm"
)

const DefaultEndpoint = "https://api.mistral.ai/v1/chat/completions"

// Provider calls the Mistral chat-completions API. Rate-limited (429) and
// transport-level failures are retried with exponential backoff; other
// non-OK responses surface immediately so callers can branch on status.
type Provider struct {
	Endpoint     string
	APIKey       string
	ModelName    string
	MaxRetries   int
	InitialDelay time.Duration
	Client       *http.Client
}

var _ llm.LLMProvider = &Provider{}

// NewProvider builds a provider with the default retry policy (3 attempts,
// 1s initial delay). The HTTP client carries no timeout on purpose: the
// bounded retry loop is the only limit on generation calls.
func NewProvider(apiKey, modelName string) *Provider {
	return &Provider{
		Endpoint:     DefaultEndpoint,
		APIKey:       apiKey,
		ModelName:    modelName,
		MaxRetries:   3,
		InitialDelay: time.Second,
		Client:       &http.Client{},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if p.APIKey == "" {
		return "", llm.ErrNotConfigured
	}

	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mistral error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// Generate sends the prompt as a single system message, which is how the
// query pipeline phrases all of its instructions.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "system", Content: prompt}}, opts...)
}

// doWithRetry posts the payload, retrying on 429 and on transport errors.
// Each retry waits backoffDelay(attempt). Any other response is returned to
// the caller as-is. Exhausting every attempt yields a terminal error naming
// the endpoint and attempt count.
func (p *Provider) doWithRetry(ctx context.Context, payload []byte) (*http.Response, error) {
	for attempt := 0; attempt < p.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.APIKey)

		resp, err := p.Client.Do(req)
		if err != nil {
			if werr := p.wait(ctx, attempt); werr != nil {
				return nil, werr
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if werr := p.wait(ctx, attempt); werr != nil {
				return nil, werr
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("failed to fetch from %s after %d attempts", p.Endpoint, p.MaxRetries)
}

func (p *Provider) wait(ctx context.Context, attempt int) error {
	select {
	case <-time.After(p.backoffDelay(attempt)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffDelay doubles on every attempt: initialDelay * 2^attempt.
func (p *Provider) backoffDelay(attempt int) time.Duration {
	return p.InitialDelay * time.Duration(1<<uint(attempt))
}
