// LLMClient - Simple wrapper around providers.

package llm

import (
	"context"
	"fmt"
)

// Client wraps a Provider with a simple interface.
type Client struct {
	provider Provider
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends a chat completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// ChatWithUsage sends a chat completion request and returns content with token usage.
func (c *Client) ChatWithUsage(ctx context.Context, messages []ChatMessage) (string, *TokenUsage, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	return response.Content, response.Usage, nil
}

// ChatWithFormat sends a chat completion request with response format
// and returns just the content.
func (c *Client) ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat) (string, error) {
	response, err := c.provider.ChatWithFormat(ctx, messages, format)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// StreamChat streams a chat completion.
func (c *Client) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	return c.provider.StreamChat(ctx, messages, chunks)
}

// Verify checks that the provider is reachable and the credentials work.
// Hosted providers get a one-message round trip; Ollama is verified by
// listing installed models, which needs no generation.
func (c *Client) Verify(ctx context.Context) error {
	if ollama, ok := c.provider.(*OllamaProvider); ok {
		if _, err := ollama.ListModels(ctx); err != nil {
			return fmt.Errorf("failed to verify %s: %w", c.provider.Name(), err)
		}
		return nil
	}

	_, err := c.provider.Chat(ctx, []ChatMessage{UserMessage("hi")})
	if err != nil {
		return fmt.Errorf("failed to verify %s: %w", c.provider.Name(), err)
	}
	return nil
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}
