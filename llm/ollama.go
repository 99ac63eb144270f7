// Ollama Provider implementation over the local Ollama HTTP API.
//
// Information Hiding:
// - Endpoint and wire format for /api/chat and /api/tags
// - NDJSON streaming protocol
//
// There is no API key; the server runs locally and availability is
// checked by listing installed models.

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaProvider implements the Provider interface for a local Ollama server.
type OllamaProvider struct {
	host        string
	model       string
	temperature float32
	client      *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
// An empty host defaults to http://localhost:11434.
func NewOllamaProvider(host, model string, temperature float32) *OllamaProvider {
	if host == "" {
		host = defaultOllamaHost
	}
	return &OllamaProvider{
		host:        host,
		model:       model,
		temperature: temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the current model.
func (p *OllamaProvider) Model() string {
	return p.model
}

type ollamaChatRequest struct {
	Model    string             `json:"model"`
	Messages []ChatMessage      `json:"messages"`
	Stream   bool               `json:"stream"`
	Options  *ollamaChatOptions `json:"options,omitempty"`
}

type ollamaChatOptions struct {
	Temperature float32 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// Chat sends a chat completion request.
func (p *OllamaProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	return p.ChatWithFormat(ctx, messages, nil)
}

// ChatWithFormat sends a chat completion request. Ollama has no response
// format switch; the format argument is ignored.
func (p *OllamaProvider) ChatWithFormat(ctx context.Context, messages []ChatMessage, _ *ResponseFormat) (LLMResponse, error) {
	resp, err := p.post(ctx, ollamaChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Options:  &ollamaChatOptions{Temperature: p.temperature},
	})
	if err != nil {
		return LLMResponse{}, err
	}
	defer resp.Body.Close()

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return LLMResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	usage := &TokenUsage{
		PromptTokens:     uint32(result.PromptEvalCount),
		CompletionTokens: uint32(result.EvalCount),
		TotalTokens:      uint32(result.PromptEvalCount + result.EvalCount),
	}

	return LLMResponse{Content: result.Message.Content, Usage: usage}, nil
}

// StreamChat streams a chat completion. Ollama streams newline-delimited
// JSON objects, one partial message per line.
func (p *OllamaProvider) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	resp, err := p.post(ctx, ollamaChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   true,
		Options:  &ollamaChatOptions{Temperature: p.temperature},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var usage *TokenUsage
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk ollamaChatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return usage, fmt.Errorf("failed to decode stream chunk: %w", err)
		}

		if chunk.Message.Content != "" {
			select {
			case chunks <- chunk.Message.Content:
			case <-ctx.Done():
				return usage, ctx.Err()
			}
		}

		if chunk.Done {
			usage = &TokenUsage{
				PromptTokens:     uint32(chunk.PromptEvalCount),
				CompletionTokens: uint32(chunk.EvalCount),
				TotalTokens:      uint32(chunk.PromptEvalCount + chunk.EvalCount),
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return usage, fmt.Errorf("stream read failed: %w", err)
	}

	return usage, nil
}

// ListModels returns the names of models installed on the server.
// Used as the availability probe since Ollama has no authenticated ping.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	names := make([]string, len(result.Models))
	for i, m := range result.Models {
		names[i] = m.Name
	}
	return names, nil
}

func (p *OllamaProvider) post(ctx context.Context, payload ollamaChatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// Verify OllamaProvider implements Provider
var _ Provider = (*OllamaProvider)(nil)
