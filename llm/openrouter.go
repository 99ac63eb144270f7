// OpenRouter Provider - OpenAI-compatible API with a different base URL.
//
// OpenRouter fronts many hosted models behind one endpoint; the request and
// response wire format is the OpenAI Chat Completions API, so the provider
// reuses the go-openai implementation.

package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider creates a provider routed through OpenRouter.
// The model must be a full OpenRouter identifier, e.g. "qwen/qwen3-coder:free".
func NewOpenRouterProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = openRouterBaseURL

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		name:        "openrouter",
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}
