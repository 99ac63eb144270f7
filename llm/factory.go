// LLM Provider Factory - builder-first API for creating LLM providers.
//
// Quick Start:
//
//	// Simplest: use defaults, read API key from environment
//	gemini, err := llm.ProviderGemini.FromEnv()
//
//	// OpenRouter with a specific catalog model
//	router, err := llm.ProviderOpenRouter.Model("qwen/qwen3-coder:free").FromEnv()
//
//	// Full configuration
//	custom, err := llm.ProviderOllama.
//	    Model("llama3").
//	    MaxTokens(2000).
//	    Temperature(0.3).
//	    FromEnv()

package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderOpenRouter routes to hosted models through the OpenRouter API.
	ProviderOpenRouter ProviderType = iota
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini
	// ProviderOllama talks to a local Ollama server.
	ProviderOllama
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
)

// ProviderTypes lists all supported providers in display order.
var ProviderTypes = []ProviderType{
	ProviderOpenRouter,
	ProviderGemini,
	ProviderOllama,
	ProviderOpenAI,
	ProviderAnthropic,
}

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderOpenRouter:
		return "openrouter"
	case ProviderGemini:
		return "gemini"
	case ProviderOllama:
		return "ollama"
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this provider's API key.
// Ollama needs no key and returns an empty string.
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderOpenRouter:
		return OpenRouterModels[0]
	case ProviderGemini:
		return ModelGeminiFlash
	case ProviderOllama:
		return ModelOllamaMistral
	case ProviderOpenAI:
		return ModelOpenAIGPT4oMini
	case ProviderAnthropic:
		return ModelAnthropicClaudeSonnet4
	default:
		return ""
	}
}

// RequiresAPIKey reports whether this provider needs an API key.
func (p ProviderType) RequiresAPIKey() bool {
	return p != ProviderOllama
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(s) {
	case "openrouter", "router":
		return ProviderOpenRouter, nil
	case "gemini", "google":
		return ProviderGemini, nil
	case "ollama", "local":
		return ProviderOllama, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// FromEnv creates a provider with defaults, reading API key from environment.
func (p ProviderType) FromEnv() (Provider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey creates a provider with an explicit API key (uses defaults for everything else).
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder is a builder for configuring LLM providers.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	maxTokens    uint32
	temperature  *float32
	ollamaHost   string
}

// NewProviderBuilder creates a new builder for the given provider.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{
		providerType: providerType,
	}
}

// Model sets the model to use.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// MaxTokens sets maximum tokens for responses.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets temperature (0.0 = deterministic, 1.0 = creative).
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// OllamaHost overrides the Ollama server address (default http://localhost:11434).
func (b *ProviderBuilder) OllamaHost(host string) *ProviderBuilder {
	b.ollamaHost = host
	return b
}

// FromEnv builds the provider, reading the API key from the environment.
// Ollama has no key; its host is taken from OLLAMA_HOST when set.
func (b *ProviderBuilder) FromEnv() (Provider, error) {
	if b.providerType == ProviderOllama {
		if b.ollamaHost == "" {
			b.ollamaHost = os.Getenv("OLLAMA_HOST")
		}
		return b.build("")
	}

	envVar := b.providerType.EnvVar()
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", b.providerType, envVar)
	}
	return b.build(apiKey)
}

// APIKey builds the provider with an explicit API key.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	if b.providerType.RequiresAPIKey() && key == "" {
		return nil, fmt.Errorf("%s: API key is required", b.providerType)
	}
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}

	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	temperature := float32(0.7) // default
	if b.temperature != nil {
		temperature = *b.temperature
	}

	switch b.providerType {
	case ProviderOpenRouter:
		return NewOpenRouterProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderOllama:
		return NewOllamaProvider(b.ollamaHost, model, temperature), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}

// OpenRouterModels is the curated catalog of free OpenRouter models
// offered by the UI. The first entry is the default.
var OpenRouterModels = []string{
	"x-ai/grok-4-fast:free",
	"deepseek/deepseek-chat-v3.1:free",
	"deepseek/deepseek-r1-0528:free",
	"deepseek/deepseek-chat-v3-0324:free",
	"z-ai/glm-4.5-air:free",
	"deepseek/deepseek-r1:free",
	"tngtech/deepseek-r1t2-chimera:free",
	"qwen/qwen3-coder:free",
	"tngtech/deepseek-r1t-chimera:free",
	"qwen/qwen3-235b-a22b:free",
}

// Default model identifiers for the direct providers.
const (
	// ModelGeminiFlash is the Gemini default used for goal analysis and plan generation.
	ModelGeminiFlash = "gemini-2.0-flash"
	// ModelOllamaMistral is the local default; any pulled model works.
	ModelOllamaMistral = "mistral:7b"
	// ModelOpenAIGPT4oMini is a low-cost OpenAI default.
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
	// ModelAnthropicClaudeSonnet4 is the Anthropic default.
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
)
