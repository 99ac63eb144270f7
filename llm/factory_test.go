package llm

import (
	"testing"
)

func TestParseProviderType(t *testing.T) {
	cases := []struct {
		input   string
		want    ProviderType
		wantErr bool
	}{
		{"openrouter", ProviderOpenRouter, false},
		{"OpenRouter", ProviderOpenRouter, false},
		{"gemini", ProviderGemini, false},
		{"google", ProviderGemini, false},
		{"ollama", ProviderOllama, false},
		{"local", ProviderOllama, false},
		{"openai", ProviderOpenAI, false},
		{"gpt", ProviderOpenAI, false},
		{"claude", ProviderAnthropic, false},
		{"anthropic", ProviderAnthropic, false},
		{"mistral", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseProviderType(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseProviderType(%q): expected error, got %v", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseProviderType(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseProviderType(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestProviderTypeEnvVar(t *testing.T) {
	cases := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderGemini, "GEMINI_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOllama, ""},
	}

	for _, tc := range cases {
		if got := tc.provider.EnvVar(); got != tc.want {
			t.Errorf("%v.EnvVar() = %q, want %q", tc.provider, got, tc.want)
		}
	}
}

func TestDefaultModels(t *testing.T) {
	for _, p := range ProviderTypes {
		if p.DefaultModel() == "" {
			t.Errorf("%v has no default model", p)
		}
	}

	// OpenRouter defaults to the head of the catalog
	if got := ProviderOpenRouter.DefaultModel(); got != OpenRouterModels[0] {
		t.Errorf("OpenRouter default = %q, want %q", got, OpenRouterModels[0])
	}
}

func TestFromEnvMissingKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := ProviderOpenRouter.FromEnv()
	if err == nil {
		t.Fatal("expected error when OPENROUTER_API_KEY is unset")
	}
}

func TestFromEnvOllamaNeedsNoKey(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")

	provider, err := ProviderOllama.FromEnv()
	if err != nil {
		t.Fatalf("ollama FromEnv failed: %v", err)
	}
	if provider.Name() != "ollama" {
		t.Errorf("Name() = %q, want ollama", provider.Name())
	}
	if provider.Model() != ModelOllamaMistral {
		t.Errorf("Model() = %q, want %q", provider.Model(), ModelOllamaMistral)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	if _, err := ProviderGemini.APIKey(""); err == nil {
		t.Error("expected error for empty Gemini API key")
	}
	if _, err := NewProviderBuilder(ProviderOllama).APIKey(""); err != nil {
		t.Errorf("ollama should accept empty key, got: %v", err)
	}
}

func TestBuilderModelOverride(t *testing.T) {
	provider, err := ProviderOpenRouter.Model("qwen/qwen3-coder:free").APIKey("sk-or-test")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if provider.Model() != "qwen/qwen3-coder:free" {
		t.Errorf("Model() = %q, want qwen/qwen3-coder:free", provider.Model())
	}
	if provider.Name() != "openrouter" {
		t.Errorf("Name() = %q, want openrouter", provider.Name())
	}
}
