package config

import (
	"testing"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openrouter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openrouter" {
		t.Errorf("expected provider 'openrouter', got %q", settings.LLM.Provider)
	}
	if settings.LLM.MaxTokens != 4096 {
		t.Errorf("expected default max tokens 4096, got %d", settings.LLM.MaxTokens)
	}
	if settings.Weather.APIKey != "demo" {
		t.Errorf("expected demo weather key by default, got %q", settings.Weather.APIKey)
	}
	if settings.Storage.DBPath != "task_plans.db" {
		t.Errorf("expected default db path, got %q", settings.Storage.DBPath)
	}
	if settings.Server.Addr != ":8080" {
		t.Errorf("expected default server addr, got %q", settings.Server.Addr)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	key, err := APIKeyFor("openrouter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := APIKeyFor("openrouter")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForOllama(t *testing.T) {
	key, err := APIKeyFor("ollama")
	if err != nil {
		t.Fatalf("ollama should not require an API key: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key for ollama, got %q", key)
	}
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	_, err := APIKeyFor("unknown")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestModelFor(t *testing.T) {
	model, err := ModelFor("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model == "" {
		t.Error("expected non-empty model")
	}

	t.Setenv("GEMINI_MODEL", "gemini-override")
	model, err = ModelFor("google")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "gemini-override" {
		t.Errorf("environment override ignored, got %q", model)
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	_, err := New("openrouter")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestSupportedProviders(t *testing.T) {
	supported := SupportedProviders()
	if len(supported) != 5 {
		t.Errorf("expected 5 supported providers, got %d", len(supported))
	}
}
