package server

import (
	"github.com/dheerajsharma2399/ai-task-planning-agent/planner"
	"github.com/dheerajsharma2399/ai-task-planning-agent/storage"
)

// CreatePlanRequest asks for a plan to be generated and stored.
// Provider defaults to openrouter; an empty API key falls back to the
// provider's environment variable.
type CreatePlanRequest struct {
	Goal          string `json:"goal"`
	Provider      string `json:"provider,omitempty"`
	Model         string `json:"model,omitempty"`
	APIKey        string `json:"api_key,omitempty"`
	WeatherAPIKey string `json:"weather_api_key,omitempty"`
}

// PlanResponse carries a generated plan and its storage ID.
type PlanResponse struct {
	ID   int64             `json:"id"`
	Plan *planner.TaskPlan `json:"plan"`
}

// PlanListResponse carries plan summaries.
type PlanListResponse struct {
	Plans []storage.PlanSummary `json:"plans"`
	Count int                   `json:"count"`
}

// VerifyProviderRequest asks whether a provider is reachable with the
// given credentials.
type VerifyProviderRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// VerifyProviderResponse reports the verification outcome.
type VerifyProviderResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	OK       bool   `json:"ok"`
}

// ProviderInfo describes one selectable provider.
type ProviderInfo struct {
	Name           string   `json:"name"`
	DefaultModel   string   `json:"default_model"`
	RequiresAPIKey bool     `json:"requires_api_key"`
	Models         []string `json:"models,omitempty"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Plans  int    `json:"plans"`
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
