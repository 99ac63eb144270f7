package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/dheerajsharma2399/ai-task-planning-agent/internal/logging"
	"github.com/dheerajsharma2399/ai-task-planning-agent/llm"
	"github.com/dheerajsharma2399/ai-task-planning-agent/planner"
	"github.com/dheerajsharma2399/ai-task-planning-agent/storage"
	"github.com/dheerajsharma2399/ai-task-planning-agent/tools"
)

// ProviderFactory builds an LLM provider from request parameters.
// Injected in tests to avoid real network calls.
type ProviderFactory func(providerName, model, apiKey string) (llm.Provider, error)

// defaultProviderFactory builds real providers. An empty API key falls
// back to the provider's environment variable.
func defaultProviderFactory(providerName, model, apiKey string) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, err
	}

	builder := llm.NewProviderBuilder(providerType)
	if model != "" {
		builder.Model(model)
	}

	if apiKey == "" || !providerType.RequiresAPIKey() {
		return builder.FromEnv()
	}
	return builder.APIKey(apiKey)
}

type Handlers struct {
	store      storage.PlanStorage
	weatherKey string
	providers  ProviderFactory
}

// NewHandlers creates the handler set. A nil factory uses real providers.
func NewHandlers(store storage.PlanStorage, weatherKey string, factory ProviderFactory) *Handlers {
	if factory == nil {
		factory = defaultProviderFactory
	}
	return &Handlers{
		store:      store,
		weatherKey: weatherKey,
		providers:  factory,
	}
}

// newPlanner assembles a planner for one request.
func (h *Handlers) newPlanner(providerName, model, apiKey, weatherKey string) (*planner.Planner, error) {
	provider, err := h.providers(providerName, model, apiKey)
	if err != nil {
		return nil, err
	}
	if weatherKey == "" {
		weatherKey = h.weatherKey
	}
	registry, err := tools.WithDefaults(weatherKey)
	if err != nil {
		return nil, err
	}
	return planner.New(llm.NewClient(provider), registry), nil
}

// Plans

func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(ErrBadRequest, requestID))
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "goal is required", nil), requestID))
		return
	}
	if req.Provider == "" {
		req.Provider = llm.ProviderOpenRouter.String()
	}

	p, err := h.newPlanner(req.Provider, req.Model, req.APIKey, req.WeatherAPIKey)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "provider setup failed", err), requestID))
		return
	}

	log.Info().
		Str("goal", req.Goal).
		Str("provider", req.Provider).
		Str("api_key", logging.MaskKey(req.APIKey)).
		Msg("creating plan")

	plan, err := p.Plan(r.Context(), req.Goal)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadGateway, "plan generation failed", err), requestID))
		return
	}

	id, err := h.store.SavePlan(r.Context(), plan)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to save plan", err), requestID))
		return
	}

	respondJSON(w, http.StatusCreated, PlanResponse{ID: id, Plan: plan})
}

func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var summaries []storage.PlanSummary
	var err error

	if prefix := r.URL.Query().Get("prefix"); prefix != "" {
		summaries, err = h.store.SearchByGoalPrefix(r.Context(), prefix)
	} else {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid limit", nil), requestID))
				return
			}
		}
		summaries, err = h.store.ListPlans(r.Context(), limit)
	}

	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list plans", err), requestID))
		return
	}

	respondJSON(w, http.StatusOK, PlanListResponse{Plans: summaries, Count: len(summaries)})
}

func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, WrapError(ErrBadRequest, requestID))
		return
	}

	stored, err := h.store.GetPlan(r.Context(), id)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to get plan", err), requestID))
		return
	}
	if stored == nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	respondJSON(w, http.StatusOK, PlanResponse{ID: stored.ID, Plan: stored.Plan})
}

func (h *Handlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, WrapError(ErrBadRequest, requestID))
		return
	}

	if err := h.store.DeletePlan(r.Context(), id); err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to delete plan", err), requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Providers

func (h *Handlers) ListProviders(w http.ResponseWriter, r *http.Request) {
	infos := make([]ProviderInfo, 0, len(llm.ProviderTypes))
	for _, providerType := range llm.ProviderTypes {
		info := ProviderInfo{
			Name:           providerType.String(),
			DefaultModel:   providerType.DefaultModel(),
			RequiresAPIKey: providerType.RequiresAPIKey(),
		}
		if providerType == llm.ProviderOpenRouter {
			info.Models = llm.OpenRouterModels
		}
		infos = append(infos, info)
	}
	respondJSON(w, http.StatusOK, infos)
}

func (h *Handlers) VerifyProvider(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req VerifyProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(ErrBadRequest, requestID))
		return
	}
	if req.Provider == "" {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "provider is required", nil), requestID))
		return
	}

	provider, err := h.providers(req.Provider, req.Model, req.APIKey)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "provider setup failed", err), requestID))
		return
	}

	if err := llm.NewClient(provider).Verify(r.Context()); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadGateway, "provider verification failed", err), requestID))
		return
	}

	respondJSON(w, http.StatusOK, VerifyProviderResponse{
		Provider: provider.Name(),
		Model:    provider.Model(),
		OK:       true,
	})
}

// Health

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountPlans(r.Context())
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "storage unavailable", err), GetRequestID(r.Context())))
		return
	}
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Plans: count})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *APIError) {
	response := ErrorResponse{
		Error: err.Message,
		Code:  err.Code,
	}
	if err.Err != nil {
		response.Message = err.Err.Error()
	}
	if err.RequestID != "" {
		response.RequestID = err.RequestID
	}
	respondJSON(w, err.Code, response)
}
