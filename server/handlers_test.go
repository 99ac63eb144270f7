package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/dheerajsharma2399/ai-task-planning-agent/llm"
	"github.com/dheerajsharma2399/ai-task-planning-agent/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubProvider returns canned responses in order.
type stubProvider struct {
	responses []string
	err       error
}

var _ llm.Provider = (*stubProvider)(nil)

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

// Chat drains queued responses first, then returns the configured error.
func (s *stubProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	if len(s.responses) > 0 {
		response := s.responses[0]
		s.responses = s.responses[1:]
		return llm.LLMResponse{Content: response}, nil
	}
	if s.err != nil {
		return llm.LLMResponse{}, s.err
	}
	return llm.LLMResponse{}, errors.New("stub exhausted")
}

func (s *stubProvider) ChatWithFormat(ctx context.Context, messages []llm.ChatMessage, format *llm.ResponseFormat) (llm.LLMResponse, error) {
	return s.Chat(ctx, messages)
}

func (s *stubProvider) StreamChat(ctx context.Context, messages []llm.ChatMessage, chunks chan<- string) (*llm.TokenUsage, error) {
	response, err := s.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	chunks <- response.Content
	return nil, nil
}

// Goal analysis without location or themes keeps the planner off the
// network during tests.
const stubAnalyzeResponse = `{"duration_days": 2, "type": "routine", "key_themes": []}`

const stubGenerateResponse = `Day 1: Getting Started
1. Set up the workspace
2. Outline the approach

Day 2: Execution
1. Do the work
2. Review the result`

func newTestServer(t *testing.T, provider llm.Provider, factoryErr error) (*httptest.Server, *storage.SqliteStorage) {
	t.Helper()

	store, err := storage.NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	factory := func(name, model, apiKey string) (llm.Provider, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		if _, err := llm.ParseProviderType(name); err != nil {
			return nil, err
		}
		return provider, nil
	}

	srv := New(":0", NewHandlers(store, "demo", factory))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return res
}

func decodeJSON(t *testing.T, res *http.Response, out interface{}) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestListProviders(t *testing.T) {
	ts, _ := newTestServer(t, &stubProvider{}, nil)

	res, err := http.Get(ts.URL + "/api/v1/providers")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}

	var infos []ProviderInfo
	decodeJSON(t, res, &infos)
	if len(infos) != 5 {
		t.Fatalf("got %d providers, want 5", len(infos))
	}
	if infos[0].Name != "openrouter" || len(infos[0].Models) == 0 {
		t.Errorf("openrouter should come first with a model catalog: %+v", infos[0])
	}
	for _, info := range infos {
		if info.Name == "ollama" && info.RequiresAPIKey {
			t.Error("ollama should not require an API key")
		}
	}
}

func TestPlanLifecycle(t *testing.T) {
	provider := &stubProvider{responses: []string{stubAnalyzeResponse, stubGenerateResponse}}
	ts, _ := newTestServer(t, provider, nil)

	// Create
	res := postJSON(t, ts.URL+"/api/v1/plans", CreatePlanRequest{
		Goal:     "Organize the team offsite",
		Provider: "openrouter",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", res.StatusCode)
	}
	var created PlanResponse
	decodeJSON(t, res, &created)
	if created.ID == 0 {
		t.Fatal("expected a plan ID")
	}
	if created.Plan.TotalDays != 2 {
		t.Errorf("total days = %d, want 2", created.Plan.TotalDays)
	}

	// Get
	res, err := http.Get(fmt.Sprintf("%s/api/v1/plans/%d", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", res.StatusCode)
	}
	var fetched PlanResponse
	decodeJSON(t, res, &fetched)
	if fetched.Plan.Goal != "Organize the team offsite" {
		t.Errorf("goal = %q", fetched.Plan.Goal)
	}

	// List
	res, err = http.Get(ts.URL + "/api/v1/plans")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var listed PlanListResponse
	decodeJSON(t, res, &listed)
	if listed.Count != 1 {
		t.Errorf("count = %d, want 1", listed.Count)
	}

	// Prefix search
	res, err = http.Get(ts.URL + "/api/v1/plans?prefix=organize")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	decodeJSON(t, res, &listed)
	if listed.Count != 1 {
		t.Errorf("prefix search count = %d, want 1", listed.Count)
	}

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/plans/%d", ts.URL, created.ID), nil)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", res.StatusCode)
	}

	// Gone
	res, err = http.Get(fmt.Sprintf("%s/api/v1/plans/%d", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", res.StatusCode)
	}
}

func TestCreatePlanValidation(t *testing.T) {
	ts, _ := newTestServer(t, &stubProvider{}, nil)

	res := postJSON(t, ts.URL+"/api/v1/plans", CreatePlanRequest{Goal: "   "})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("empty goal status = %d, want 400", res.StatusCode)
	}

	res = postJSON(t, ts.URL+"/api/v1/plans", CreatePlanRequest{
		Goal:     "valid goal",
		Provider: "no-such-provider",
	})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown provider status = %d, want 400", res.StatusCode)
	}
}

func TestCreatePlanGenerationFailure(t *testing.T) {
	provider := &stubProvider{
		responses: []string{stubAnalyzeResponse},
		err:       errors.New("model offline"),
	}
	ts, _ := newTestServer(t, provider, nil)

	res := postJSON(t, ts.URL+"/api/v1/plans", CreatePlanRequest{Goal: "a goal"})
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", res.StatusCode)
	}
	var body ErrorResponse
	decodeJSON(t, res, &body)
	if body.Error != "plan generation failed" {
		t.Errorf("error = %q", body.Error)
	}
	if body.RequestID == "" {
		t.Error("error response missing request ID")
	}
}

func TestVerifyProvider(t *testing.T) {
	provider := &stubProvider{responses: []string{"ok"}}
	ts, _ := newTestServer(t, provider, nil)

	res := postJSON(t, ts.URL+"/api/v1/providers/verify", VerifyProviderRequest{Provider: "openrouter"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var verified VerifyProviderResponse
	decodeJSON(t, res, &verified)
	if !verified.OK || verified.Provider != "stub" {
		t.Errorf("response = %+v", verified)
	}

	// Provider errors surface as bad gateway
	broken := &stubProvider{err: errors.New("invalid key")}
	ts2, _ := newTestServer(t, broken, nil)
	res = postJSON(t, ts2.URL+"/api/v1/providers/verify", VerifyProviderRequest{Provider: "openrouter"})
	res.Body.Close()
	if res.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", res.StatusCode)
	}

	// Missing provider name is a client error
	res = postJSON(t, ts.URL+"/api/v1/providers/verify", VerifyProviderRequest{})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &stubProvider{}, nil)

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var health HealthResponse
	decodeJSON(t, res, &health)
	if health.Status != "ok" || health.Plans != 0 {
		t.Errorf("health = %+v", health)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts, _ := newTestServer(t, &stubProvider{}, nil)

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	// Caller-supplied IDs are echoed back
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if got := res.Header.Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want fixed-id", got)
	}
}

func TestIndexServed(t *testing.T) {
	ts, _ := newTestServer(t, &stubProvider{}, nil)

	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	page := string(body)
	// The page offers clickable example goals that prefill the form
	for _, goal := range []string{
		"Plan a 3-day trip to Jaipur with cultural highlights and good food",
		"Plan a 2-day vegetarian food tour in Hyderabad",
		"Organize a 5-step daily study routine for learning Python",
		"Create a weekend plan in Vizag with beach, hiking, and seafood",
	} {
		if !strings.Contains(page, goal) {
			t.Errorf("page missing example goal %q", goal)
		}
	}
}
