package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dheerajsharma2399/ai-task-planning-agent/llm"
	"github.com/dheerajsharma2399/ai-task-planning-agent/tools"
)

// scriptedProvider returns canned responses in order and records the
// prompts it was asked.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

var _ llm.Provider = (*scriptedProvider)(nil)

func (s *scriptedProvider) Name() string  { return "scripted" }
func (s *scriptedProvider) Model() string { return "scripted-model" }

func (s *scriptedProvider) next(messages []llm.ChatMessage) (llm.LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(messages) > 0 {
		s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	}
	if s.err != nil {
		return llm.LLMResponse{}, s.err
	}
	if len(s.responses) == 0 {
		return llm.LLMResponse{}, errors.New("scripted provider exhausted")
	}
	response := s.responses[0]
	s.responses = s.responses[1:]
	return llm.LLMResponse{Content: response}, nil
}

func (s *scriptedProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	return s.next(messages)
}

func (s *scriptedProvider) ChatWithFormat(ctx context.Context, messages []llm.ChatMessage, format *llm.ResponseFormat) (llm.LLMResponse, error) {
	return s.next(messages)
}

func (s *scriptedProvider) StreamChat(ctx context.Context, messages []llm.ChatMessage, chunks chan<- string) (*llm.TokenUsage, error) {
	response, err := s.next(messages)
	if err != nil {
		return nil, err
	}
	// Emit in small pieces to exercise accumulation
	for _, line := range strings.SplitAfter(response.Content, "\n") {
		chunks <- line
	}
	return &llm.TokenUsage{TotalTokens: 42}, nil
}

const analyzeResponse = `{"duration_days": 2, "location": "Jaipur", "type": "travel", "key_themes": ["food", "history"]}`

const generateResponse = `Day 1: Arrival and Forts
1. Check in at the hotel
2. Visit Amber Fort

Day 2: Food and Markets
1. Breakfast at LMB
2. Shop at Johari Bazaar`

func newTestRegistry(t *testing.T, toolSet ...tools.Tool) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range toolSet {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("failed to register tool: %v", err)
		}
	}
	return registry
}

func newTestPlanner(t *testing.T, provider llm.Provider) *Planner {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>results</html>"))
	}))
	t.Cleanup(srv.Close)

	registry := newTestRegistry(t,
		tools.NewWebSearchWithURL(srv.URL),
		tools.NewWeather(tools.DemoAPIKey),
	)
	return New(llm.NewClient(provider), registry)
}

func TestPlanEndToEnd(t *testing.T) {
	provider := &scriptedProvider{responses: []string{analyzeResponse, generateResponse}}
	p := newTestPlanner(t, provider)

	plan, err := p.Plan(context.Background(), "Plan a 2-day trip to Jaipur")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if plan.TotalDays != 2 {
		t.Fatalf("TotalDays = %d, want 2", plan.TotalDays)
	}
	if plan.Metadata.Location != "Jaipur" {
		t.Errorf("metadata location = %q", plan.Metadata.Location)
	}
	if plan.Metadata.DurationDays != 2 {
		t.Errorf("metadata duration = %d", plan.Metadata.DurationDays)
	}

	// Demo weather is joined to days by position
	if plan.Days[0].WeatherInfo == nil || plan.Days[0].WeatherInfo.Temp != 25 {
		t.Errorf("day 1 weather = %+v", plan.Days[0].WeatherInfo)
	}
	if plan.Days[1].WeatherInfo == nil || plan.Days[1].WeatherInfo.Temp != 26 {
		t.Errorf("day 2 weather = %+v", plan.Days[1].WeatherInfo)
	}

	// The generate prompt carries the goal, the duration, and the location
	if len(provider.prompts) != 2 {
		t.Fatalf("got %d LLM calls, want 2", len(provider.prompts))
	}
	generatePrompt := provider.prompts[1]
	for _, want := range []string{"Plan a 2-day trip to Jaipur", "Duration: 2 days", "Location: Jaipur"} {
		if !strings.Contains(generatePrompt, want) {
			t.Errorf("generate prompt missing %q", want)
		}
	}
}

func TestPlanStreaming(t *testing.T) {
	provider := &scriptedProvider{responses: []string{analyzeResponse, generateResponse}}
	p := newTestPlanner(t, provider)

	chunks := make(chan string, 64)
	done := make(chan string)
	go func() {
		var streamed strings.Builder
		for chunk := range chunks {
			streamed.WriteString(chunk)
		}
		done <- streamed.String()
	}()

	plan, err := p.PlanStreaming(context.Background(), "Plan a 2-day trip to Jaipur", chunks)
	if err != nil {
		t.Fatalf("PlanStreaming failed: %v", err)
	}

	if streamed := <-done; streamed != generateResponse {
		t.Errorf("streamed text diverged from response:\n%q", streamed)
	}
	if plan.TotalDays != 2 {
		t.Errorf("TotalDays = %d, want 2", plan.TotalDays)
	}
}

func TestAnalyzeGoalFallsBackOnBadJSON(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"I cannot answer in JSON, sorry."}}
	p := newTestPlanner(t, provider)

	info := p.AnalyzeGoal(context.Background(), "do something")
	if info.DurationDays != 1 || info.Type != "general" {
		t.Errorf("fallback info = %+v", info)
	}
}

func TestAnalyzeGoalFallsBackOnError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("provider down")}
	p := newTestPlanner(t, provider)

	info := p.AnalyzeGoal(context.Background(), "do something")
	if info.DurationDays != 1 || len(info.KeyThemes) != 1 {
		t.Errorf("fallback info = %+v", info)
	}
}

func TestAnalyzeGoalExtractsFromProse(t *testing.T) {
	response := "Here is the analysis:\n```json\n" + analyzeResponse + "\n```"
	provider := &scriptedProvider{responses: []string{response}}
	p := newTestPlanner(t, provider)

	info := p.AnalyzeGoal(context.Background(), "Plan a 2-day trip to Jaipur")
	if info.Location != "Jaipur" || info.DurationDays != 2 {
		t.Errorf("info = %+v", info)
	}
}

func TestPlanGenerationErrorPropagates(t *testing.T) {
	// First call succeeds (analysis), second fails (generation)
	provider := &scriptedProvider{responses: []string{analyzeResponse}}
	p := newTestPlanner(t, provider)

	_, err := p.Plan(context.Background(), "Plan a 2-day trip to Jaipur")
	if err == nil {
		t.Fatal("expected generation error")
	}
	if !strings.Contains(err.Error(), "plan generation failed") {
		t.Errorf("error = %v", err)
	}
}

// recordingSearch stands in for the web search tool and records the
// queries dispatched to it.
type recordingSearch struct {
	queries []string
}

var _ tools.Tool = (*recordingSearch)(nil)

func (r *recordingSearch) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{Name: "web_search", Description: "records queries"}
}

func (r *recordingSearch) Validate(args json.RawMessage) error { return nil }

func (r *recordingSearch) Execute(ctx context.Context, args json.RawMessage) (tools.ToolResult, error) {
	var parsed struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return tools.FailureResult(err), nil
	}
	r.queries = append(r.queries, parsed.Query)
	return tools.SuccessResult(`[{"title":"hit","snippet":"context","url":"https://example.com/0"}]`), nil
}

func TestGatherDispatchesThroughRegistry(t *testing.T) {
	search := &recordingSearch{}
	registry := newTestRegistry(t, search, tools.NewWeather(tools.DemoAPIKey))
	p := New(llm.NewClient(&scriptedProvider{}), registry)

	info := GoalInfo{DurationDays: 1, Location: "Pune", Type: "travel", KeyThemes: []string{"food"}}
	enrichment := p.gather(context.Background(), info)

	want := []string{"Pune attractions food culture", "food tips recommendations"}
	if len(search.queries) != len(want) {
		t.Fatalf("queries = %v, want %v", search.queries, want)
	}
	for i := range want {
		if search.queries[i] != want[i] {
			t.Errorf("queries[%d] = %q, want %q", i, search.queries[i], want[i])
		}
	}

	if len(enrichment.SearchResults) != 1 || enrichment.SearchResults[0].Title != "hit" {
		t.Errorf("search results = %+v", enrichment.SearchResults)
	}
	if len(enrichment.ThemeResults["food"]) != 1 {
		t.Errorf("theme results = %+v", enrichment.ThemeResults)
	}
	if enrichment.Weather == nil || len(enrichment.Weather.Days) != 1 {
		t.Errorf("weather = %+v", enrichment.Weather)
	}
}

func TestGatherToleratesWeatherFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>results</html>"))
	}))
	defer srv.Close()
	badWeather := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer badWeather.Close()

	registry := newTestRegistry(t,
		tools.NewWebSearchWithURL(srv.URL),
		tools.NewWeatherWithURL("bad-key", badWeather.URL),
	)
	p := New(llm.NewClient(&scriptedProvider{}), registry)

	info := GoalInfo{DurationDays: 2, Location: "Jaipur", Type: "travel", KeyThemes: []string{"food"}}
	enrichment := p.gather(context.Background(), info)

	if enrichment.Weather != nil {
		t.Errorf("weather should be nil, got %+v", enrichment.Weather)
	}
	if enrichment.WeatherError == "" {
		t.Error("weather error should be recorded")
	}
	if len(enrichment.SearchResults) == 0 {
		t.Error("location search results missing")
	}
	if len(enrichment.ThemeResults["food"]) == 0 {
		t.Error("theme search results missing")
	}
}
