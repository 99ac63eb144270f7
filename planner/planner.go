// Task planning orchestration: analyze the goal, gather external
// information, generate prose with the LLM, and parse it into a TaskPlan.
//
// Information Hiding:
// - Prompt construction and response parsing internalized
// - Tool failures degrade to partial enrichment, never abort the plan

package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dheerajsharma2399/ai-task-planning-agent/internal/llmjson"
	"github.com/dheerajsharma2399/ai-task-planning-agent/llm"
	"github.com/dheerajsharma2399/ai-task-planning-agent/tools"
)

const analyzePromptTemplate = `Analyze this goal and extract key information:
Goal: %q

Return a JSON with:
- duration_days: number of days (default 1 if not specified)
- location: main location if mentioned
- type: type of plan (travel/study/routine/food/activity)
- key_themes: main themes or activities

Format as valid JSON.`

const generateSystemPrompt = `You are an expert task planner. Create detailed, actionable plans with specific times, locations, and helpful information. Structure your response as a day-by-day plan with clear steps. Be specific and practical.`

const generatePromptTemplate = `Create a detailed plan for: %q

Duration: %d days
Location: %s

Available information:
%s

Generate a day-by-day plan with:
- Day number and theme
- 3-5 specific steps per day
- Times and locations when relevant
- Practical tips and recommendations

Format each day clearly with numbered steps.`

// enrichmentBudget caps the enrichment JSON embedded in the generate prompt.
const enrichmentBudget = 1000

// Planner orchestrates plan creation.
type Planner struct {
	client *llm.Client
	tools  *tools.Registry
}

// New creates a planner from an LLM client and a registry holding the
// enrichment tools (web_search and weather_forecast).
func New(client *llm.Client, registry *tools.Registry) *Planner {
	return &Planner{
		client: client,
		tools:  registry,
	}
}

// Plan creates a complete plan for the given goal.
func (p *Planner) Plan(ctx context.Context, goal string) (*TaskPlan, error) {
	return p.plan(ctx, goal, nil)
}

// PlanStreaming creates a plan while forwarding the generated prose to
// chunks as it arrives. The channel is closed when generation finishes.
func (p *Planner) PlanStreaming(ctx context.Context, goal string, chunks chan<- string) (*TaskPlan, error) {
	return p.plan(ctx, goal, chunks)
}

func (p *Planner) plan(ctx context.Context, goal string, chunks chan<- string) (*TaskPlan, error) {
	info := p.AnalyzeGoal(ctx, goal)
	enrichment := p.gather(ctx, info)

	response, err := p.generate(ctx, goal, info, enrichment, chunks)
	if err != nil {
		return nil, err
	}

	plan := ParseResponse(goal, response, info, enrichment.Weather)
	return plan, nil
}

// AnalyzeGoal extracts structured intent from the goal. Extraction
// failures fall back to a one-day general plan rather than erroring.
func (p *Planner) AnalyzeGoal(ctx context.Context, goal string) GoalInfo {
	prompt := fmt.Sprintf(analyzePromptTemplate, goal)

	response, err := p.client.ChatWithFormat(ctx,
		[]llm.ChatMessage{llm.UserMessage(prompt)},
		llm.NewJSONObjectFormat())
	if err != nil {
		log.Warn().Err(err).Msg("goal analysis call failed, using defaults")
		return defaultGoalInfo()
	}
	log.Debug().Str("response", response).Msg("goal analysis response")

	var info GoalInfo
	if err := llmjson.Unmarshal(response, &info); err != nil {
		log.Warn().Err(err).Msg("goal analysis parse failed, using defaults")
		return defaultGoalInfo()
	}

	if info.DurationDays <= 0 {
		info.DurationDays = 1
	}
	if info.Type == "" {
		info.Type = "general"
	}
	return info
}

// gather collects external information relevant to the goal.
// Every lookup is best effort.
func (p *Planner) gather(ctx context.Context, info GoalInfo) Enrichment {
	var enrichment Enrichment

	if info.Location != "" {
		query := fmt.Sprintf("%s attractions food culture", info.Location)
		enrichment.SearchResults = p.searchWeb(ctx, query, 5)

		var forecast tools.Forecast
		err := p.runTool(ctx, "weather_forecast",
			map[string]interface{}{"location": info.Location, "days": info.DurationDays},
			&forecast)
		if err != nil {
			log.Warn().Err(err).Str("location", info.Location).Msg("weather lookup failed")
			enrichment.WeatherError = err.Error()
		} else {
			enrichment.Weather = &forecast
		}
	}

	for _, theme := range info.KeyThemes {
		results := p.searchWeb(ctx, fmt.Sprintf("%s tips recommendations", theme), 3)
		if len(results) == 0 {
			continue
		}
		if enrichment.ThemeResults == nil {
			enrichment.ThemeResults = make(map[string][]tools.SearchResult)
		}
		enrichment.ThemeResults[theme] = results
	}

	return enrichment
}

// searchWeb runs the web search tool; failures degrade to no results.
func (p *Planner) searchWeb(ctx context.Context, query string, numResults int) []tools.SearchResult {
	var results []tools.SearchResult
	err := p.runTool(ctx, "web_search",
		map[string]interface{}{"query": query, "num_results": numResults},
		&results)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("search failed")
		return nil
	}
	return results
}

// runTool dispatches a tool through the registry and decodes its JSON output.
func (p *Planner) runTool(ctx context.Context, name string, args map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode %s arguments: %w", name, err)
	}

	result, err := p.tools.Execute(ctx, name, payload)
	if err != nil {
		return err
	}
	if !result.Success() {
		return result.Error
	}
	return json.Unmarshal([]byte(result.Output), out)
}

// generate asks the LLM for the day-by-day prose plan.
func (p *Planner) generate(ctx context.Context, goal string, info GoalInfo, enrichment Enrichment, chunks chan<- string) (string, error) {
	location := info.Location
	if location == "" {
		location = "Not specified"
	}

	enrichmentJSON, err := json.MarshalIndent(enrichment, "", "  ")
	if err != nil {
		enrichmentJSON = []byte("{}")
	}
	available := string(enrichmentJSON)
	if len(available) > enrichmentBudget {
		available = available[:enrichmentBudget]
	}

	prompt := fmt.Sprintf(generatePromptTemplate, goal, info.DurationDays, location, available)
	messages := []llm.ChatMessage{
		llm.SystemMessage(generateSystemPrompt),
		llm.UserMessage(prompt),
	}
	log.Debug().Str("prompt", prompt).Msg("generating plan")

	if chunks == nil {
		response, err := p.client.Chat(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("plan generation failed: %w", err)
		}
		return response, nil
	}

	return p.streamGenerate(ctx, messages, chunks)
}

// streamGenerate runs the generation call in streaming mode, forwarding
// chunks while accumulating the full response for parsing.
func (p *Planner) streamGenerate(ctx context.Context, messages []llm.ChatMessage, chunks chan<- string) (string, error) {
	defer close(chunks)

	inner := make(chan string, 16)
	errCh := make(chan error, 1)
	go func() {
		_, err := p.client.StreamChat(ctx, messages, inner)
		close(inner)
		errCh <- err
	}()

	var response string
	for chunk := range inner {
		response += chunk
		select {
		case chunks <- chunk:
		case <-ctx.Done():
			<-errCh
			return "", ctx.Err()
		}
	}
	if err := <-errCh; err != nil {
		return "", fmt.Errorf("plan generation failed: %w", err)
	}
	return response, nil
}
