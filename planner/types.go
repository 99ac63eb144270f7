// Package planner turns free-text goals into structured day-by-day plans.
package planner

import (
	"github.com/dheerajsharma2399/ai-task-planning-agent/tools"
)

// PlanStep represents a single step in a plan.
type PlanStep struct {
	StepNumber     int                    `json:"step_number"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Time           string                 `json:"time,omitempty"`
	Location       string                 `json:"location,omitempty"`
	AdditionalInfo map[string]interface{} `json:"additional_info,omitempty"`
}

// DayPlan represents one day of a plan.
type DayPlan struct {
	DayNumber   int                `json:"day_number"`
	Date        string             `json:"date,omitempty"`
	Theme       string             `json:"theme"`
	Steps       []PlanStep         `json:"steps"`
	WeatherInfo *tools.DayForecast `json:"weather_info,omitempty"`
}

// TaskPlan is a complete task plan.
type TaskPlan struct {
	Goal      string    `json:"goal"`
	CreatedAt string    `json:"created_at"`
	TotalDays int       `json:"total_days"`
	Days      []DayPlan `json:"days"`
	Metadata  GoalInfo  `json:"metadata"`
}

// GoalInfo is the structured intent extracted from a goal.
type GoalInfo struct {
	DurationDays int      `json:"duration_days"`
	Location     string   `json:"location,omitempty"`
	Type         string   `json:"type"`
	KeyThemes    []string `json:"key_themes"`
}

// defaultGoalInfo is the fallback when intent extraction fails.
func defaultGoalInfo() GoalInfo {
	return GoalInfo{
		DurationDays: 1,
		Type:         "general",
		KeyThemes:    []string{"general planning"},
	}
}

// Enrichment holds external information gathered for a goal.
type Enrichment struct {
	SearchResults []tools.SearchResult            `json:"search_results,omitempty"`
	Weather       *tools.Forecast                 `json:"weather,omitempty"`
	WeatherError  string                          `json:"weather_error,omitempty"`
	ThemeResults  map[string][]tools.SearchResult `json:"theme_results,omitempty"`
}
