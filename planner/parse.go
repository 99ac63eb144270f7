// Line-oriented parsing of generated plan prose.
//
// The model is asked for "Day N" headers and numbered steps but is not
// forced into a schema, so parsing is best effort: lines mentioning a
// day start a new day, numbered or bulleted lines become steps, and a
// response with no recognizable structure degrades to a one-day plan
// carrying the raw text.

package planner

import (
	"strconv"
	"strings"
	"time"

	"github.com/dheerajsharma2399/ai-task-planning-agent/tools"
)

// dayMarkers are substrings that indicate a day header line.
// "день" handles models that answer in Russian.
var dayMarkers = []string{"day", "день"}

// stepMarkers are substrings that indicate a step line.
var stepMarkers = []string{"1.", "2.", "3.", "•", "-"}

// stepPrefixCutset strips numbering and bullets from step descriptions.
const stepPrefixCutset = "0123456789.-• "

// fallbackLimit bounds the raw text carried by the fallback plan.
const fallbackLimit = 500

// ParseResponse parses generated prose into a structured TaskPlan.
// The forecast, when present, is joined to days by position.
func ParseResponse(goal, response string, info GoalInfo, forecast *tools.Forecast) *TaskPlan {
	var days []DayPlan
	var currentDay string
	var currentSteps []PlanStep

	dayCounter := 1
	stepCounter := 1

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isDayLine(line) {
			if currentDay != "" && len(currentSteps) > 0 {
				days = append(days, DayPlan{
					DayNumber:   dayCounter,
					Theme:       currentDay,
					Steps:       currentSteps,
					WeatherInfo: forecastForDay(forecast, dayCounter),
				})
				dayCounter++
				currentSteps = nil
			}
			currentDay = line
			stepCounter = 1
			continue
		}

		if isStepLine(line) {
			currentSteps = append(currentSteps, PlanStep{
				StepNumber:  stepCounter,
				Title:       "Step " + strconv.Itoa(stepCounter),
				Description: strings.TrimLeft(line, stepPrefixCutset),
			})
			stepCounter++
		}
	}

	if currentDay != "" && len(currentSteps) > 0 {
		days = append(days, DayPlan{
			DayNumber:   dayCounter,
			Theme:       currentDay,
			Steps:       currentSteps,
			WeatherInfo: forecastForDay(forecast, dayCounter),
		})
	}

	if len(days) == 0 {
		days = []DayPlan{{
			DayNumber: 1,
			Theme:     "Day 1: Main Plan",
			Steps: []PlanStep{{
				StepNumber:  1,
				Title:       "Complete Plan",
				Description: truncate(response, fallbackLimit),
			}},
		}}
	}

	return &TaskPlan{
		Goal:      goal,
		CreatedAt: time.Now().Format(time.RFC3339),
		TotalDays: len(days),
		Days:      days,
		Metadata:  info,
	}
}

func isDayLine(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range dayMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isStepLine(line string) bool {
	for _, marker := range stepMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// forecastForDay returns the forecast entry for a 1-based day, or nil.
func forecastForDay(forecast *tools.Forecast, day int) *tools.DayForecast {
	if forecast == nil || day < 1 || day > len(forecast.Days) {
		return nil
	}
	entry := forecast.Days[day-1]
	return &entry
}

// truncate bounds a string to n runes without splitting a character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

