// Package llmjson extracts JSON objects from LLM responses.
//
// Models asked for JSON routinely wrap it in commentary or markdown fences.
// Goal analysis depends on pulling the object back out of that prose.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extract returns the JSON object portion of a response string.
// Handled patterns, in order:
// 1. Pure JSON response
// 2. JSON wrapped in markdown code blocks (```json ... ```)
// 3. JSON object embedded in text (first '{' to last '}')
//
// Only objects are handled, and brace matching is textual, so an object
// containing unbalanced braces inside strings can defeat it. Callers are
// expected to fall back to defaults on error.
func Extract(response string) (string, error) {
	response = stripCodeFences(response)

	var probe interface{}
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end != -1 && end > start {
			candidate := response[start : end+1]
			if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
				return candidate, nil
			}
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON from response: %q", preview)
}

// Unmarshal extracts the JSON object from a response and decodes it into result.
func Unmarshal(response string, result interface{}) error {
	jsonStr, err := Extract(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), result); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// stripCodeFences removes markdown code block markers from a response.
// Handles ```json\n...\n``` and ```\n...\n```.
func stripCodeFences(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}
