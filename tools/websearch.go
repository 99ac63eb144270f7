// Web search tool backed by the DuckDuckGo HTML endpoint.
//
// This is a demo-grade tool: it confirms the query reaches the search
// engine but synthesizes placeholder results instead of scraping the
// response markup. Planning never fails on search errors; the tool
// degrades to an empty result set.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// WebSearch searches the web for planning context.
type WebSearch struct {
	baseURL string
	client  *http.Client
}

// NewWebSearch creates a web search tool against the public endpoint.
func NewWebSearch() *WebSearch {
	return NewWebSearchWithURL(duckDuckGoURL)
}

// NewWebSearchWithURL creates a web search tool against a custom endpoint.
// Used by tests to point at a local server.
func NewWebSearchWithURL(baseURL string) *WebSearch {
	return &WebSearch{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Search returns up to numResults results for the query.
// Errors are logged and reported as an empty result set so enrichment
// never blocks plan creation.
func (w *WebSearch) Search(ctx context.Context, query string, numResults int) []SearchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("search request build failed")
		return []SearchResult{}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("search error")
		return []SearchResult{}
	}
	defer resp.Body.Close()

	results := []SearchResult{}
	if resp.StatusCode == http.StatusOK {
		// Demo extraction: confirm reachability, synthesize result stubs.
		n := numResults
		if n > 3 {
			n = 3
		}
		for i := 0; i < n; i++ {
			results = append(results, SearchResult{
				Title:   fmt.Sprintf("Result %d for: %s", i+1, query),
				Snippet: fmt.Sprintf("Information about %s from web search.", query),
				URL:     fmt.Sprintf("https://example.com/%d", i),
			})
		}
	}
	return results
}

// Metadata returns tool metadata.
func (w *WebSearch) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "web_search",
		Description: "Search the web for information about a topic",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "Search query", Required: true},
			{Name: "num_results", ParamType: "integer", Description: "Maximum results to return (default 5)", Required: false},
		},
	}
}

type webSearchArgs struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

// Validate checks the arguments without running the search.
func (w *WebSearch) Validate(args json.RawMessage) error {
	var parsed webSearchArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.Query == "" {
		return fmt.Errorf("query is required")
	}
	return nil
}

// Execute runs the tool with JSON arguments.
func (w *WebSearch) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var parsed webSearchArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if parsed.Query == "" {
		return FailureResult(fmt.Errorf("query is required")), nil
	}
	if parsed.NumResults <= 0 {
		parsed.NumResults = 5
	}

	results := w.Search(ctx, parsed.Query, parsed.NumResults)
	out, err := json.Marshal(results)
	if err != nil {
		return FailureResult(err), nil
	}
	return SuccessResult(string(out)), nil
}

// Verify WebSearch implements Tool
var _ Tool = (*WebSearch)(nil)
