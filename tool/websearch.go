package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// WebSearchOptions configures the web search tool.
type WebSearchOptions struct {
	// APIKey authenticates against the search API. Defaults to the
	// SEARCH_API_KEY environment variable.
	APIKey string
	// BaseURL is the search endpoint.
	BaseURL string
	// MaxResults caps how many hits are formatted into the result.
	MaxResults int
	// HTTPClient used for requests.
	HTTPClient *http.Client
}

// WebSearchTool queries a JSON web-search API and formats the hits into a
// compact text block for the reasoning capability.
type WebSearchTool struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

// NewWebSearchTool constructs the search tool with optional overrides.
func NewWebSearchTool(optFns ...func(o *WebSearchOptions)) *WebSearchTool {
	opts := WebSearchOptions{
		APIKey:     os.Getenv("SEARCH_API_KEY"),
		BaseURL:    "https://api.tavily.com/search",
		MaxResults: 5,
		HTTPClient: http.DefaultClient,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &WebSearchTool{
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		maxResults: opts.MaxResults,
		client:     opts.HTTPClient,
	}
}

// Name implements Tool.
func (t *WebSearchTool) Name() string { return "web_search" }

// Description implements Tool.
func (t *WebSearchTool) Description() string {
	return "Search the web for current, destination-specific information"
}

// Parameters implements Tool.
func (t *WebSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query"},
		},
		"required": []string{"query"},
	}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Call implements Tool.
func (t *WebSearchTool) Call(ctx context.Context, args map[string]any) (string, error) {
	if t.apiKey == "" {
		return "", NewRecoverableError(t.Name(), CodeMissingCredential, "search API key is not set")
	}

	query, _ := args["query"].(string)

	body, err := json.Marshal(searchRequest{APIKey: t.apiKey, Query: query, MaxResults: t.maxResults})
	if err != nil {
		return "", &Error{Tool: t.Name(), Message: err.Error(), Code: CodeExecution}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Tool: t.Name(), Message: err.Error(), Code: CodeExecution}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", NewRecoverableError(t.Name(), CodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", NewRecoverableError(t.Name(), CodeHTTPStatus, fmt.Sprintf("search API returned HTTP %d", resp.StatusCode))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", NewRecoverableError(t.Name(), CodeMalformedResponse, err.Error())
	}

	if len(payload.Results) == 0 {
		return "", NewValueError(t.Name(), "response contains no results")
	}

	var sb strings.Builder
	for i, r := range payload.Results {
		if i >= t.maxResults {
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%s)\n%s\n", i+1, r.Title, r.URL, r.Content)
	}

	return sb.String(), nil
}
