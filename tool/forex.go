package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ForexOptions configures the market-data forex tool.
type ForexOptions struct {
	// BaseURL is the quote endpoint.
	BaseURL string
	// HTTPClient used for requests.
	HTTPClient *http.Client
}

// ForexTool resolves a currency conversion through a market-data quote for
// the matching forex pair (FROMTO=X). It accepts the same arguments as
// CurrencyTool so it can serve as the declared equivalent-capability fallback
// in a conversion chain.
type ForexTool struct {
	baseURL string
	client  *http.Client
}

// NewForexTool constructs the market-data forex tool with optional overrides.
func NewForexTool(optFns ...func(o *ForexOptions)) *ForexTool {
	opts := ForexOptions{
		BaseURL:    "https://query1.finance.yahoo.com/v7/finance/quote",
		HTTPClient: http.DefaultClient,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ForexTool{baseURL: opts.BaseURL, client: opts.HTTPClient}
}

// Name implements Tool.
func (t *ForexTool) Name() string { return "market_data_forex" }

// Description implements Tool.
func (t *ForexTool) Description() string {
	return "Convert an amount between currencies using a market-data quote for the forex pair (e.g. USDEUR=X)"
}

// Parameters implements Tool.
func (t *ForexTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"from_currency": map[string]any{"type": "string", "description": "Source currency code, e.g. USD"},
			"to_currency":   map[string]any{"type": "string", "description": "Target currency code, e.g. EUR"},
			"amount":        map[string]any{"type": "number", "description": "Amount to convert"},
		},
		"required": []string{"from_currency", "to_currency", "amount"},
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Call implements Tool.
func (t *ForexTool) Call(ctx context.Context, args map[string]any) (string, error) {
	from, _ := args["from_currency"].(string)
	to, _ := args["to_currency"].(string)
	amount, ok := args["amount"].(float64)
	if !ok {
		if i, isInt := args["amount"].(int); isInt {
			amount = float64(i)
		} else {
			return "", &Error{Tool: t.Name(), Message: "amount must be a number", Code: CodeValidation}
		}
	}

	pair := strings.ToUpper(from) + strings.ToUpper(to) + "=X"

	params := url.Values{}
	params.Set("symbols", pair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", &Error{Tool: t.Name(), Message: err.Error(), Code: CodeExecution}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", NewRecoverableError(t.Name(), CodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", NewRecoverableError(t.Name(), CodeHTTPStatus, fmt.Sprintf("quote API returned HTTP %d", resp.StatusCode))
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", NewRecoverableError(t.Name(), CodeMalformedResponse, err.Error())
	}

	results := payload.QuoteResponse.Result
	if len(results) == 0 || results[0].RegularMarketPrice == nil {
		return "", NewValueError(t.Name(), fmt.Sprintf("no market price for pair %s", pair))
	}

	rate := *results[0].RegularMarketPrice

	return fmt.Sprintf("Converted amount: %.2f %s (via %s at rate %.6f)", amount*rate, strings.ToUpper(to), pair, rate), nil
}
