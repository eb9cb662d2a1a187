package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// CurrencyOptions configures the currency conversion tool.
type CurrencyOptions struct {
	// APIKey authenticates against the rates API. Defaults to the
	// RATE_CONVERTER_API_KEY environment variable.
	APIKey string
	// BaseURL is the convert endpoint.
	BaseURL string
	// HTTPClient used for requests. Defaults to http.DefaultClient; the
	// per-attempt timeout comes from the invoking chain's context.
	HTTPClient *http.Client
}

// CurrencyTool converts an amount between two currencies via a rates API.
//
// Boundary contract: request carries from/to currency codes plus a numeric
// amount; a successful response contains a numeric `result` and a `to`
// currency code. A missing credential, network failure, non-2xx status or
// undecodable body is recoverable; a well-formed body lacking `result` or
// `to` is a value error, which feeds the fallback only when the next tool in
// the chain is declared an equivalent capability (e.g. a market-data quote
// for the same forex pair).
type CurrencyTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewCurrencyTool constructs the conversion tool with optional overrides.
func NewCurrencyTool(optFns ...func(o *CurrencyOptions)) *CurrencyTool {
	opts := CurrencyOptions{
		APIKey:     os.Getenv("RATE_CONVERTER_API_KEY"),
		BaseURL:    "https://api.unirateapi.com/api/convert",
		HTTPClient: http.DefaultClient,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &CurrencyTool{apiKey: opts.APIKey, baseURL: opts.BaseURL, client: opts.HTTPClient}
}

// Name implements Tool.
func (t *CurrencyTool) Name() string { return "convert_currency" }

// Description implements Tool.
func (t *CurrencyTool) Description() string {
	return "Convert an amount from one currency to another using live exchange rates"
}

// Parameters implements Tool.
func (t *CurrencyTool) Parameters() map[string]any {
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

type convertResponse struct {
	Result *float64 `json:"result"`
	To     string   `json:"to"`
}

// Call implements Tool.
func (t *CurrencyTool) Call(ctx context.Context, args map[string]any) (string, error) {
	if t.apiKey == "" {
		return "", NewRecoverableError(t.Name(), CodeMissingCredential, "rates API key is not set")
	}

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

	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("from", strings.ToUpper(from))
	params.Set("to", strings.ToUpper(to))
	params.Set("amount", fmt.Sprintf("%v", amount))

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
		return "", NewRecoverableError(t.Name(), CodeHTTPStatus, fmt.Sprintf("rates API returned HTTP %d", resp.StatusCode))
	}

	var payload convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", NewRecoverableError(t.Name(), CodeMalformedResponse, err.Error())
	}

	if payload.Result == nil || payload.To == "" {
		return "", NewValueError(t.Name(), "response lacks result or target currency")
	}

	return fmt.Sprintf("Converted amount: %.2f %s", *payload.Result, payload.To), nil
}
