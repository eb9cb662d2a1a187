package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func TestFunctionToolCall(t *testing.T) {
	ft := NewFunctionTool("echo", "echoes text", echoParams(),
		func(_ context.Context, args map[string]any) (string, error) {
			return args["text"].(string), nil
		})

	result, err := ft.Call(context.Background(), map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestFunctionToolRejectsMissingRequired(t *testing.T) {
	ft := NewFunctionTool("echo", "echoes text", echoParams(),
		func(_ context.Context, _ map[string]any) (string, error) {
			t.Fatal("function must not run on invalid arguments")
			return "", nil
		})

	_, err := ft.Call(context.Background(), map[string]any{})

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeValidation, te.Code)
}

func TestFunctionToolWrapsPlainErrors(t *testing.T) {
	ft := NewFunctionTool("boom", "always fails", echoParams(),
		func(_ context.Context, _ map[string]any) (string, error) {
			return "", errors.New("kaput")
		})

	_, err := ft.Call(context.Background(), map[string]any{"text": "x"})

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeExecution, te.Code)
	assert.Contains(t, te.Message, "kaput")
}

func TestFunctionToolForwardsToolErrors(t *testing.T) {
	original := NewRecoverableError("boom", CodeNetwork, "down")

	ft := NewFunctionTool("boom", "always fails", echoParams(),
		func(_ context.Context, _ map[string]any) (string, error) {
			return "", original
		})

	_, err := ft.Call(context.Background(), map[string]any{"text": "x"})

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Same(t, original, te)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type convertArgs struct {
		FromCurrency string  `json:"from_currency" description:"Source currency code"`
		ToCurrency   string  `json:"to_currency"`
		Amount       float64 `json:"amount"`
	}

	ft := NewFunctionToolFromStruct("convert", "converts", convertArgs{},
		func(_ context.Context, _ map[string]any) (string, error) {
			return "ok", nil
		})

	params := ft.Parameters()
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "from_currency")
	assert.Contains(t, props, "amount")

	_, err := ft.Call(context.Background(), map[string]any{})
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeValidation, te.Code)
}
