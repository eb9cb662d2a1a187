package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name  string
	calls int
	fn    func(ctx context.Context, args map[string]any) (string, error)
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }

func (s *stubTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (s *stubTool) Call(ctx context.Context, args map[string]any) (string, error) {
	s.calls++
	return s.fn(ctx, args)
}

func succeeding(name, result string) *stubTool {
	return &stubTool{name: name, fn: func(context.Context, map[string]any) (string, error) {
		return result, nil
	}}
}

func failingRecoverable(name, code string) *stubTool {
	return &stubTool{name: name, fn: func(context.Context, map[string]any) (string, error) {
		return "", NewRecoverableError(name, code, "upstream unavailable")
	}}
}

func failingValue(name string) *stubTool {
	return &stubTool{name: name, fn: func(context.Context, map[string]any) (string, error) {
		return "", NewValueError(name, "response missing expected field")
	}}
}

func TestChainFirstToolSucceeds(t *testing.T) {
	primary := succeeding("primary", "ok")
	backup := succeeding("backup", "never")

	chain := NewChain("primary", []Tool{primary, backup})

	result, attempts, err := chain.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	require.Len(t, attempts, 1)
	assert.Equal(t, "primary", attempts[0].Tool)
	assert.Equal(t, 0, backup.calls)
}

func TestChainAdvancesOnRecoverableError(t *testing.T) {
	primary := failingRecoverable("primary", CodeMissingCredential)
	backup := succeeding("backup", "from backup")

	chain := NewChain("primary", []Tool{primary, backup})

	result, attempts, err := chain.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "from backup", result)

	// Both attempts recorded in preference order.
	require.Len(t, attempts, 2)
	assert.Equal(t, "primary", attempts[0].Tool)
	assert.NotEmpty(t, attempts[0].Error)
	assert.Equal(t, "backup", attempts[1].Tool)
	assert.Equal(t, "from backup", attempts[1].Result)
}

func TestChainValueErrorStopsWithoutEquivalent(t *testing.T) {
	primary := failingValue("primary")
	backup := succeeding("backup", "never")

	chain := NewChain("primary", []Tool{primary, backup})

	_, attempts, err := chain.Invoke(context.Background(), nil)
	require.Error(t, err)

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeMissingField, te.Code)

	require.Len(t, attempts, 1)
	assert.Equal(t, 0, backup.calls)
}

func TestChainValueErrorAdvancesIntoEquivalent(t *testing.T) {
	primary := failingValue("primary")
	backup := succeeding("backup", "from equivalent")

	chain := NewChain("primary", []Tool{primary, backup}, func(o *ChainOptions) {
		o.Equivalent = []string{"backup"}
	})

	result, attempts, err := chain.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "from equivalent", result)
	require.Len(t, attempts, 2)
}

func TestChainExhaustion(t *testing.T) {
	primary := failingRecoverable("primary", CodeNetwork)
	backup := failingRecoverable("backup", CodeHTTPStatus)

	chain := NewChain("primary", []Tool{primary, backup})

	_, attempts, err := chain.Invoke(context.Background(), nil)
	require.Error(t, err)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "primary", exhausted.Capability)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.Len(t, attempts, 2)
}

func TestChainAttemptTimeoutIsRecoverable(t *testing.T) {
	slow := &stubTool{name: "slow", fn: func(ctx context.Context, _ map[string]any) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	backup := succeeding("backup", "fast answer")

	chain := NewChain("slow", []Tool{slow, backup}, func(o *ChainOptions) {
		o.AttemptTimeout = 10 * time.Millisecond
	})

	result, attempts, err := chain.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "fast answer", result)
	require.Len(t, attempts, 2)
	assert.Contains(t, attempts[0].Error, "attempt timed out")
}

func TestChainCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := NewChain("primary", []Tool{succeeding("primary", "ok")})

	_, _, err := chain.Invoke(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain("none", nil)

	_, _, err := chain.Invoke(context.Background(), nil)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 0, exhausted.Attempts)
}
