package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "ledger", ConsecutiveFailures: 2, OpenTimeout: time.Minute}, nil)
	boom := errors.New("connection refused")

	require.ErrorIs(t, b.Do(func() error { return boom }), boom)
	require.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, "open", b.State())

	calls := 0
	err := b.Do(func() error {
		calls++
		return nil
	})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "ledger"}, nil)
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, "closed", b.State())
}

func TestNilBreakerRunsDirectly(t *testing.T) {
	var b *Breaker
	called := false
	require.NoError(t, b.Do(func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
