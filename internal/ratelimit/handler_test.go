package ratelimit_test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stac-explorer/internal/ratelimit"
)

func newHandler(t *testing.T) *ratelimit.Handler {
	t.Helper()
	h := ratelimit.NewHandler(nil)
	t.Cleanup(h.Close)
	h.SetAutoRetry(false)
	return h
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status}
}

func TestCheckResponseDetectsThrottling(t *testing.T) {
	h := newHandler(t)

	for _, status := range []int{http.StatusTooManyRequests, http.StatusForbidden, 509} {
		assert.True(t, h.CheckResponse("earth_search", response(status)), "status %d", status)
		assert.True(t, h.IsRateLimited("earth_search"))
		h.ManualRetry("earth_search")
	}

	assert.False(t, h.CheckResponse("earth_search", response(http.StatusOK)))
	assert.False(t, h.CheckResponse("earth_search", response(http.StatusNotFound)))
	assert.False(t, h.IsRateLimited("earth_search"))
}

func TestRateLimitIsPerCatalog(t *testing.T) {
	h := newHandler(t)

	h.CheckResponse("earth_search", response(429))
	assert.True(t, h.IsRateLimited("earth_search"))
	assert.False(t, h.IsRateLimited("planetary_computer"))
}

func TestBackoffEscalates(t *testing.T) {
	h := newHandler(t)

	h.CheckResponse("earth_search", response(429))
	first := h.GetCurrentState("earth_search")
	require.NotNil(t, first)
	assert.Equal(t, 0, first.RetryAttempt)
	assert.Contains(t, first.Message, "Earth Search")
	assert.Contains(t, first.Message, "429")

	h.CheckResponse("earth_search", response(429))
	second := h.GetCurrentState("earth_search")
	require.NotNil(t, second)
	assert.Equal(t, 1, second.RetryAttempt)
	assert.True(t, second.NextRetryAt.After(first.NextRetryAt))
}

func TestRecoveryAfterSuccess(t *testing.T) {
	h := newHandler(t)

	var recoveredMu sync.Mutex
	var recovered []string
	h.SetOnRecovered(func(catalog string) {
		recoveredMu.Lock()
		defer recoveredMu.Unlock()
		recovered = append(recovered, catalog)
	})

	h.CheckResponse("earth_search", response(429))
	require.True(t, h.IsRateLimited("earth_search"))

	h.CheckResponse("earth_search", response(http.StatusOK))
	assert.False(t, h.IsRateLimited("earth_search"))
	assert.Nil(t, h.GetCurrentState("earth_search"))

	require.Eventually(t, func() bool {
		recoveredMu.Lock()
		defer recoveredMu.Unlock()
		return len(recovered) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestManualRetryFiresCallback(t *testing.T) {
	h := newHandler(t)

	var retryMu sync.Mutex
	var retries []ratelimit.Event
	h.SetOnRetry(func(event ratelimit.Event) {
		retryMu.Lock()
		defer retryMu.Unlock()
		retries = append(retries, event)
	})

	// Manual retry with no active limit is a no-op
	h.ManualRetry("earth_search")

	h.CheckResponse("earth_search", response(429))
	h.ManualRetry("earth_search")

	assert.False(t, h.IsRateLimited("earth_search"))
	require.Eventually(t, func() bool {
		retryMu.Lock()
		defer retryMu.Unlock()
		return len(retries) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRateLimitEventCallback(t *testing.T) {
	h := newHandler(t)

	var eventMu sync.Mutex
	var events []ratelimit.Event
	h.SetOnRateLimit(func(event ratelimit.Event) {
		eventMu.Lock()
		defer eventMu.Unlock()
		events = append(events, event)
	})

	h.CheckResponse("earth_search", response(429))

	require.Eventually(t, func() bool {
		eventMu.Lock()
		defer eventMu.Unlock()
		return len(events) == 1
	}, time.Second, 5*time.Millisecond)

	eventMu.Lock()
	defer eventMu.Unlock()
	assert.Equal(t, "earth_search", events[0].Catalog)
	assert.Equal(t, 429, events[0].StatusCode)
}
