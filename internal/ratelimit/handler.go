package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"stac-explorer/internal/common"
)

// RetryStrategy defines the backoff intervals for rate limit retries
type RetryStrategy struct {
	Intervals  []time.Duration
	MaxRetries int
}

// DefaultRetryStrategy returns the staged backoff used for STAC catalogs.
// Search requests are cheap and catalogs recover quickly, so the schedule
// is much shorter than a bulk-download backoff would be.
func DefaultRetryStrategy() *RetryStrategy {
	return &RetryStrategy{
		Intervals: []time.Duration{
			30 * time.Second,
			1 * time.Minute,
			2 * time.Minute,
			5 * time.Minute,
			10 * time.Minute,
		},
		MaxRetries: 8,
	}
}

// Event represents a rate limit occurrence on one catalog
type Event struct {
	Timestamp    time.Time `json:"timestamp" ts_type:"string"`
	Catalog      string    `json:"catalog"`      // catalog identifier, e.g. "earth_search"
	StatusCode   int       `json:"statusCode"`   // HTTP status (429, 403, 509)
	RetryAttempt int       `json:"retryAttempt"` // 0 = first occurrence
	NextRetryAt  time.Time `json:"nextRetryAt" ts_type:"string"`
	Message      string    `json:"message"`
}

// Handler manages rate limit detection and retry scheduling per catalog
type Handler struct {
	mu               sync.RWMutex
	rateLimited      map[string]*Event
	strategy         *RetryStrategy
	onRateLimit      func(event Event)
	onRetry          func(event Event)
	onRecovered      func(catalog string)
	autoRetryEnabled bool
	ctx              context.Context
	cancel           context.CancelFunc
}

// NewHandler creates a new rate limit handler
func NewHandler(strategy *RetryStrategy) *Handler {
	if strategy == nil {
		strategy = DefaultRetryStrategy()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Handler{
		rateLimited:      make(map[string]*Event),
		strategy:         strategy,
		autoRetryEnabled: true,
		ctx:              ctx,
		cancel:           cancel,
	}
}

// SetOnRateLimit sets the callback for rate limit events
func (h *Handler) SetOnRateLimit(callback func(event Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRateLimit = callback
}

// SetOnRetry sets the callback for retry attempts
func (h *Handler) SetOnRetry(callback func(event Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRetry = callback
}

// SetOnRecovered sets the callback for recovery from rate limit
func (h *Handler) SetOnRecovered(callback func(catalog string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecovered = callback
}

// IsRateLimited checks if a catalog is currently rate limited
func (h *Handler) IsRateLimited(catalog string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, limited := h.rateLimited[catalog]
	return limited
}

// CheckResponse analyzes an HTTP response for rate limit indicators.
// Returns true when the catalog is currently throttling us.
func (h *Handler) CheckResponse(catalog string, resp *http.Response) bool {
	isRateLimited := resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == 509 // Bandwidth Limit Exceeded

	if !isRateLimited {
		h.checkRecovery(catalog)
		return false
	}

	h.recordRateLimit(catalog, resp.StatusCode)
	return true
}

// recordRateLimit records an event and schedules the next retry
func (h *Handler) recordRateLimit(catalog string, statusCode int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, exists := h.rateLimited[catalog]

	retryAttempt := 0
	if exists {
		retryAttempt = existing.RetryAttempt + 1
	}

	var interval time.Duration
	if retryAttempt < len(h.strategy.Intervals) {
		interval = h.strategy.Intervals[retryAttempt]
	} else {
		interval = h.strategy.Intervals[len(h.strategy.Intervals)-1]
	}

	nextRetryAt := time.Now().Add(interval)

	event := Event{
		Timestamp:    time.Now(),
		Catalog:      catalog,
		StatusCode:   statusCode,
		RetryAttempt: retryAttempt,
		NextRetryAt:  nextRetryAt,
		Message:      buildMessage(catalog, statusCode, retryAttempt, nextRetryAt),
	}

	h.rateLimited[catalog] = &event

	log.Printf("[RateLimit] %s rate limited (attempt %d). Next retry at %s",
		catalog, retryAttempt, nextRetryAt.Format(time.RFC3339))

	if h.onRateLimit != nil {
		go h.onRateLimit(event)
	}

	if h.autoRetryEnabled && retryAttempt < h.strategy.MaxRetries {
		go h.scheduleRetry(catalog, event)
	}
}

// scheduleRetry waits out the backoff interval, then signals the UI that
// searching this catalog may be attempted again.
func (h *Handler) scheduleRetry(catalog string, event Event) {
	select {
	case <-time.After(time.Until(event.NextRetryAt)):
		h.mu.Lock()
		current, exists := h.rateLimited[catalog]
		if !exists || current.Timestamp != event.Timestamp {
			// Rate limit was already cleared or replaced
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()

		log.Printf("[RateLimit] Retry window open for %s", catalog)

		if h.onRetry != nil {
			go h.onRetry(event)
		}
		// The actual retry happens on the next search; callers check
		// IsRateLimited() before issuing a request.

	case <-h.ctx.Done():
		return
	}
}

// checkRecovery clears the rate limit state after a successful response
func (h *Handler) checkRecovery(catalog string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rateLimited[catalog]; exists {
		delete(h.rateLimited, catalog)
		log.Printf("[RateLimit] %s rate limit cleared", catalog)

		if h.onRecovered != nil {
			go h.onRecovered(catalog)
		}
	}
}

// ManualRetry lets the user clear a catalog's rate limit state and try again
func (h *Handler) ManualRetry(catalog string) {
	h.mu.Lock()
	event, exists := h.rateLimited[catalog]
	if !exists {
		h.mu.Unlock()
		return
	}

	log.Printf("[RateLimit] Manual retry requested for %s", catalog)

	delete(h.rateLimited, catalog)
	h.mu.Unlock()

	if h.onRetry != nil {
		go h.onRetry(*event)
	}
}

// SetAutoRetry enables or disables automatic retries
func (h *Handler) SetAutoRetry(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.autoRetryEnabled = enabled
}

// GetCurrentState returns a copy of the current rate limit state for a catalog
func (h *Handler) GetCurrentState(catalog string) *Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event, exists := h.rateLimited[catalog]; exists {
		eventCopy := *event
		return &eventCopy
	}
	return nil
}

// buildMessage creates a user-friendly message for the toast
func buildMessage(catalog string, statusCode int, retryAttempt int, nextRetryAt time.Time) string {
	name := common.CatalogDisplayName(catalog)
	wait := time.Until(nextRetryAt).Round(time.Second)

	if retryAttempt == 0 {
		return fmt.Sprintf(
			"%s is rate limiting searches (HTTP %d). Retrying automatically in %s.",
			name, statusCode, wait)
	}
	return fmt.Sprintf(
		"%s is still rate limited (attempt %d). Next retry in %s.",
		name, retryAttempt+1, wait)
}

// Close shuts down the rate limit handler
func (h *Handler) Close() {
	h.cancel()
}
