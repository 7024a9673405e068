// Package history keeps an in-process navigation stack for the explorer.
// The desktop shell has no browser address bar, so deep-linkable query
// strings are tracked here; Back and Forward play the role of popstate.
package history

import (
	"log"
	"sync"
)

// Stack is a linear navigation history of encoded query strings
type Stack struct {
	mu      sync.Mutex
	entries []string
	index   int

	// onNavigate fires when Back or Forward lands on an entry. It is not
	// fired for Push or Replace - those originate from the coordinator,
	// which already knows the new state.
	onNavigate func(rawQuery string)
}

// NewStack creates a history stack with a single empty entry
func NewStack() *Stack {
	return &Stack{
		entries: []string{""},
		index:   0,
	}
}

// SetOnNavigate sets the callback invoked on back/forward navigation
func (h *Stack) SetOnNavigate(callback func(rawQuery string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNavigate = callback
}

// Current returns the query string at the current position
func (h *Stack) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push appends a new entry after the current position, discarding any
// forward entries (mirrors browser history semantics).
func (h *Stack) Push(rawQuery string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.entries[h.index] == rawQuery {
		return
	}

	h.entries = append(h.entries[:h.index+1], rawQuery)
	h.index = len(h.entries) - 1
}

// Replace overwrites the current entry without growing the stack
func (h *Stack) Replace(rawQuery string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = rawQuery
}

// CanGoBack reports whether a Back navigation is possible
func (h *Stack) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index > 0
}

// CanGoForward reports whether a Forward navigation is possible
func (h *Stack) CanGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index < len(h.entries)-1
}

// Back moves to the previous entry and fires the navigation callback.
// Returns false if already at the oldest entry.
func (h *Stack) Back() bool {
	h.mu.Lock()
	if h.index == 0 {
		h.mu.Unlock()
		return false
	}
	h.index--
	entry := h.entries[h.index]
	callback := h.onNavigate
	h.mu.Unlock()

	log.Printf("[History] Back to %q", entry)
	if callback != nil {
		callback(entry)
	}
	return true
}

// Forward moves to the next entry and fires the navigation callback.
// Returns false if already at the newest entry.
func (h *Stack) Forward() bool {
	h.mu.Lock()
	if h.index >= len(h.entries)-1 {
		h.mu.Unlock()
		return false
	}
	h.index++
	entry := h.entries[h.index]
	callback := h.onNavigate
	h.mu.Unlock()

	log.Printf("[History] Forward to %q", entry)
	if callback != nil {
		callback(entry)
	}
	return true
}

// Len returns the number of entries in the stack
func (h *Stack) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
