// Package syncstate keeps every view of the current search query - the
// sidebar form, the full-screen search form, and the shareable URL - in
// agreement. All facet changes funnel through a single Coordinator that
// debounces bursts of edits, rewrites the URL once per burst, and pushes
// the committed state back to every other surface without looping.
package syncstate

import (
	"log"
	"sync"
	"time"

	"github.com/bep/debounce"

	"stac-explorer/internal/query"
	"stac-explorer/internal/urlstate"
)

// Phase is the coordinator's state machine value
type Phase int32

const (
	// PhaseIdle - waiting for a change event or a navigation event
	PhaseIdle Phase = iota

	// PhaseDebouncing - edits received, coalescing timer running
	PhaseDebouncing

	// PhaseApplying - committed state is being pushed to surfaces;
	// change events arriving now are echoes of our own pushes and are
	// dropped
	PhaseApplying
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseApplying:
		return "applying"
	default:
		return "unknown"
	}
}

// DefaultDebounce is the coalescing window for rapid successive edits
const DefaultDebounce = 300 * time.Millisecond

// facetOrder fixes the application order of staged facets within one
// debounce window, so dateType is settled before the dates it governs.
var facetOrder = []string{
	query.FacetCollection,
	query.FacetCollectionSource,
	query.FacetLocationBbox,
	query.FacetLocationName,
	query.FacetDateType,
	query.FacetDateStart,
	query.FacetDateEnd,
	query.FacetCloudCover,
}

// Coordinator serializes facet updates from all UI surfaces into one
// consistent query state. Errors never escape its public entry points; a
// sync fault must not block the user's ability to keep searching.
type Coordinator struct {
	mu      sync.Mutex
	state   query.State
	phase   Phase
	pending map[string]interface{}

	debounced func(func())

	history  History
	surfaces []Surface
	notifier Notifier
	mapView  MapView

	// onCommit fires after a committed state has been pushed everywhere
	onCommit func(state query.State)

	droppedEvents int
}

// NewCoordinator creates a coordinator writing to the given history.
// A non-positive interval selects the default debounce window.
// The lock is never held across collaborator calls, so a surface that
// synchronously echoes a facet change re-enters through the phase guard
// instead of deadlocking.
func NewCoordinator(history History, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Coordinator{
		state:     query.Default(),
		phase:     PhaseIdle,
		pending:   make(map[string]interface{}),
		debounced: debounce.New(interval),
		history:   history,
	}
}

// RegisterSurface adds a UI surface that committed state is pushed to
func (c *Coordinator) RegisterSurface(surface Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surfaces = append(c.surfaces, surface)
}

// SetNotifier sets the toast collaborator
func (c *Coordinator) SetNotifier(notifier Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = notifier
}

// SetMapView sets the map collaborator
func (c *Coordinator) SetMapView(mapView MapView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mapView = mapView
}

// SetOnCommit sets the callback fired after each committed state
func (c *Coordinator) SetOnCommit(callback func(state query.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCommit = callback
}

// State returns a copy of the current query state
func (c *Coordinator) State() query.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Phase returns the coordinator's current state machine value
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// DroppedEvents returns how many change events were discarded because
// they arrived while state was being pushed to surfaces.
func (c *Coordinator) DroppedEvents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.droppedEvents
}

// ShareableQuery returns the encoded query string currently in the URL.
// Pure read, no state mutation.
func (c *Coordinator) ShareableQuery() string {
	return c.history.Current()
}

// NotifyFacetChanged is the entry point for any UI surface. The value is
// staged and committed after the debounce window; within one window the
// last value for a facet wins. Events arriving while the coordinator is
// pushing state to surfaces are echoes of that push and are dropped.
func (c *Coordinator) NotifyFacetChanged(facet string, value interface{}) {
	c.mu.Lock()
	if c.phase == PhaseApplying {
		c.droppedEvents++
		log.Printf("[SyncCoordinator] Dropped %s change during apply", facet)
		c.mu.Unlock()
		return
	}

	c.pending[facet] = value
	c.phase = PhaseDebouncing
	c.mu.Unlock()

	c.debounced(c.commit)
}

// commit applies staged facets, rewrites the URL once, and pushes the new
// state to every surface. Runs on the debounce timer goroutine.
func (c *Coordinator) commit() {
	c.mu.Lock()

	candidate := c.state.Clone()
	for _, facet := range facetOrder {
		value, ok := c.pending[facet]
		if !ok {
			continue
		}
		if err := candidate.Set(facet, value); err != nil {
			// A malformed facet drops silently at the smallest scope
			log.Printf("[SyncCoordinator] Ignoring %s: %v", facet, err)
		}
	}
	c.pending = make(map[string]interface{})
	repairDates(&candidate)

	if candidate.Equal(c.state) {
		c.phase = PhaseIdle
		c.mu.Unlock()
		return
	}

	bboxChanged := !sameBbox(c.state, candidate)
	c.state = candidate
	c.phase = PhaseApplying
	applied := c.state.Clone()
	c.mu.Unlock()

	c.performURLUpdate(applied)
	c.pushToSurfaces(applied, bboxChanged)

	c.mu.Lock()
	c.phase = PhaseIdle
	onCommit := c.onCommit
	c.mu.Unlock()

	if onCommit != nil {
		onCommit(applied)
	}
}

// RestoreFromURL reads the current history entry, and if the decoded
// state differs from the in-memory state, applies it to all surfaces and
// confirms with a toast. Called on startup and on every back/forward
// navigation. A no-op restore stays quiet.
func (c *Coordinator) RestoreFromURL() {
	decoded := urlstate.Decode(c.history.Current())

	c.mu.Lock()
	if decoded.Equal(c.state) {
		c.mu.Unlock()
		return
	}

	bboxChanged := !sameBbox(c.state, decoded)
	c.state = decoded
	c.pending = make(map[string]interface{})
	c.phase = PhaseApplying
	applied := c.state.Clone()
	notifier := c.notifier
	c.mu.Unlock()

	c.pushToSurfaces(applied, bboxChanged)

	if notifier != nil {
		c.safeCall("notifier", func() {
			notifier.Show("Search restored from link", SeverityInfo)
		})
	}

	c.mu.Lock()
	c.phase = PhaseIdle
	onCommit := c.onCommit
	c.mu.Unlock()

	if onCommit != nil {
		onCommit(applied)
	}
}

// Clear resets every facet to its default, rewrites the URL, and pushes
// the empty state to all surfaces.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	bboxChanged := c.state.LocationBbox != nil
	c.state.Reset()
	c.pending = make(map[string]interface{})
	c.phase = PhaseApplying
	applied := c.state.Clone()
	notifier := c.notifier
	c.mu.Unlock()

	c.performURLUpdate(applied)
	c.pushToSurfaces(applied, bboxChanged)

	if notifier != nil {
		c.safeCall("notifier", func() {
			notifier.Show("Search cleared", SeverityInfo)
		})
	}

	c.mu.Lock()
	c.phase = PhaseIdle
	onCommit := c.onCommit
	c.mu.Unlock()

	if onCommit != nil {
		onCommit(applied)
	}
}

// performURLUpdate writes the encoded state to history, exactly once per
// committed debounce window.
func (c *Coordinator) performURLUpdate(state query.State) {
	encoded := urlstate.Encode(state)
	c.safeCall("history", func() {
		c.history.Push(encoded)
	})
}

// pushToSurfaces delivers the committed state to every registered surface
// and, when the bbox facet changed, to the map collaborator. Collaborator
// panics are contained so one broken surface cannot break the rest.
func (c *Coordinator) pushToSurfaces(state query.State, bboxChanged bool) {
	c.mu.Lock()
	surfaces := make([]Surface, len(c.surfaces))
	copy(surfaces, c.surfaces)
	mapView := c.mapView
	c.mu.Unlock()

	for _, surface := range surfaces {
		s := surface
		c.safeCall(s.Name(), func() {
			s.ApplyState(state)
		})
	}

	if bboxChanged && mapView != nil && state.LocationBbox != nil {
		box := *state.LocationBbox
		c.safeCall("map", func() {
			mapView.FitToBounds(box)
			mapView.ShowBounds(box)
		})
	}
}

// safeCall contains a collaborator panic; a sync fault degrades to one
// stale surface rather than a crash.
func (c *Coordinator) safeCall(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SyncCoordinator] Collaborator %s panicked: %v", what, r)
		}
	}()
	fn()
}

// repairDates drops a reversed custom date range; both dates go together
func repairDates(s *query.State) {
	if s.DateStart == "" || s.DateEnd == "" {
		return
	}
	if s.DateStart > s.DateEnd { // ISO 8601 sorts lexically
		log.Printf("[SyncCoordinator] Dropping reversed date range %s..%s", s.DateStart, s.DateEnd)
		s.DateStart = ""
		s.DateEnd = ""
	}
}

func sameBbox(a, b query.State) bool {
	if (a.LocationBbox == nil) != (b.LocationBbox == nil) {
		return false
	}
	return a.LocationBbox == nil || *a.LocationBbox == *b.LocationBbox
}
