package main

import (
	"context"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"stac-explorer/internal/common"
	"stac-explorer/internal/query"
)

// The two search surfaces and the map live in the frontend; the
// coordinator reaches them through Wails events. Each adapter satisfies
// one collaborator interface with a single event stream.

// eventSurface pushes committed query state to one frontend search form
type eventSurface struct {
	ctx   context.Context
	name  string
	event string
}

func (s *eventSurface) Name() string {
	return s.name
}

func (s *eventSurface) ApplyState(state query.State) {
	wailsRuntime.EventsEmit(s.ctx, s.event, state)
}

// eventNotifier shows toasts in the frontend
type eventNotifier struct {
	ctx context.Context
}

func (n *eventNotifier) Show(message, severity string) {
	wailsRuntime.EventsEmit(n.ctx, "notification", map[string]interface{}{
		"message":  message,
		"severity": severity,
	})
}

// eventMapView forwards bbox changes to the frontend map
type eventMapView struct {
	ctx context.Context
}

func (m *eventMapView) FitToBounds(box common.BoundingBox) {
	wailsRuntime.EventsEmit(m.ctx, "map-fit-bounds", box)
}

func (m *eventMapView) ShowBounds(box common.BoundingBox) {
	wailsRuntime.EventsEmit(m.ctx, "map-show-bounds", box)
}
