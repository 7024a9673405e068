package syncstate

import (
	"stac-explorer/internal/common"
	"stac-explorer/internal/query"
)

// Surface is one UI widget capable of displaying and mutating facets
// (the sidebar form, the full-screen assisted search). The coordinator
// never inspects a surface's internals; it only pushes query state in and
// receives facet-change notifications back.
type Surface interface {
	// Name identifies the surface in logs
	Name() string

	// ApplyState pushes the full query state into the surface's display
	ApplyState(state query.State)
}

// Notifier shows user-visible feedback for restore and clear events
type Notifier interface {
	Show(message, severity string)
}

// MapView is the map collaborator, invoked only when the bbox facet changes
type MapView interface {
	FitToBounds(box common.BoundingBox)
	ShowBounds(box common.BoundingBox)
}

// History abstracts the address-bar analog the coordinator writes encoded
// query strings to and restores them from.
type History interface {
	Current() string
	Push(rawQuery string)
	Replace(rawQuery string)
}

// Notification severities
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)
