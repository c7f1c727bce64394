// Package behavior defines the contract between the registry and the widget
// adapters: typed markers, the Behavior interface, attachment guards, and the
// Scope that collects everything a behavior must undo when its root leaves
// the document.
package behavior

import (
	"context"

	"github.com/conneroisu/canon/internal/dom"
)

// Marker is the data-attribute that identifies a behavior root.
type Marker string

// Markers understood by the built-in widgets.
const (
	MarkerCalendar  Marker = "data-calendar"
	MarkerCarousel  Marker = "data-carousel"
	MarkerDataTable Marker = "data-datatable"
	MarkerDragDrop  Marker = "data-drag-container"
	MarkerTree      Marker = "data-tree"
	MarkerTOC       Marker = "data-toc"
	MarkerCommand   Marker = "data-command"
	MarkerSidebar   Marker = "data-sidebar"
)

// BuiltinMarkers lists the markers of the built-in widgets.
var BuiltinMarkers = []Marker{
	MarkerCalendar, MarkerCarousel, MarkerDataTable, MarkerDragDrop,
	MarkerTree, MarkerTOC, MarkerCommand, MarkerSidebar,
}

// Selector returns the attribute selector that finds roots for m.
func (m Marker) Selector() string { return "[" + string(m) + "]" }

// String implements fmt.Stringer.
func (m Marker) String() string { return string(m) }

// Disposer undoes an attachment. Calling it more than once is safe.
type Disposer func()

// Behavior wires interactivity onto a root element carrying its marker.
type Behavior interface {
	Marker() Marker
	Attach(ctx context.Context, root *dom.Element) (Disposer, error)
}

// AttachFunc is the signature of Behavior.Attach.
type AttachFunc func(ctx context.Context, root *dom.Element) (Disposer, error)

type funcBehavior struct {
	marker Marker
	attach AttachFunc
}

func (f funcBehavior) Marker() Marker { return f.marker }

func (f funcBehavior) Attach(ctx context.Context, root *dom.Element) (Disposer, error) {
	return f.attach(ctx, root)
}

// Func adapts a plain function to the Behavior interface.
func Func(marker Marker, attach AttachFunc) Behavior {
	return funcBehavior{marker: marker, attach: attach}
}
