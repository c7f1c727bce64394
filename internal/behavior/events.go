package behavior

import "github.com/conneroisu/canon/internal/dom"

// Custom events dispatched by the widgets. All bubble and none are
// cancelable.
const (
	EventCarouselChange = "canon:carousel-change"
	EventTreeSelect     = "canon:tree-select"
	EventTreeExpand     = "canon:tree-expand"
	EventReorder        = "canon:reorder"
	EventCalendarSelect = "canon:calendar-select"
	EventCalendarMonth  = "canon:calendar-month"
	EventCommandSelect  = "canon:command-select"
	EventSidebarChange  = "canon:sidebar-change"
)

// Events lists every custom event name.
var Events = []string{
	EventCarouselChange,
	EventTreeSelect,
	EventTreeExpand,
	EventReorder,
	EventCalendarSelect,
	EventCalendarMonth,
	EventCommandSelect,
	EventSidebarChange,
}

// Emit dispatches a bubbling custom event from el.
func Emit(el *dom.Element, name string, detail map[string]any) {
	if el == nil {
		return
	}
	el.DispatchEvent(dom.NewCustomEvent(name, detail))
}
