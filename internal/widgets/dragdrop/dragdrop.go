// Package dragdrop tracks drag gestures inside [data-drag-container] roots
// and reports completed moves as canon:reorder events.
package dragdrop

import (
	"context"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
)

const (
	handleSelector = "[data-drag-handle]"
	itemSelector   = "[data-drag-item]"

	attrFrom = "data-drag-from-id"
	attrTo   = "data-drag-to-id"

	// DraggingClass marks the item being dragged.
	DraggingClass = "is-dragging"
)

const guard behavior.Guard = "data-drag-behavior-attached"

// Options configures the behavior.
type Options struct {
	Logger logging.Logger
}

// Behavior is the drag-and-drop behavior.
type Behavior struct {
	logger logging.Logger
}

// New creates the drag-and-drop behavior.
func New(opts Options) *Behavior {
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{logger: opts.Logger.WithComponent("dragdrop")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerDragDrop }

// Attach implements behavior.Behavior.
func (b *Behavior) Attach(ctx context.Context, container *dom.Element) (behavior.Disposer, error) {
	if !guard.TryAttach(container) {
		return nil, nil
	}
	scope := behavior.NewScope()
	scope.Defer(func() {
		Cleanup(container)
		guard.Release(container)
	})

	ensureHandlesDraggable(container)
	err := scope.ObserveMutations(container, true, func([]dom.MutationRecord, *dom.MutationObserver) {
		ensureHandlesDraggable(container)
	})
	if err != nil {
		scope.Dispose()
		return nil, err
	}

	container.SetAttribute(attrFrom, "")
	container.SetAttribute(attrTo, "")

	listeners := []struct {
		event   string
		fn      dom.Listener
		capture bool
	}{
		{"dragstart", func(ev *dom.Event) { onDragStart(container, ev) }, true},
		{"dragover", func(ev *dom.Event) { onDragOver(container, ev) }, false},
		{"drop", func(ev *dom.Event) { b.onDrop(ctx, container, ev) }, false},
		{"dragend", func(*dom.Event) { Cleanup(container) }, true},
	}
	for _, l := range listeners {
		if err := scope.Listen(container, l.event, l.fn, dom.ListenerOptions{Capture: l.capture}); err != nil {
			scope.Dispose()
			return nil, err
		}
	}
	return scope.Disposer(), nil
}

func onDragStart(container *dom.Element, ev *dom.Event) {
	if ev.Target == nil {
		return
	}
	handle := ev.Target.Closest(handleSelector)
	if handle == nil || !container.Contains(handle) {
		ev.PreventDefault()
		return
	}
	item := handle.Closest(itemSelector)
	if item == nil {
		return
	}
	id, ok := item.Attr("data-drag-id")
	if !ok {
		return
	}
	container.SetAttribute(attrFrom, id)
	container.SetAttribute(attrTo, id)
	item.AddClass(DraggingClass)
}

func onDragOver(container *dom.Element, ev *dom.Event) {
	ev.PreventDefault()
	if ev.Target == nil {
		return
	}
	item := ev.Target.Closest(itemSelector)
	if item == nil {
		return
	}
	if id, ok := item.Attr("data-drag-id"); ok {
		container.SetAttribute(attrTo, id)
	}
}

func (b *Behavior) onDrop(ctx context.Context, container *dom.Element, ev *dom.Event) {
	ev.PreventDefault()
	from := container.GetAttribute(attrFrom)
	to := container.GetAttribute(attrTo)

	Cleanup(container)

	if from == "" || to == "" || from == to {
		return
	}
	b.logger.Debug(ctx, "reorder", "from", from, "to", to)
	behavior.Emit(container, behavior.EventReorder, map[string]any{
		"dragFrom": from,
		"dragTo":   to,
	})
}

// Cleanup clears the drag context and the dragging class on every item.
func Cleanup(container *dom.Element) {
	container.SetAttribute(attrFrom, "")
	container.SetAttribute(attrTo, "")
	for _, item := range container.QuerySelectorAll(itemSelector) {
		item.RemoveClass(DraggingClass)
	}
}

func ensureHandlesDraggable(container *dom.Element) {
	for _, handle := range container.QuerySelectorAll(handleSelector) {
		if handle.GetAttribute("draggable") != "true" {
			handle.SetAttribute("draggable", "true")
		}
	}
}

// Move places the item with id from at the position of the item with id
// to, shifting the items between them. It reports whether both were found.
func Move(container *dom.Element, from, to string) bool {
	var src, dst *dom.Element
	var srcIdx, dstIdx int
	for i, item := range container.QuerySelectorAll(itemSelector) {
		switch item.GetAttribute("data-drag-id") {
		case from:
			src, srcIdx = item, i
		case to:
			dst, dstIdx = item, i
		}
	}
	if src == nil || dst == nil || src == dst {
		return false
	}
	parent := dst.Parent()
	if srcIdx < dstIdx {
		next := nextSibling(dst)
		if next == nil {
			parent.AppendChild(src)
		} else {
			parent.InsertBefore(src, next)
		}
		return true
	}
	parent.InsertBefore(src, dst)
	return true
}

func nextSibling(el *dom.Element) *dom.Element {
	siblings := el.Parent().Children()
	for i, s := range siblings {
		if s == el && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}
