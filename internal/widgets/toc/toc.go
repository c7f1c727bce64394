// Package toc implements scroll-spy for table-of-contents roots. Three
// modes are supported through data-toc-mode: simple marks the active entry,
// expand also reveals the entries under the active entry's parent, and
// nested opens every collapsible subtree above the active entry and wires
// manual expand buttons.
package toc

import (
	"context"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/state"
)

// Modes.
const (
	ModeSimple = "simple"
	ModeExpand = "expand"
	ModeNested = "nested"
)

// DefaultRootMargin activates a heading as it crosses a band near the top
// of the viewport.
const DefaultRootMargin = "-20% 0px -70% 0px"

const (
	itemSelector = "[data-toc-item]"
	defaultLevel = 2
)

const (
	spyGuard    behavior.Guard = "data-spy-attached"
	nestedGuard behavior.Guard = "data-nested-attached"
)

// Options configures the behavior.
type Options struct {
	RootMargin string
	Logger     logging.Logger
}

// Behavior is the table-of-contents behavior.
type Behavior struct {
	rootMargin string
	logger     logging.Logger
}

// New creates the TOC behavior.
func New(opts Options) *Behavior {
	if opts.RootMargin == "" {
		opts.RootMargin = DefaultRootMargin
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{rootMargin: opts.RootMargin, logger: opts.Logger.WithComponent("toc")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerTOC }

// Attach implements behavior.Behavior. Scroll-spy and nested expand carry
// separate guards so either can be re-run alone.
func (b *Behavior) Attach(ctx context.Context, root *dom.Element) (behavior.Disposer, error) {
	mode := state.String(root, "data-toc-mode", ModeSimple)
	scope := behavior.NewScope()

	if spyGuard.TryAttach(root) {
		scope.Defer(func() { spyGuard.Release(root) })
		if err := b.attachSpy(ctx, scope, root, mode); err != nil {
			scope.Dispose()
			return nil, err
		}
	}
	if mode == ModeNested && nestedGuard.TryAttach(root) {
		scope.Defer(func() { nestedGuard.Release(root) })
		if err := attachNestedExpand(scope, root); err != nil {
			scope.Dispose()
			return nil, err
		}
	}

	if scope.Len() == 0 {
		return nil, nil
	}
	return scope.Disposer(), nil
}

func (b *Behavior) attachSpy(ctx context.Context, scope *behavior.Scope, root *dom.Element, mode string) error {
	items := root.QuerySelectorAll("[data-toc-item][data-target]")
	if len(items) == 0 {
		return nil
	}
	doc := root.Document()
	observer, err := scope.ObserveIntersections(doc, dom.IntersectionObserverInit{
		RootMargin: b.rootMargin,
		Threshold:  0,
	}, func(entries []dom.IntersectionEntry, _ *dom.IntersectionObserver) {
		for _, entry := range entries {
			if !entry.IsIntersecting {
				continue
			}
			if id := entry.Target.ID(); id != "" {
				Activate(root, id, mode)
			}
		}
	})
	if err != nil {
		return err
	}

	observed := 0
	for _, item := range items {
		heading := doc.GetElementByID(item.GetAttribute("data-target"))
		if heading == nil {
			continue
		}
		observer.Observe(heading)
		observed++
	}
	b.logger.Debug(ctx, "toc scroll-spy armed", "root", root.ID(), "mode", mode, "headings", observed)
	return nil
}

// Activate marks the entry targeting headingID active, resetting every
// other entry to idle, and applies the mode's reveal rule. It returns the
// active entry, or nil when no entry targets headingID.
func Activate(root *dom.Element, headingID, mode string) *dom.Element {
	var active *dom.Element
	for _, item := range root.QuerySelectorAll(itemSelector) {
		item.SetAttribute("data-state", "idle")
		if active == nil && item.GetAttribute("data-target") == headingID {
			active = item
		}
	}
	if active == nil {
		return nil
	}
	active.SetAttribute("data-state", "active")

	switch mode {
	case ModeExpand:
		revealExpand(root, active)
	case ModeNested:
		openAncestors(root, active)
	}
	return active
}

func level(item *dom.Element) int {
	return state.PositiveInt(item, "data-level", defaultLevel)
}

// revealExpand hides every child entry, then shows the entries from the
// active one onward that sit deeper than its parent level, stopping at the
// first entry that climbs back out.
func revealExpand(root, active *dom.Element) {
	for _, child := range root.QuerySelectorAll(`[data-toc-item][data-child="true"]`) {
		child.RemoveAttribute("data-visible")
	}
	activeLevel := level(active)
	if activeLevel <= defaultLevel {
		return
	}
	parentLevel := activeLevel - 1
	found := false
	for _, item := range root.QuerySelectorAll(itemSelector) {
		if item == active {
			found = true
		}
		if !found {
			continue
		}
		l := level(item)
		if l <= parentLevel && item != active {
			break
		}
		if l > parentLevel {
			item.SetAttribute("data-visible", "true")
		}
	}
}

// openAncestors opens every subtree above active, flags the entries that
// own them as ancestors, and marks their expand buttons expanded.
func openAncestors(root, active *dom.Element) {
	for n := active.Parent(); n != nil && n != root; n = n.Parent() {
		if !n.HasAttribute("data-toc-subtree") {
			continue
		}
		n.SetAttribute("data-state", "open")
		owner := n.Parent()
		if owner == nil {
			continue
		}
		if btn := owner.QuerySelector("[data-toc-expand-btn]"); btn != nil {
			btn.SetAttribute("aria-expanded", "true")
		}
		if owner.Matches(itemSelector) && owner != active {
			owner.SetAttribute("data-state", "ancestor")
		}
	}
}

func attachNestedExpand(scope *behavior.Scope, root *dom.Element) error {
	for _, btn := range root.QuerySelectorAll("[data-toc-expand-btn]") {
		btn := btn
		err := scope.Listen(btn, "click", func(*dom.Event) {
			expanded := btn.GetAttribute("aria-expanded") == "true"
			state.SetBool(btn, "aria-expanded", !expanded)
			parent := btn.Parent()
			if parent == nil {
				return
			}
			if subtree := parent.QuerySelector("[data-toc-subtree]"); subtree != nil {
				if expanded {
					subtree.SetAttribute("data-state", "closed")
				} else {
					subtree.SetAttribute("data-state", "open")
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
