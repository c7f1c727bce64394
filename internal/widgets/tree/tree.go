// Package tree attaches expand/collapse toggles, selection, and roving
// keyboard navigation to [data-tree] roots.
//
// Markup follows the tree primitive: [data-tree-item] carries data-depth,
// data-expanded, data-selected and data-has-children; children live in a
// [data-tree-group] nested inside the owning item or placed directly after it.
package tree

import (
	"context"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/keynav"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/state"
)

const (
	itemSelector  = "[data-tree-item]"
	groupSelector = "[data-tree-group]"
)

const guard behavior.Guard = "data-tree-attached"

// Options configures the behavior.
type Options struct {
	Logger logging.Logger
}

// Behavior is the tree behavior.
type Behavior struct {
	logger logging.Logger
}

// New creates the tree behavior.
func New(opts Options) *Behavior {
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{logger: opts.Logger.WithComponent("tree")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerTree }

// Attach implements behavior.Behavior.
func (b *Behavior) Attach(ctx context.Context, root *dom.Element) (behavior.Disposer, error) {
	if !guard.TryAttach(root) {
		return nil, nil
	}
	scope := behavior.NewScope()
	scope.Defer(func() { guard.Release(root) })

	t := Controller(root)
	t.normalizeTabindex()

	for _, toggle := range root.QuerySelectorAll("[data-tree-toggle]") {
		toggle := toggle
		err := scope.Listen(toggle, "click", func(ev *dom.Event) {
			ev.StopPropagation()
			if item := toggle.Closest(itemSelector); item != nil && root.Contains(item) {
				t.Toggle(item)
			}
		})
		if err != nil {
			scope.Dispose()
			return nil, err
		}
	}

	err := scope.Listen(root, "click", func(ev *dom.Event) {
		item := t.itemFor(ev.Target)
		if item == nil {
			return
		}
		additive := t.multiselect() && (ev.CtrlKey || ev.MetaKey)
		t.Select(item, additive)
	})
	if err != nil {
		scope.Dispose()
		return nil, err
	}

	if err := scope.Listen(root, "keydown", func(ev *dom.Event) { t.onKeyDown(ev) }); err != nil {
		scope.Dispose()
		return nil, err
	}

	b.logger.Debug(ctx, "tree attached", "root", root.ID(), "items", len(t.Items()))
	return scope.Disposer(), nil
}

// Tree reads and writes tree state on a [data-tree] root.
type Tree struct {
	root *dom.Element
}

// Controller returns a controller for root.
func Controller(root *dom.Element) *Tree { return &Tree{root: root} }

// Items returns every item in document order.
func (t *Tree) Items() []*dom.Element { return t.root.QuerySelectorAll(itemSelector) }

// VisibleItems returns the items not nested under a collapsed ancestor.
func (t *Tree) VisibleItems() []*dom.Element {
	var out []*dom.Element
	for _, item := range t.Items() {
		if t.IsVisible(item) {
			out = append(out, item)
		}
	}
	return out
}

// IsVisible walks up from item through each enclosing group and reports
// false as soon as a group's owning item is collapsed.
func (t *Tree) IsVisible(item *dom.Element) bool {
	for n := item.Parent(); n != nil && n != t.root; n = n.Parent() {
		if !n.Matches(groupSelector) {
			continue
		}
		owner := t.owner(n)
		if owner != nil && !Expanded(owner) {
			return false
		}
	}
	return true
}

// owner returns the item a group belongs to: the item immediately
// preceding the group, or else the enclosing item.
func (t *Tree) owner(group *dom.Element) *dom.Element {
	var prev *dom.Element
	for _, sib := range group.Parent().Children() {
		if sib == group {
			break
		}
		prev = sib
	}
	if prev != nil && prev.Matches(itemSelector) {
		return prev
	}
	if item := group.Parent().Closest(itemSelector); item != nil && t.root.Contains(item) {
		return item
	}
	return nil
}

// ParentItem returns the item that owns the group containing item.
func (t *Tree) ParentItem(item *dom.Element) *dom.Element {
	for n := item.Parent(); n != nil && n != t.root; n = n.Parent() {
		if n.Matches(groupSelector) {
			return t.owner(n)
		}
	}
	return nil
}

// Expanded reports data-expanded="true".
func Expanded(item *dom.Element) bool { return state.Bool(item, "data-expanded", false) }

// HasChildren reports data-has-children="true" or a child group.
func HasChildren(item *dom.Element) bool {
	if v, ok := item.Attr("data-has-children"); ok {
		return v == "true"
	}
	return item.QuerySelector(groupSelector) != nil
}

// ItemID returns data-item-id, falling back to the element id.
func ItemID(item *dom.Element) string {
	if v := item.GetAttribute("data-item-id"); v != "" {
		return v
	}
	return item.ID()
}

// SetExpanded writes data-expanded and aria-expanded and dispatches
// canon:tree-expand. A roving stop hidden by a collapse moves to item.
func (t *Tree) SetExpanded(item *dom.Element, expanded bool) {
	state.SetBool(item, "data-expanded", expanded)
	state.SetBool(item, "aria-expanded", expanded)
	if !expanded {
		if cur := keynav.Current(t.Items()); cur >= 0 && !t.IsVisible(t.Items()[cur]) {
			keynav.Roving(t.Items(), keynav.IndexOf(t.Items(), item))
		}
	}
	behavior.Emit(item, behavior.EventTreeExpand, map[string]any{
		"itemId":   ItemID(item),
		"expanded": expanded,
	})
}

// Toggle flips the expanded state of item.
func (t *Tree) Toggle(item *dom.Element) { t.SetExpanded(item, !Expanded(item)) }

// Select marks item selected and moves the roving stop to it. Without
// additive every other item is deselected first; with it the item toggles.
func (t *Tree) Select(item *dom.Element, additive bool) {
	selected := true
	if additive {
		selected = !state.Bool(item, "data-selected", false)
	} else {
		for _, other := range t.Items() {
			state.SetBool(other, "data-selected", false)
			state.SetBool(other, "aria-selected", false)
		}
	}
	state.SetBool(item, "data-selected", selected)
	state.SetBool(item, "aria-selected", selected)
	keynav.Roving(t.Items(), keynav.IndexOf(t.Items(), item))

	behavior.Emit(item, behavior.EventTreeSelect, map[string]any{
		"itemId":   ItemID(item),
		"selected": selected,
	})
}

// Selected returns the ids of the selected items.
func (t *Tree) Selected() []string {
	var ids []string
	for _, item := range t.Items() {
		if state.Bool(item, "data-selected", false) {
			ids = append(ids, ItemID(item))
		}
	}
	return ids
}

func (t *Tree) multiselect() bool {
	return t.root.GetAttribute("aria-multiselectable") == "true" || t.root.HasAttribute("data-multiselect")
}

func (t *Tree) itemFor(target *dom.Element) *dom.Element {
	if target == nil {
		return nil
	}
	item := target.Closest(itemSelector)
	if item == nil || !t.root.Contains(item) {
		return nil
	}
	return item
}

// normalizeTabindex leaves one roving stop: the first selected visible
// item, else the first visible item holding tabindex 0, else the first.
func (t *Tree) normalizeTabindex() {
	visible := t.VisibleItems()
	if len(visible) == 0 {
		return
	}
	stop := visible[0]
	for _, item := range visible {
		if state.Bool(item, "data-selected", false) {
			stop = item
			break
		}
	}
	if !state.Bool(stop, "data-selected", false) {
		if i := keynav.Current(visible); i >= 0 {
			stop = visible[i]
		}
	}
	keynav.Roving(t.Items(), keynav.IndexOf(t.Items(), stop))
}

func (t *Tree) onKeyDown(ev *dom.Event) {
	item := t.itemFor(ev.Target)
	if item == nil {
		return
	}
	visible := t.VisibleItems()
	idx := keynav.IndexOf(visible, item)
	if idx < 0 {
		return
	}

	switch ev.Key {
	case keynav.KeyArrowRight:
		if !HasChildren(item) {
			return
		}
		ev.PreventDefault()
		if !Expanded(item) {
			t.SetExpanded(item, true)
			return
		}
		if idx+1 < len(visible) && t.ParentItem(visible[idx+1]) == item {
			t.focus(visible[idx+1])
		}
		return
	case keynav.KeyArrowLeft:
		ev.PreventDefault()
		if HasChildren(item) && Expanded(item) {
			t.SetExpanded(item, false)
			return
		}
		if parent := t.ParentItem(item); parent != nil {
			t.focus(parent)
		}
		return
	}

	res := keynav.Next(ev.Key, idx, len(visible), keynav.Options{Vertical: true})
	if res.PreventDefault {
		ev.PreventDefault()
	}
	switch res.Action {
	case keynav.ActionMove:
		t.focus(visible[res.Index])
	case keynav.ActionCommit:
		t.Select(item, t.multiselect() && (ev.CtrlKey || ev.MetaKey))
	}
}

// focus moves the single roving stop to item across all items, hidden
// ones included, and focuses it.
func (t *Tree) focus(item *dom.Element) {
	items := t.Items()
	keynav.FocusAt(items, keynav.IndexOf(items, item))
}
