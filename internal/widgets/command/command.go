// Package command attaches filtering and keyboard selection to
// [data-command] pickers.
package command

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/keynav"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/state"
)

const (
	inputSelector = "[data-command-input]"
	itemSelector  = "[data-command-item]"
	attrHighlight = "data-highlighted"
)

const guard behavior.Guard = "data-command-attached"

// Options configures the behavior.
type Options struct {
	OnSelect func(value string)
	Logger   logging.Logger
}

// Behavior is the command picker behavior.
type Behavior struct {
	opts   Options
	logger logging.Logger
}

// New creates the command picker behavior.
func New(opts Options) *Behavior {
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{opts: opts, logger: opts.Logger.WithComponent("command")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerCommand }

// Attach implements behavior.Behavior.
func (b *Behavior) Attach(ctx context.Context, root *dom.Element) (behavior.Disposer, error) {
	if !guard.TryAttach(root) {
		return nil, nil
	}
	scope := behavior.NewScope()
	scope.Defer(func() { guard.Release(root) })

	p := &Picker{root: root, onSelect: b.opts.OnSelect}
	if input := root.QuerySelector(inputSelector); input != nil {
		if err := scope.Listen(input, "input", func(*dom.Event) { p.Filter(input.Value()) }); err != nil {
			scope.Dispose()
			return nil, err
		}
	}
	if err := scope.Listen(root, "keydown", p.onKeyDown); err != nil {
		scope.Dispose()
		return nil, err
	}
	err := scope.Listen(root, "click", func(ev *dom.Event) {
		if ev.Target == nil {
			return
		}
		item := ev.Target.Closest(itemSelector)
		if item == nil || !root.Contains(item) || item.HasAttribute("data-disabled") || item.Hidden() {
			return
		}
		p.Select(item)
	})
	if err != nil {
		scope.Dispose()
		return nil, err
	}

	p.highlight(0)
	b.logger.Debug(ctx, "command picker attached", "root", root.ID(), "items", len(p.Items()))
	return scope.Disposer(), nil
}

// Picker reads and writes picker state on a [data-command] root.
type Picker struct {
	root     *dom.Element
	onSelect func(string)
}

// Controller returns a picker for root.
func Controller(root *dom.Element) *Picker { return &Picker{root: root} }

// Items returns every item.
func (p *Picker) Items() []*dom.Element { return p.root.QuerySelectorAll(itemSelector) }

// VisibleItems returns the enabled items matching the current query.
func (p *Picker) VisibleItems() []*dom.Element {
	var out []*dom.Element
	for _, item := range p.Items() {
		if !item.Hidden() && !item.HasAttribute("data-disabled") {
			out = append(out, item)
		}
	}
	return out
}

// Highlighted returns the index of the highlighted visible item, or -1.
func (p *Picker) Highlighted() int {
	for i, item := range p.VisibleItems() {
		if item.GetAttribute(attrHighlight) == "true" {
			return i
		}
	}
	return -1
}

// Filter hides items whose text does not contain query, ignoring case,
// and highlights the first remaining item.
func (p *Picker) Filter(query string) {
	q := cases.Fold().String(strings.TrimSpace(query))
	shown := 0
	for _, item := range p.Items() {
		match := q == "" || strings.Contains(cases.Fold().String(item.TextContent()), q)
		item.SetHidden(!match)
		if match {
			shown++
		}
	}
	if empty := p.root.QuerySelector("[data-command-empty]"); empty != nil {
		empty.SetHidden(shown > 0)
	}
	p.highlight(0)
}

// Reset clears the query and highlights the first item.
func (p *Picker) Reset() {
	if input := p.root.QuerySelector(inputSelector); input != nil {
		input.SetValue("")
	}
	p.Filter("")
}

// highlight marks the visible item at index and moves the roving stop to
// it. Focus stays in the input; aria-activedescendant tracks the item.
func (p *Picker) highlight(index int) {
	for _, item := range p.Items() {
		item.RemoveAttribute(attrHighlight)
		state.SetBool(item, "aria-selected", false)
	}
	visible := p.VisibleItems()
	keynav.Roving(p.Items(), -1)
	input := p.root.QuerySelector(inputSelector)
	if index < 0 || index >= len(visible) {
		if input != nil {
			input.RemoveAttribute("aria-activedescendant")
		}
		return
	}
	item := visible[index]
	item.SetAttribute(attrHighlight, "true")
	state.SetBool(item, "aria-selected", true)
	item.SetAttribute("tabindex", "0")
	if input != nil && item.ID() != "" {
		input.SetAttribute("aria-activedescendant", item.ID())
	}
}

// Value returns data-value, or the trimmed item text.
func Value(item *dom.Element) string {
	if v, ok := item.Attr("data-value"); ok {
		return v
	}
	return strings.TrimSpace(item.TextContent())
}

// Select reports item through the callback and canon:command-select.
func (p *Picker) Select(item *dom.Element) {
	value := Value(item)
	if i := keynav.IndexOf(p.VisibleItems(), item); i >= 0 {
		p.highlight(i)
	}
	if p.onSelect != nil {
		p.onSelect(value)
	}
	behavior.Emit(item, behavior.EventCommandSelect, map[string]any{"value": value})
}

func (p *Picker) onKeyDown(ev *dom.Event) {
	// Space types into the query.
	if ev.Key == keynav.KeySpace && ev.Target != nil && ev.Target.Matches(inputSelector) {
		return
	}
	visible := p.VisibleItems()
	if ev.Key == keynav.KeyEscape && len(visible) == 0 {
		ev.PreventDefault()
		p.Reset()
		return
	}
	res := keynav.Next(ev.Key, p.Highlighted(), len(visible), keynav.Options{Vertical: true, Escape: true})
	if res.PreventDefault {
		ev.PreventDefault()
	}
	switch res.Action {
	case keynav.ActionMove:
		p.highlight(res.Index)
	case keynav.ActionCommit:
		p.Select(visible[res.Index])
	case keynav.ActionCancel:
		p.Reset()
	}
}
