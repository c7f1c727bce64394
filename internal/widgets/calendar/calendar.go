// Package calendar wires grid keyboard navigation, date selection, and month
// navigation onto [data-calendar] roots.
package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/keynav"
	"github.com/conneroisu/canon/internal/logging"
)

const (
	DefaultColumns  = 7
	DefaultPageRows = 4

	cellSelector    = "[data-calendar-cell]"
	enabledSelector = "[data-calendar-cell]:not([data-disabled])"
)

const guard behavior.Guard = "data-calendar-attached"

// Options configures the behavior. OnSelect and OnMonthChange are optional;
// the matching custom events fire either way.
type Options struct {
	Columns       int
	PageRows      int
	OnSelect      func(date string)
	OnMonthChange func(year int, month time.Month)
	Logger        logging.Logger
}

// Behavior is the calendar behavior.
type Behavior struct {
	opts   Options
	logger logging.Logger
}

// New creates the calendar behavior.
func New(opts Options) *Behavior {
	if opts.Columns <= 0 {
		opts.Columns = DefaultColumns
	}
	if opts.PageRows <= 0 {
		opts.PageRows = DefaultPageRows
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{opts: opts, logger: opts.Logger.WithComponent("calendar")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerCalendar }

// Attach implements behavior.Behavior.
func (b *Behavior) Attach(ctx context.Context, root *dom.Element) (behavior.Disposer, error) {
	if !guard.TryAttach(root) {
		return nil, nil
	}
	scope := behavior.NewScope()
	scope.Defer(func() { guard.Release(root) })

	keynav.EnsureOne(root.QuerySelectorAll(enabledSelector))

	if err := scope.Listen(root, "keydown", func(ev *dom.Event) { b.onKeyDown(root, ev) }); err != nil {
		scope.Dispose()
		return nil, err
	}
	if err := scope.Listen(root, "click", func(ev *dom.Event) { b.onClick(ctx, root, ev) }); err != nil {
		scope.Dispose()
		return nil, err
	}
	return scope.Disposer(), nil
}

func (b *Behavior) onKeyDown(root *dom.Element, ev *dom.Event) {
	current := ev.Target
	if current == nil || !current.HasAttribute("data-calendar-cell") {
		return
	}
	ev.StopPropagation()

	cells := root.QuerySelectorAll(enabledSelector)
	keynav.EnsureOne(cells)
	idx := keynav.IndexOf(cells, current)
	if idx < 0 {
		return
	}

	res := keynav.Next(ev.Key, idx, len(cells), keynav.Options{
		Cols:     b.opts.Columns,
		PageRows: b.opts.PageRows,
	})
	if res.PreventDefault {
		ev.PreventDefault()
	}
	switch res.Action {
	case keynav.ActionMove:
		keynav.FocusAt(cells, res.Index)
	case keynav.ActionCommit:
		b.selectCell(root, current)
	}
}

func (b *Behavior) onClick(ctx context.Context, root *dom.Element, ev *dom.Event) {
	if ev.Target == nil {
		return
	}
	if nav := ev.Target.Closest("[data-calendar-nav]"); nav != nil && root.Contains(nav) {
		b.navigate(ctx, root, nav.GetAttribute("data-calendar-nav"))
		return
	}
	cell := ev.Target.Closest(cellSelector)
	if cell == nil || !root.Contains(cell) || cell.HasAttribute("data-disabled") {
		return
	}
	cells := root.QuerySelectorAll(enabledSelector)
	if i := keynav.IndexOf(cells, cell); i >= 0 {
		keynav.Roving(cells, i)
	}
	b.selectCell(root, cell)
}

// selectCell moves data-selected to cell and reports its date.
func (b *Behavior) selectCell(root, cell *dom.Element) {
	date, ok := cell.Attr("data-date")
	if !ok {
		return
	}
	for _, c := range root.QuerySelectorAll(cellSelector) {
		c.RemoveAttribute("data-selected")
	}
	cell.SetAttribute("data-selected", "true")
	if b.opts.OnSelect != nil {
		b.opts.OnSelect(date)
	}
	behavior.Emit(root, behavior.EventCalendarSelect, map[string]any{"date": date})
}

func (b *Behavior) navigate(ctx context.Context, root *dom.Element, dir string) {
	title := root.QuerySelector("[data-calendar-title]")
	if title == nil {
		return
	}
	year, month, ok := ParseTitle(title.TextContent())
	if !ok {
		b.logger.Debug(ctx, "calendar title not parseable", "title", title.TextContent())
		return
	}
	switch dir {
	case "prev":
		year, month = Shift(year, month, -1)
	case "next":
		year, month = Shift(year, month, 1)
	default:
		return
	}
	if b.opts.OnMonthChange != nil {
		b.opts.OnMonthChange(year, month)
	}
	behavior.Emit(root, behavior.EventCalendarMonth, map[string]any{"year": year, "month": int(month)})
}

// ParseTitle reads a "March 2026" style heading.
func ParseTitle(text string) (int, time.Month, bool) {
	t, err := time.Parse("January 2006", strings.Join(strings.Fields(text), " "))
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), t.Month(), true
}

// Shift moves (year, month) by delta months.
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
