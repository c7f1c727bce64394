// Package datatable attaches filtering, sorting, pagination, column
// toggles, row selection, density, and expandable rows to [data-datatable]
// roots. Each sub-behavior carries its own guard so a re-rendered fragment
// can re-run only the parts it needs.
package datatable

import (
	"context"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
)

// DefaultPageSize applies when data-page-size is absent or invalid.
const DefaultPageSize = 10

// Comparator orders two cell texts, returning a negative number, zero, or a
// positive number.
type Comparator func(a, b string) int

// Options configures the behavior.
type Options struct {
	PageSize int
	// Comparators override text ordering for headers by data-sort-key.
	Comparators map[string]Comparator
	Logger      logging.Logger
}

// Behavior is the data table behavior.
type Behavior struct {
	opts   Options
	logger logging.Logger
}

// New creates the data table behavior.
func New(opts Options) *Behavior {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{opts: opts, logger: opts.Logger.WithComponent("datatable")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerDataTable }

type subBehavior struct {
	guard behavior.Guard
	setup func(*behavior.Scope, *Table) error
}

func (b *Behavior) subBehaviors() []subBehavior {
	return []subBehavior{
		{"data-filter-attached", setupFilter},
		{"data-sorting-attached", setupSorting},
		{"data-pagination-attached", setupPagination},
		{"data-column-toggle-attached", setupColumnToggle},
		{"data-selection-attached", setupSelection},
		{"data-density-attached", setupDensity},
		{"data-expand-attached", setupExpand},
	}
}

// Attach implements behavior.Behavior. It returns nil when every
// sub-behavior was already attached.
func (b *Behavior) Attach(ctx context.Context, root *dom.Element) (behavior.Disposer, error) {
	t := b.Controller(root)
	scope := behavior.NewScope()
	attached := 0
	for _, sb := range b.subBehaviors() {
		if !sb.guard.TryAttach(root) {
			continue
		}
		attached++
		g := sb.guard
		scope.Defer(func() { g.Release(root) })
		if err := sb.setup(scope, t); err != nil {
			scope.Dispose()
			return nil, err
		}
	}
	if attached == 0 {
		return nil, nil
	}

	t.stampOriginalOrder()
	t.Refresh()
	b.logger.Debug(ctx, "datatable attached",
		"root", root.ID(),
		"rows", len(t.Rows()),
		"page_size", t.PageSize(),
		"sub_behaviors", attached,
	)
	return scope.Disposer(), nil
}

// Controller returns a controller for root using the behavior's defaults.
func (b *Behavior) Controller(root *dom.Element) *Table {
	return &Table{root: root, pageSize: b.opts.PageSize, comparators: b.opts.Comparators}
}

func setupFilter(scope *behavior.Scope, t *Table) error {
	input := t.root.QuerySelector("[data-datatable-filter]")
	if input == nil {
		return nil
	}
	return scope.Listen(input, "input", func(*dom.Event) {
		t.Filter(input.Value())
	})
}

func setupSorting(scope *behavior.Scope, t *Table) error {
	for _, header := range t.headers() {
		header := header
		if err := scope.Listen(header, "click", func(*dom.Event) { t.Sort(header) }); err != nil {
			return err
		}
	}
	return nil
}

func setupPagination(scope *behavior.Scope, t *Table) error {
	pag := t.root.QuerySelector("[data-datatable-pagination]")
	if pag == nil {
		return nil
	}
	for _, btn := range pag.QuerySelectorAll("button") {
		action := btn.GetAttribute("data-action")
		err := scope.Listen(btn, "click", func(*dom.Event) {
			switch action {
			case "prev":
				t.Prev()
			case "next":
				t.Next()
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func setupColumnToggle(scope *behavior.Scope, t *Table) error {
	for _, item := range t.root.QuerySelectorAll("[data-dropdown-menu-checkbox-item][data-col-index]") {
		item := item
		if err := scope.Listen(item, "click", func(*dom.Event) { t.ToggleColumnItem(item) }); err != nil {
			return err
		}
	}
	return nil
}

func setupSelection(scope *behavior.Scope, t *Table) error {
	if all := t.root.QuerySelector(selectAllSelector); all != nil {
		err := scope.Listen(all, "change", func(*dom.Event) { t.SelectAll(all.Checked()) })
		if err != nil {
			return err
		}
	}
	for _, box := range t.root.QuerySelectorAll(selectRowSelector) {
		box := box
		err := scope.Listen(box, "change", func(*dom.Event) {
			if row := box.Closest(rowSelector); row != nil {
				t.SelectRow(row, box.Checked())
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func setupDensity(scope *behavior.Scope, t *Table) error {
	for _, btn := range t.root.QuerySelectorAll("[data-density-btn]") {
		density := btn.GetAttribute("data-density-btn")
		if err := scope.Listen(btn, "click", func(*dom.Event) { t.SetDensity(density) }); err != nil {
			return err
		}
	}
	return nil
}

func setupExpand(scope *behavior.Scope, t *Table) error {
	for _, btn := range t.root.QuerySelectorAll("[data-datatable-expand-btn]") {
		btn := btn
		if err := scope.Listen(btn, "click", func(*dom.Event) { t.ToggleExpand(btn) }); err != nil {
			return err
		}
	}
	return nil
}
