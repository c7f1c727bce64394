// Package markup renders server-side widget markup and markdown articles
// that the behaviors attach to.
package markup

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

func component(write func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		write(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

var esc = templ.EscapeString[string]

// Page wraps body components in a minimal HTML document.
func Page(title string, body ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title></head><body>`, esc(title)); err != nil {
			return err
		}
		for _, c := range body {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Calendar renders a month grid with one cell per day. Days listed in
// disabled are marked data-disabled.
func Calendar(id string, year int, month time.Month, disabled ...int) templ.Component {
	off := map[int]bool{}
	for _, d := range disabled {
		off[d] = true
	}
	return component(func(b *strings.Builder) {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		days := first.AddDate(0, 1, -1).Day()
		fmt.Fprintf(b, `<div id="%s" data-calendar>`, esc(id))
		b.WriteString(`<div><button type="button" data-calendar-nav="prev" aria-label="Previous month">‹</button>`)
		fmt.Fprintf(b, `<span data-calendar-title>%s</span>`, first.Format("January 2006"))
		b.WriteString(`<button type="button" data-calendar-nav="next" aria-label="Next month">›</button></div>`)
		b.WriteString(`<div role="grid">`)
		for d := 1; d <= days; d++ {
			attrs := ""
			if off[d] {
				attrs = ` data-disabled aria-disabled="true"`
			}
			fmt.Fprintf(b, `<button type="button" role="gridcell" data-calendar-cell data-date="%s"%s>%d</button>`,
				first.AddDate(0, 0, d-1).Format(time.DateOnly), attrs, d)
		}
		b.WriteString(`</div></div>`)
	})
}

// CarouselOptions configures the Carousel fixture.
type CarouselOptions struct {
	Autoplay bool
	Loop     bool
	Interval time.Duration
}

// Carousel renders slides with prev/next controls and an indicator host.
func Carousel(id string, slides []string, opts CarouselOptions) templ.Component {
	return component(func(b *strings.Builder) {
		fmt.Fprintf(b, `<div id="%s" data-carousel aria-roledescription="carousel">`, esc(id))
		b.WriteString(`<div data-carousel-wrapper`)
		if opts.Autoplay {
			b.WriteString(` data-autoplay`)
		}
		if opts.Loop {
			b.WriteString(` data-loop`)
		}
		if opts.Interval > 0 {
			fmt.Fprintf(b, ` data-interval="%d"`, opts.Interval.Milliseconds())
		}
		b.WriteString(`>`)
		for i, s := range slides {
			fmt.Fprintf(b, `<div data-carousel-item aria-label="%d of %d">%s</div>`, i+1, len(slides), esc(s))
		}
		b.WriteString(`</div>`)
		b.WriteString(`<button type="button" data-carousel-prev>Previous</button>`)
		b.WriteString(`<button type="button" data-carousel-next>Next</button>`)
		b.WriteString(`<div data-carousel-indicators></div></div>`)
	})
}

// Column describes a data table column.
type Column struct {
	ID       string
	Label    string
	Sortable bool
}

// DataTable renders a filterable, sortable, paginated table. Each row
// carries an id in data-row-id and an expandable detail row.
func DataTable(id string, columns []Column, rows [][]string, pageSize int) templ.Component {
	return component(func(b *strings.Builder) {
		fmt.Fprintf(b, `<div id="%s" data-datatable data-page-size="%d">`, esc(id), pageSize)
		b.WriteString(`<input type="search" data-datatable-filter placeholder="Filter" aria-label="Filter rows">`)
		b.WriteString(`<button type="button" data-density-btn="compact" data-active="false">Compact</button>`)
		b.WriteString(`<button type="button" data-density-btn="comfortable" data-active="true">Comfortable</button>`)
		b.WriteString(`<div role="menu">`)
		for i, c := range columns {
			fmt.Fprintf(b, `<div role="menuitemcheckbox" data-dropdown-menu-checkbox-item data-col-index="%d" aria-checked="true">%s</div>`, i, esc(c.Label))
		}
		b.WriteString(`</div><table><thead><tr data-datatable-head-row>`)
		b.WriteString(`<th><input type="checkbox" data-datatable-select-all aria-label="Select all"></th>`)
		for i, c := range columns {
			if c.Sortable {
				fmt.Fprintf(b, `<th data-datatable-head-cell data-column-id="%s" data-sort-key="%s" data-col-index="%d" aria-sort="none">%s <span data-datatable-sort-icon>↕</span></th>`,
					esc(c.ID), esc(c.ID), i, esc(c.Label))
				continue
			}
			fmt.Fprintf(b, `<th data-column-id="%s" data-col-index="%d">%s</th>`, esc(c.ID), i, esc(c.Label))
		}
		b.WriteString(`<th></th></tr></thead><tbody data-datatable-body>`)
		for r, row := range rows {
			rowID := fmt.Sprintf("%s-r%d", id, r)
			fmt.Fprintf(b, `<tr data-datatable-row data-row-id="%s"><td><input type="checkbox" data-datatable-select-row aria-label="Select row"></td>`, rowID)
			for i, cell := range row {
				colID := ""
				if i < len(columns) {
					colID = columns[i].ID
				}
				fmt.Fprintf(b, `<td data-datatable-cell data-column-id="%s" data-col-index="%d">%s</td>`, esc(colID), i, esc(cell))
			}
			fmt.Fprintf(b, `<td><button type="button" data-datatable-expand-btn data-row-id="%s" aria-expanded="false">▶</button></td></tr>`, rowID)
			fmt.Fprintf(b, `<tr data-datatable-expand-row data-row-id="%s" hidden><td colspan="%d">%s</td></tr>`,
				rowID, len(columns)+2, esc(strings.Join(row, " · ")))
		}
		b.WriteString(`</tbody></table>`)
		b.WriteString(`<div data-datatable-empty hidden>No results</div>`)
		b.WriteString(`<div data-datatable-pagination><button type="button" data-action="prev">Previous</button>`)
		b.WriteString(`<span data-pagination-info></span><button type="button" data-action="next">Next</button></div>`)
		b.WriteString(`</div>`)
	})
}

// DragList renders a reorderable list.
func DragList(id string, items []string) templ.Component {
	return component(func(b *strings.Builder) {
		fmt.Fprintf(b, `<ul id="%s" data-drag-container>`, esc(id))
		for _, item := range items {
			fmt.Fprintf(b, `<li data-drag-item data-drag-id="%s"><span data-drag-handle aria-hidden="true">⠿</span> %s</li>`,
				esc(item), esc(item))
		}
		b.WriteString(`</ul>`)
	})
}

// TreeNode is one entry of the Tree fixture.
type TreeNode struct {
	ID       string
	Label    string
	Children []TreeNode
}

// Tree renders nested items, all collapsed.
func Tree(id string, nodes []TreeNode) templ.Component {
	return component(func(b *strings.Builder) {
		fmt.Fprintf(b, `<div id="%s" data-tree role="tree">`, esc(id))
		writeTree(b, nodes, 0)
		b.WriteString(`</div>`)
	})
}

func writeTree(b *strings.Builder, nodes []TreeNode, depth int) {
	for _, n := range nodes {
		parent := len(n.Children) > 0
		fmt.Fprintf(b, `<div role="treeitem" data-tree-item data-item-id="%s" data-depth="%d" data-has-children="%t"`,
			esc(n.ID), depth, parent)
		if parent {
			b.WriteString(` data-expanded="false" aria-expanded="false"`)
		}
		b.WriteString(`>`)
		if parent {
			b.WriteString(`<button type="button" data-tree-toggle tabindex="-1">▸</button>`)
		}
		fmt.Fprintf(b, `<span>%s</span>`, esc(n.Label))
		if parent {
			b.WriteString(`<div role="group" data-tree-group>`)
			writeTree(b, n.Children, depth+1)
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)
	}
}

// CommandItem is one entry of the command picker.
type CommandItem struct {
	Value    string
	Label    string
	Disabled bool
}

// CommandPicker renders a filterable command list.
func CommandPicker(id string, items []CommandItem) templ.Component {
	return component(func(b *strings.Builder) {
		fmt.Fprintf(b, `<div id="%s" data-command>`, esc(id))
		b.WriteString(`<input type="text" data-command-input role="combobox" placeholder="Type a command" aria-label="Command">`)
		b.WriteString(`<div role="listbox">`)
		for _, item := range items {
			disabled := ""
			if item.Disabled {
				disabled = ` data-disabled aria-disabled="true"`
			}
			fmt.Fprintf(b, `<div role="option" id="%s-%s" data-command-item data-value="%s"%s>%s</div>`,
				esc(id), esc(item.Value), esc(item.Value), disabled, esc(item.Label))
		}
		b.WriteString(`</div><div data-command-empty hidden>No commands found</div></div>`)
	})
}

// Sidebar renders a collapsible sidebar with an external toggle.
func Sidebar(id string, links []string) templ.Component {
	return component(func(b *strings.Builder) {
		fmt.Fprintf(b, `<button type="button" data-sidebar-toggle aria-controls="%s">Menu</button>`, esc(id))
		fmt.Fprintf(b, `<aside id="%s" data-sidebar><nav>`, esc(id))
		for _, l := range links {
			fmt.Fprintf(b, `<a href="#%s">%s</a>`, esc(l), esc(l))
		}
		b.WriteString(`</nav><button type="button" data-sidebar-pin aria-pressed="false">Pin</button></aside>`)
	})
}

// Demo renders one instance of every widget.
func Demo() templ.Component {
	return Page("canon demo",
		Sidebar("sidebar", []string{"calendar", "carousel", "table", "tree", "commands"}),
		Calendar("calendar", 2026, time.January, 10, 11),
		Carousel("carousel", []string{"First", "Second", "Third"}, CarouselOptions{Autoplay: true, Loop: true, Interval: 3 * time.Second}),
		DataTable("table",
			[]Column{{ID: "name", Label: "Name", Sortable: true}, {ID: "qty", Label: "Qty", Sortable: true}},
			[][]string{{"apple", "3"}, {"banana", "12"}, {"cherry", "7"}, {"date", "1"}, {"elderberry", "20"}},
			2),
		DragList("tasks", []string{"design", "build", "ship"}),
		Tree("files", []TreeNode{
			{ID: "src", Label: "src", Children: []TreeNode{
				{ID: "main", Label: "main.go"},
				{ID: "internal", Label: "internal", Children: []TreeNode{{ID: "dom", Label: "dom"}}},
			}},
			{ID: "readme", Label: "README.md"},
		}),
		CommandPicker("commands", []CommandItem{
			{Value: "file.open", Label: "Open File"},
			{Value: "file.save", Label: "Save File"},
			{Value: "window.close", Label: "Close Window", Disabled: true},
		}),
	)
}

// Render renders c to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
