package datatable

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/dom"
)

var fruits = []string{"banana", "apple", "cherry", "date", "elderberry", "fig", "grape", "honeydew", "kiwi", "lemon", "mango", "nectarine",
	"orange", "papaya", "quince", "raspberry", "strawberry", "tangerine", "ugli", "vanilla", "watermelon", "xigua", "yuzu"}

// table renders n rows. Row i has id r<i>, a name cell holding fruits[i]
// and a qty cell holding i.
func table(t *testing.T, n int, pageSize int) (*dom.Document, *dom.Element) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="dt" data-datatable data-page-size="%d">
	<input data-datatable-filter>
	<button data-density-btn="compact" data-active="false">compact</button>
	<button data-density-btn="comfortable" data-active="true">comfortable</button>
	<div role="menu">
		<div data-dropdown-menu-checkbox-item data-col-index="1" aria-checked="true">qty</div>
	</div>
	<table>
	<thead><tr data-datatable-head-row>
		<th><input type="checkbox" data-datatable-select-all></th>
		<th id="h-name" data-datatable-head-cell data-sort-key="name" data-col-index="0" aria-sort="none">Name <span data-datatable-sort-icon>↕</span></th>
		<th id="h-qty" data-datatable-head-cell data-sort-key="qty" data-col-index="1" aria-sort="none">Qty <span data-datatable-sort-icon>↕</span></th>
	</tr></thead>
	<tbody data-datatable-body>`, pageSize)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<tr id="r%d" data-datatable-row data-row-id="r%d">
			<td><input type="checkbox" data-datatable-select-row></td>
			<td data-datatable-cell data-col-index="0">%s</td>
			<td data-datatable-cell data-col-index="1">%d</td>
			<td><button data-datatable-expand-btn data-row-id="r%d" aria-expanded="false">▶</button></td>
		</tr>
		<tr data-datatable-expand-row data-row-id="r%d" hidden><td>details %d</td></tr>`, i, i, fruits[i%len(fruits)], i, i, i, i)
	}
	b.WriteString(`</tbody></table>
	<div data-datatable-empty hidden>No results</div>
	<div data-datatable-pagination>
		<button data-action="prev">prev</button>
		<span data-pagination-info></span>
		<button data-action="next">next</button>
	</div>
</div>`)
	doc, err := dom.ParseString(b.String())
	require.NoError(t, err)
	root := doc.GetElementByID("dt")
	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, dispose)
	return doc, root
}

func visibleIDs(tb *Table) []string {
	var ids []string
	for _, row := range tb.PageRows() {
		ids = append(ids, row.ID())
	}
	return ids
}

func click(root *dom.Element, selector string) {
	root.QuerySelector(selector).Click()
}

func TestTotalPagesFor(t *testing.T) {
	tests := []struct {
		visible, size, want int
	}{
		{23, 10, 3},
		{20, 10, 2},
		{0, 10, 1},
		{3, 10, 1},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPagesFor(tt.visible, tt.size), "%d/%d", tt.visible, tt.size)
	}
}

func TestPagination(t *testing.T) {
	_, root := table(t, 23, 10)
	tb := Controller(root)

	assert.Equal(t, 3, tb.TotalPages())
	assert.Equal(t, 1, tb.CurrentPage())
	assert.Len(t, tb.PageRows(), 10)
	assert.Equal(t, "1 of 3", root.QuerySelector("[data-pagination-info]").TextContent())
	assert.True(t, root.QuerySelector(`[data-action="prev"]`).HasAttribute("disabled"))

	click(root, `[data-action="prev"]`)
	assert.Equal(t, 1, tb.CurrentPage(), "prev from page 1 stays")

	click(root, `[data-action="next"]`)
	click(root, `[data-action="next"]`)
	assert.Equal(t, 3, tb.CurrentPage())
	assert.Len(t, tb.PageRows(), 3)
	assert.True(t, root.QuerySelector(`[data-action="next"]`).HasAttribute("disabled"))
	assert.False(t, root.QuerySelector(`[data-action="prev"]`).HasAttribute("disabled"))

	click(root, `[data-action="next"]`)
	assert.Equal(t, 3, tb.CurrentPage(), "next from the last page stays")
	assert.Equal(t, []string{"r20", "r21", "r22"}, visibleIDs(tb))
}

func TestFilterResetsPagination(t *testing.T) {
	doc, root := table(t, 12, 10)
	tb := Controller(root)
	click(root, `[data-action="next"]`)
	require.Equal(t, 2, tb.CurrentPage())

	// Only the qty cells 1, 10 and 11 contain "1".
	doc.QuerySelector("[data-datatable-filter]").Input("1")

	assert.Equal(t, 1, tb.CurrentPage())
	assert.Equal(t, 1, tb.TotalPages())
	assert.Equal(t, []string{"r1", "r10", "r11"}, visibleIDs(tb))
	for _, row := range tb.Rows() {
		if row.HasAttribute("data-filtered-hidden") {
			assert.True(t, row.Hidden(), row.ID())
		} else {
			assert.False(t, row.Hidden(), row.ID())
		}
	}
	assert.Len(t, tb.FilteredRows(), 3)
	assert.True(t, root.QuerySelector("[data-datatable-empty]").Hidden())

	doc.QuerySelector("[data-datatable-filter]").Input("zzz")
	assert.Empty(t, tb.PageRows())
	assert.False(t, root.QuerySelector("[data-datatable-empty]").Hidden())
	assert.Equal(t, 1, tb.TotalPages())

	doc.QuerySelector("[data-datatable-filter]").Input("BaNaNa")
	assert.Equal(t, []string{"r0"}, visibleIDs(tb), "matching ignores case")

	doc.QuerySelector("[data-datatable-filter]").Input("")
	assert.Len(t, tb.FilteredRows(), 12)
	assert.Equal(t, 2, tb.TotalPages())
	assert.Len(t, tb.PageRows(), 10)
}

func TestSortCycle(t *testing.T) {
	doc, root := table(t, 5, 10)
	tb := Controller(root)
	name, qty := doc.GetElementByID("h-name"), doc.GetElementByID("h-qty")

	name.Click()
	assert.Equal(t, SortAscending, name.GetAttribute("aria-sort"))
	assert.Equal(t, "▲", name.QuerySelector("[data-datatable-sort-icon]").TextContent())
	assert.Equal(t, []string{"r1", "r0", "r2", "r3", "r4"}, visibleIDs(tb))

	name.Click()
	assert.Equal(t, SortDescending, name.GetAttribute("aria-sort"))
	assert.Equal(t, []string{"r4", "r3", "r2", "r0", "r1"}, visibleIDs(tb))

	name.Click()
	assert.Equal(t, SortNone, name.GetAttribute("aria-sort"))
	assert.Equal(t, []string{"r0", "r1", "r2", "r3", "r4"}, visibleIDs(tb), "none restores rendered order")

	name.Click()
	qty.Click()
	assert.Equal(t, SortNone, name.GetAttribute("aria-sort"), "a second header resets the first")
	assert.Equal(t, "↕", name.QuerySelector("[data-datatable-sort-icon]").TextContent())
	assert.Equal(t, SortAscending, qty.GetAttribute("aria-sort"))

	key, dir := tb.SortState()
	assert.Equal(t, "qty", key)
	assert.Equal(t, SortAscending, dir)
}

func TestSortKeepsDetailRowsAdjacent(t *testing.T) {
	doc, root := table(t, 3, 10)
	doc.GetElementByID("h-name").Click()

	body := root.QuerySelector("[data-datatable-body]")
	var order []string
	for _, c := range body.Children() {
		order = append(order, c.GetAttribute("data-row-id"))
	}
	assert.Equal(t, []string{"r1", "r1", "r0", "r0", "r2", "r2"}, order)
}

func TestSortResetsToFirstPage(t *testing.T) {
	doc, root := table(t, 23, 10)
	tb := Controller(root)
	click(root, `[data-action="next"]`)
	doc.GetElementByID("h-qty").Click()
	assert.Equal(t, 1, tb.CurrentPage())
	assert.Len(t, tb.PageRows(), 10)
}

func TestTypedComparator(t *testing.T) {
	doc, err := dom.ParseString(`<div id="dt" data-datatable>
		<table><thead><tr>
			<th id="h" data-datatable-head-cell data-sort-key="n">n</th>
		</tr></thead>
		<tbody data-datatable-body>
			<tr id="a" data-datatable-row><td data-datatable-cell>10</td></tr>
			<tr id="b" data-datatable-row><td data-datatable-cell>9</td></tr>
			<tr id="c" data-datatable-row><td data-datatable-cell>100</td></tr>
		</tbody></table></div>`)
	require.NoError(t, err)
	root := doc.GetElementByID("dt")
	numeric := func(a, b string) int { return len(a) - len(b) }
	_, err = New(Options{Comparators: map[string]Comparator{"n": numeric}}).Attach(context.Background(), root)
	require.NoError(t, err)

	doc.GetElementByID("h").Click()
	assert.Equal(t, []string{"b", "a", "c"}, visibleIDs(Controller(root)))
}

func TestSelectionTriState(t *testing.T) {
	_, root := table(t, 5, 10)
	tb := Controller(root)
	all := root.QuerySelector("[data-datatable-select-all]")
	boxes := root.QuerySelectorAll("[data-datatable-select-row]")

	assert.Equal(t, Unchecked, tb.SelectionState())

	boxes[0].Click()
	boxes[3].Click()
	assert.Equal(t, Indeterminate, tb.SelectionState())
	assert.False(t, all.Checked())
	assert.True(t, all.Indeterminate())
	assert.Equal(t, []string{"r0", "r3"}, tb.SelectedIDs())

	for _, i := range []int{1, 2, 4} {
		boxes[i].Click()
	}
	assert.True(t, all.Checked())
	assert.False(t, all.Indeterminate())

	for _, box := range boxes {
		box.Click()
	}
	assert.False(t, all.Checked())
	assert.False(t, all.Indeterminate())
	assert.Empty(t, tb.SelectedIDs())
}

func TestSelectAllAppliesToFilteredRows(t *testing.T) {
	doc, root := table(t, 12, 10)
	tb := Controller(root)
	all := root.QuerySelector("[data-datatable-select-all]")

	doc.QuerySelector("[data-datatable-filter]").Input("1")
	all.Click()
	assert.Equal(t, []string{"r1", "r10", "r11"}, tb.SelectedIDs())
	assert.True(t, doc.GetElementByID("r10").QuerySelector("[data-datatable-select-row]").Checked())
	assert.Equal(t, Checked, tb.SelectionState())

	doc.QuerySelector("[data-datatable-filter]").Input("")
	assert.Equal(t, Indeterminate, tb.SelectionState())
	assert.True(t, all.Indeterminate(), "filter changes resync select-all")

	all.Click()
	all.Click()
	assert.Empty(t, tb.SelectedIDs())
}

func TestColumnToggle(t *testing.T) {
	_, root := table(t, 3, 10)
	item := root.QuerySelector("[data-dropdown-menu-checkbox-item]")

	item.Click()
	assert.Equal(t, "false", item.GetAttribute("aria-checked"))
	assert.False(t, item.Hidden())
	cells := root.QuerySelectorAll(`[data-col-index="1"]:not([data-dropdown-menu-checkbox-item])`)
	require.Len(t, cells, 4)
	for _, c := range cells {
		assert.True(t, c.Hidden())
	}

	item.Click()
	for _, c := range cells {
		assert.False(t, c.Hidden())
	}
}

func TestDensity(t *testing.T) {
	_, root := table(t, 1, 10)
	click(root, `[data-density-btn="compact"]`)
	assert.Equal(t, "compact", root.GetAttribute("data-density"))
	assert.Equal(t, "true", root.QuerySelector(`[data-density-btn="compact"]`).GetAttribute("data-active"))
	assert.Equal(t, "false", root.QuerySelector(`[data-density-btn="comfortable"]`).GetAttribute("data-active"))
}

func TestExpandRow(t *testing.T) {
	doc, root := table(t, 2, 10)
	btn := doc.GetElementByID("r1").QuerySelector("[data-datatable-expand-btn]")
	detail := root.QuerySelector(`[data-datatable-expand-row][data-row-id="r1"]`)

	btn.Click()
	assert.Equal(t, "true", btn.GetAttribute("aria-expanded"))
	assert.Equal(t, "▼", btn.TextContent())
	assert.False(t, detail.Hidden())

	btn.Click()
	assert.Equal(t, "▶", btn.TextContent())
	assert.True(t, detail.Hidden())
	assert.True(t, root.QuerySelector(`[data-datatable-expand-row][data-row-id="r0"]`).Hidden())
}

func TestAttachIsIdempotent(t *testing.T) {
	doc, root := table(t, 23, 10)
	tb := Controller(root)

	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, dispose)

	click(root, `[data-action="next"]`)
	assert.Equal(t, 2, tb.CurrentPage(), "one click moves one page")
	doc.GetElementByID("h-name").Click()
	assert.Equal(t, SortAscending, doc.GetElementByID("h-name").GetAttribute("aria-sort"))
}

func TestPartialReattach(t *testing.T) {
	_, root := table(t, 5, 10)
	root.RemoveAttribute("data-density-attached")

	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, dispose)
	assert.Equal(t, 2, root.QuerySelector(`[data-density-btn="compact"]`).ListenerCount("click"))
	assert.Equal(t, 1, root.QuerySelector(`[data-action="next"]`).ListenerCount("click"))
}

func TestDisposeReleasesGuards(t *testing.T) {
	doc, err := dom.ParseString(`<div id="dt" data-datatable><input data-datatable-filter></div>`)
	require.NoError(t, err)
	root := doc.GetElementByID("dt")
	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)

	dispose()
	for _, g := range []string{"data-filter-attached", "data-sorting-attached", "data-expand-attached"} {
		assert.False(t, root.HasAttribute(g), g)
	}
	assert.Zero(t, root.QuerySelector("[data-datatable-filter]").ListenerCount("input"))
}

func TestDetailRowFollowsOwner(t *testing.T) {
	tests := []struct {
		name   string
		act    func(tb *Table)
		hidden bool
	}{
		{"filtered out", func(tb *Table) { tb.Filter("cherry") }, true},
		{"paged away", func(tb *Table) { tb.Next() }, true},
		{"filter cleared", func(tb *Table) { tb.Filter("cherry"); tb.Filter("") }, false},
		{"paged back", func(tb *Table) { tb.Next(); tb.Prev() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, root := table(t, 23, 10)
			tb := Controller(root)
			detail := root.QuerySelector(`[data-datatable-expand-row][data-row-id="r0"]`)
			doc.GetElementByID("r0").QuerySelector("[data-datatable-expand-btn]").Click()
			require.False(t, detail.Hidden())

			tt.act(tb)
			assert.Equal(t, tt.hidden, doc.GetElementByID("r0").Hidden())
			assert.Equal(t, tt.hidden, detail.Hidden())
		})
	}
}

func TestCollapsedDetailStaysHiddenWhenShown(t *testing.T) {
	_, root := table(t, 23, 10)
	tb := Controller(root)
	tb.Next()
	tb.Prev()
	for _, detail := range root.QuerySelectorAll("[data-datatable-expand-row]") {
		assert.True(t, detail.Hidden(), detail.GetAttribute("data-row-id"))
	}
}
