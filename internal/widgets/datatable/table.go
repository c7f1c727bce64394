package datatable

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/state"
)

const (
	rowSelector       = "[data-datatable-row]"
	cellSelector      = "[data-datatable-cell]"
	headerSelector    = "[data-datatable-head-cell][data-sort-key]"
	selectAllSelector = "[data-datatable-select-all]"
	selectRowSelector = "[data-datatable-select-row]"

	attrFilteredHidden = "data-filtered-hidden"
	attrOriginalIndex  = "data-original-index"
)

// Sort directions as written to aria-sort.
const (
	SortNone       = "none"
	SortAscending  = "ascending"
	SortDescending = "descending"
)

var sortIcons = map[string]string{
	SortNone:       "↕",
	SortAscending:  "▲",
	SortDescending: "▼",
}

// SelectState is the derived state of the select-all control.
type SelectState int

const (
	Unchecked SelectState = iota
	Checked
	Indeterminate
)

// Table reads and writes data table state on a [data-datatable] root. All
// state lives in attributes; a Table holds only defaults.
type Table struct {
	root        *dom.Element
	pageSize    int
	comparators map[string]Comparator
}

// Controller returns a controller for root with the default page size.
func Controller(root *dom.Element) *Table {
	return &Table{root: root, pageSize: DefaultPageSize}
}

// Rows returns every data row in document order.
func (t *Table) Rows() []*dom.Element { return t.root.QuerySelectorAll(rowSelector) }

// FilteredRows returns the rows not excluded by the filter.
func (t *Table) FilteredRows() []*dom.Element {
	var out []*dom.Element
	for _, row := range t.Rows() {
		if !row.HasAttribute(attrFilteredHidden) {
			out = append(out, row)
		}
	}
	return out
}

// PageRows returns the rows shown on the current page.
func (t *Table) PageRows() []*dom.Element {
	var out []*dom.Element
	for _, row := range t.FilteredRows() {
		if !row.Hidden() {
			out = append(out, row)
		}
	}
	return out
}

// PageSize returns data-page-size or the default.
func (t *Table) PageSize() int { return state.PositiveInt(t.root, "data-page-size", t.pageSize) }

// CurrentPage returns data-current-page, defaulting to 1.
func (t *Table) CurrentPage() int { return state.PositiveInt(t.root, "data-current-page", 1) }

// TotalPages returns data-total-pages, defaulting to 1.
func (t *Table) TotalPages() int { return state.PositiveInt(t.root, "data-total-pages", 1) }

// TotalPagesFor returns ceil(visible/pageSize), never below 1.
func TotalPagesFor(visible, pageSize int) int {
	if pageSize <= 0 || visible <= 0 {
		return 1
	}
	return (visible + pageSize - 1) / pageSize
}

// Refresh recomputes the page count from the filtered rows, clamps the
// current page, and reapplies pagination.
func (t *Table) Refresh() {
	total := TotalPagesFor(len(t.FilteredRows()), t.PageSize())
	state.SetInt(t.root, "data-total-pages", total)
	t.GoToPage(t.CurrentPage())
}

// GoToPage clamps page to [1, total] and shows that page.
func (t *Table) GoToPage(page int) {
	page = state.Clamp(page, 1, t.TotalPages())
	state.SetInt(t.root, "data-current-page", page)
	t.applyPagination(page)
	t.updatePaginationUI()
}

// Prev moves back one page, staying on page 1.
func (t *Table) Prev() { t.GoToPage(t.CurrentPage() - 1) }

// Next moves forward one page, staying on the last page.
func (t *Table) Next() { t.GoToPage(t.CurrentPage() + 1) }

func (t *Table) applyPagination(page int) {
	size := t.PageSize()
	start := (page - 1) * size
	end := start + size
	for i, row := range t.FilteredRows() {
		row.SetHidden(i < start || i >= end)
	}
	for _, row := range t.Rows() {
		t.syncDetail(row)
	}
}

// detailRow returns the expand row belonging to row, if any.
func (t *Table) detailRow(row *dom.Element) *dom.Element {
	id := row.GetAttribute("data-row-id")
	if id == "" {
		return nil
	}
	return t.root.QuerySelector(fmt.Sprintf(`[data-datatable-expand-row][data-row-id=%q]`, id))
}

// syncDetail shows a row's detail only while the row itself is shown and
// its expand button is open.
func (t *Table) syncDetail(row *dom.Element) {
	detail := t.detailRow(row)
	if detail == nil {
		return
	}
	open := false
	if btn := row.QuerySelector("[data-datatable-expand-btn]"); btn != nil {
		open = btn.GetAttribute("aria-expanded") == "true"
	}
	detail.SetHidden(row.Hidden() || !open)
}

func (t *Table) updatePaginationUI() {
	current, total := t.CurrentPage(), t.TotalPages()
	if info := t.root.QuerySelector("[data-pagination-info]"); info != nil {
		info.SetTextContent(fmt.Sprintf("%d of %d", current, total))
	}
	pag := t.root.QuerySelector("[data-datatable-pagination]")
	if pag == nil {
		return
	}
	for _, btn := range pag.QuerySelectorAll("button") {
		switch btn.GetAttribute("data-action") {
		case "prev":
			btn.ToggleAttribute("disabled", current <= 1)
		case "next":
			btn.ToggleAttribute("disabled", current >= total)
		}
	}
}

func fold(s string) string { return cases.Fold().String(s) }

// Filter hides rows whose text does not contain query, ignoring case. The
// filter marker and the hidden attribute are kept separately so pagination
// can rewrite hidden without losing the filter. The page resets to 1.
func (t *Table) Filter(query string) {
	q := fold(strings.TrimSpace(query))
	visible := 0
	for _, row := range t.Rows() {
		if q == "" || strings.Contains(fold(row.TextContent()), q) {
			row.RemoveAttribute(attrFilteredHidden)
			visible++
			continue
		}
		row.SetAttribute(attrFilteredHidden, "1")
		row.SetHidden(true)
		t.syncDetail(row)
	}
	if empty := t.root.QuerySelector("[data-datatable-empty]"); empty != nil {
		empty.SetHidden(visible > 0)
	}
	state.SetInt(t.root, "data-total-pages", TotalPagesFor(visible, t.PageSize()))
	t.GoToPage(1)
	t.syncSelectAll()
}

func (t *Table) headers() []*dom.Element { return t.root.QuerySelectorAll(headerSelector) }

// NextSort returns the direction after dir in the none, ascending,
// descending cycle.
func NextSort(dir string) string {
	switch dir {
	case SortAscending:
		return SortDescending
	case SortDescending:
		return SortNone
	default:
		return SortAscending
	}
}

// Sort advances header's sort direction, resets every other header, and
// reorders the body rows. Returning to none restores the rendered order.
// The page resets to 1.
func (t *Table) Sort(header *dom.Element) string {
	dir := NextSort(state.String(header, "aria-sort", SortNone))
	t.SetSort(header, dir)
	return dir
}

// SetSort applies dir to header.
func (t *Table) SetSort(header *dom.Element, dir string) {
	for _, h := range t.headers() {
		h.SetAttribute("aria-sort", SortNone)
		if icon := h.QuerySelector("[data-datatable-sort-icon]"); icon != nil {
			icon.SetTextContent(sortIcons[SortNone])
		}
	}
	header.SetAttribute("aria-sort", dir)
	if icon := header.QuerySelector("[data-datatable-sort-icon]"); icon != nil {
		icon.SetTextContent(sortIcons[dir])
	}

	for _, row := range t.FilteredRows() {
		row.SetHidden(false)
	}
	t.sortRows(t.sortColumnOf(header), header.GetAttribute("data-sort-key"), dir)
	t.GoToPage(1)
}

// SortState returns the active sort key and direction, or "" and none.
func (t *Table) SortState() (string, string) {
	for _, h := range t.headers() {
		if dir := h.GetAttribute("aria-sort"); dir == SortAscending || dir == SortDescending {
			return h.GetAttribute("data-sort-key"), dir
		}
	}
	return "", SortNone
}

// sortColumn locates the cells a header sorts by. Column ids survive
// reordering; the positional index is the fallback for tables without them.
type sortColumn struct {
	id    string
	index int
}

func (t *Table) sortColumnOf(header *dom.Element) sortColumn {
	return sortColumn{id: header.GetAttribute("data-column-id"), index: t.columnIndex(header)}
}

func (t *Table) columnIndex(header *dom.Element) int {
	if v, ok := header.Attr("data-col-index"); ok {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	cells := t.root.QuerySelectorAll("[data-datatable-head-cell]")
	for i, c := range cells {
		if c == header {
			return i
		}
	}
	return 0
}

func cellText(row *dom.Element, col sortColumn) string {
	if col.id != "" {
		if cell := row.QuerySelector(fmt.Sprintf(`%s[data-column-id=%q]`, cellSelector, col.id)); cell != nil {
			return fold(strings.TrimSpace(cell.TextContent()))
		}
	}
	cells := row.QuerySelectorAll(cellSelector)
	if col.index < 0 || col.index >= len(cells) {
		return ""
	}
	return fold(strings.TrimSpace(cells[col.index].TextContent()))
}

func (t *Table) sortRows(col sortColumn, key, dir string) {
	body := t.root.QuerySelector("[data-datatable-body]")
	if body == nil {
		return
	}
	rows := body.QuerySelectorAll(rowSelector)
	cmp := t.comparators[key]
	if cmp == nil {
		cmp = strings.Compare
	}
	switch dir {
	case SortAscending, SortDescending:
		slices.SortStableFunc(rows, func(a, b *dom.Element) int {
			c := cmp(cellText(a, col), cellText(b, col))
			if dir == SortDescending {
				return -c
			}
			return c
		})
	default:
		slices.SortStableFunc(rows, func(a, b *dom.Element) int {
			return state.Int(a, attrOriginalIndex, 0) - state.Int(b, attrOriginalIndex, 0)
		})
	}
	for _, row := range rows {
		moveWithDetail(body, row)
	}
}

// moveWithDetail appends row to body, carrying a following expand row for
// the same id along with it.
func moveWithDetail(body, row *dom.Element) {
	var detail *dom.Element
	if id := row.GetAttribute("data-row-id"); id != "" {
		detail = body.QuerySelector(fmt.Sprintf(`[data-datatable-expand-row][data-row-id=%q]`, id))
	}
	body.AppendChild(row)
	if detail != nil {
		body.AppendChild(detail)
	}
}

func (t *Table) stampOriginalOrder() {
	for i, row := range t.Rows() {
		if !row.HasAttribute(attrOriginalIndex) {
			state.SetInt(row, attrOriginalIndex, i)
		}
	}
}

// SelectAll applies checked to every row not excluded by the filter.
func (t *Table) SelectAll(checked bool) {
	for _, row := range t.FilteredRows() {
		setRowSelected(row, checked)
	}
	t.syncSelectAll()
}

// SelectRow sets one row's selection and recomputes the select-all state.
func (t *Table) SelectRow(row *dom.Element, checked bool) {
	setRowSelected(row, checked)
	t.syncSelectAll()
}

func setRowSelected(row *dom.Element, selected bool) {
	if selected {
		row.SetAttribute("data-state", "selected")
	} else {
		row.RemoveAttribute("data-state")
	}
	if box := row.QuerySelector(selectRowSelector); box != nil {
		box.SetChecked(selected)
	}
}

// SelectionState derives the select-all state from the filtered rows:
// indeterminate iff some but not all are selected.
func (t *Table) SelectionState() SelectState {
	rows := t.FilteredRows()
	selected := 0
	for _, row := range rows {
		if row.GetAttribute("data-state") == "selected" {
			selected++
		}
	}
	switch {
	case selected == 0:
		return Unchecked
	case selected == len(rows):
		return Checked
	default:
		return Indeterminate
	}
}

// SelectedIDs returns data-row-id of the selected rows.
func (t *Table) SelectedIDs() []string {
	var ids []string
	for _, row := range t.Rows() {
		if row.GetAttribute("data-state") == "selected" {
			ids = append(ids, row.GetAttribute("data-row-id"))
		}
	}
	return ids
}

func (t *Table) syncSelectAll() {
	all := t.root.QuerySelector(selectAllSelector)
	if all == nil {
		return
	}
	switch t.SelectionState() {
	case Unchecked:
		all.SetChecked(false)
		all.SetIndeterminate(false)
		all.SetAttribute("aria-checked", "false")
	case Checked:
		all.SetChecked(true)
		all.SetIndeterminate(false)
		all.SetAttribute("aria-checked", "true")
	case Indeterminate:
		all.SetChecked(false)
		all.SetIndeterminate(true)
		all.SetAttribute("aria-checked", "mixed")
	}
}
