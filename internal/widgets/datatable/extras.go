package datatable

import (
	"fmt"
	"strconv"

	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/state"
)

// ToggleColumnItem flips a column menu item's aria-checked and shows or
// hides its column.
func (t *Table) ToggleColumnItem(item *dom.Element) {
	col, err := strconv.Atoi(item.GetAttribute("data-col-index"))
	if err != nil {
		return
	}
	visible := item.GetAttribute("aria-checked") != "true"
	state.SetBool(item, "aria-checked", visible)
	t.SetColumnVisible(col, visible)
}

// SetColumnVisible shows or hides every element of column col except the
// menu items that control it.
func (t *Table) SetColumnVisible(col int, visible bool) {
	sel := fmt.Sprintf(`[data-col-index="%d"]:not([data-dropdown-menu-checkbox-item])`, col)
	for _, el := range t.root.QuerySelectorAll(sel) {
		el.SetHidden(!visible)
	}
}

// SetDensity writes data-density on the root and marks the matching
// density button active.
func (t *Table) SetDensity(density string) {
	t.root.SetAttribute("data-density", density)
	for _, btn := range t.root.QuerySelectorAll("[data-density-btn]") {
		state.SetBool(btn, "data-active", btn.GetAttribute("data-density-btn") == density)
	}
}

// ToggleExpand flips an expand button and the detail row it controls.
func (t *Table) ToggleExpand(btn *dom.Element) {
	expanded := btn.GetAttribute("aria-expanded") != "true"
	state.SetBool(btn, "aria-expanded", expanded)
	if expanded {
		btn.SetTextContent("▼")
	} else {
		btn.SetTextContent("▶")
	}
	if row := btn.Closest(rowSelector); row != nil {
		t.syncDetail(row)
		return
	}
	id := btn.GetAttribute("data-row-id")
	sel := fmt.Sprintf(`[data-datatable-expand-row][data-row-id=%q]`, id)
	if detail := t.root.QuerySelector(sel); detail != nil {
		detail.SetHidden(!expanded)
	}
}
