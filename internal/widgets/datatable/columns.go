package datatable

import (
	"slices"
	"strconv"

	"github.com/conneroisu/canon/internal/dom"
	canonerrors "github.com/conneroisu/canon/internal/errors"
	"github.com/conneroisu/canon/internal/state"
)

// Pin is a column's pin position.
type Pin string

const (
	PinNone  Pin = "none"
	PinLeft  Pin = "left"
	PinRight Pin = "right"
)

// ColumnModel is the programmatic column state of a table: order,
// visibility, width and pin, keyed by column id. Apply projects it onto
// the DOM.
type ColumnModel struct {
	order  []string
	hidden map[string]bool
	widths map[string]int
	pins   map[string]Pin
}

// NewColumnModel creates a model with ids in order, all visible.
func NewColumnModel(ids ...string) *ColumnModel {
	return &ColumnModel{
		order:  slices.Clone(ids),
		hidden: make(map[string]bool),
		widths: make(map[string]int),
		pins:   make(map[string]Pin),
	}
}

// ColumnModelFromDOM reads data-column-id from the header cells of root,
// along with any hidden, data-width and data-pin state they carry.
func ColumnModelFromDOM(root *dom.Element) *ColumnModel {
	m := NewColumnModel()
	for _, h := range root.QuerySelectorAll("[data-datatable-head-cell][data-column-id]") {
		id := h.GetAttribute("data-column-id")
		m.order = append(m.order, id)
		if h.Hidden() {
			m.hidden[id] = true
		}
		if w := state.PositiveInt(h, "data-width", 0); w > 0 {
			m.widths[id] = w
		}
		if p := Pin(h.GetAttribute("data-pin")); p == PinLeft || p == PinRight {
			m.pins[id] = p
		}
	}
	return m
}

func unknownColumn(id string) error {
	return canonerrors.NewValidationError(canonerrors.ErrCodeUnknownColumn, "unknown column "+strconv.Quote(id)).
		WithContext("column", id)
}

// Order returns the column ids in display order.
func (m *ColumnModel) Order() []string { return slices.Clone(m.order) }

// Index returns the position of id, or -1.
func (m *ColumnModel) Index(id string) int { return slices.Index(m.order, id) }

// Has reports whether id is a column.
func (m *ColumnModel) Has(id string) bool { return m.Index(id) >= 0 }

// Visible reports whether id is shown.
func (m *ColumnModel) Visible(id string) bool { return m.Has(id) && !m.hidden[id] }

// VisibleColumns returns the shown column ids in order.
func (m *ColumnModel) VisibleColumns() []string {
	var out []string
	for _, id := range m.order {
		if !m.hidden[id] {
			out = append(out, id)
		}
	}
	return out
}

// SetVisible shows or hides id.
func (m *ColumnModel) SetVisible(id string, visible bool) error {
	if !m.Has(id) {
		return unknownColumn(id)
	}
	if visible {
		delete(m.hidden, id)
	} else {
		m.hidden[id] = true
	}
	return nil
}

// ToggleVisible flips the visibility of id and returns the new state.
func (m *ColumnModel) ToggleVisible(id string) (bool, error) {
	visible := !m.Visible(id)
	return visible, m.SetVisible(id, visible)
}

// SetWidth records a width in pixels for id.
func (m *ColumnModel) SetWidth(id string, px int) error {
	if !m.Has(id) {
		return unknownColumn(id)
	}
	if px <= 0 {
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadAttribute, "column width must be positive").
			WithContext("column", id).
			WithContext("width", px)
	}
	m.widths[id] = px
	return nil
}

// Width returns the recorded width of id.
func (m *ColumnModel) Width(id string) (int, bool) {
	w, ok := m.widths[id]
	return w, ok
}

// Widths returns a copy of the width map.
func (m *ColumnModel) Widths() map[string]int {
	out := make(map[string]int, len(m.widths))
	for k, v := range m.widths {
		out[k] = v
	}
	return out
}

// SetPin records the pin position of id.
func (m *ColumnModel) SetPin(id string, pin Pin) error {
	if !m.Has(id) {
		return unknownColumn(id)
	}
	switch pin {
	case PinLeft, PinRight:
		m.pins[id] = pin
	case PinNone, "":
		delete(m.pins, id)
	default:
		return canonerrors.NewValidationError(canonerrors.ErrCodeBadAttribute, "invalid pin "+strconv.Quote(string(pin)))
	}
	return nil
}

// PinOf returns the pin position of id.
func (m *ColumnModel) PinOf(id string) Pin {
	if p, ok := m.pins[id]; ok {
		return p
	}
	return PinNone
}

// Reorder removes id from its position and inserts it at to, shifting the
// columns in between. to is clamped to the column range.
func (m *ColumnModel) Reorder(id string, to int) error {
	from := m.Index(id)
	if from < 0 {
		return unknownColumn(id)
	}
	m.order = slices.Delete(m.order, from, from+1)
	to = state.Clamp(to, 0, len(m.order))
	m.order = slices.Insert(m.order, to, id)
	return nil
}

// Apply projects the model onto root: cells carrying data-column-id are
// shown or hidden, get data-width and data-pin, and are reordered within
// each header and body row to match the model order.
func (m *ColumnModel) Apply(root *dom.Element) {
	rows := root.QuerySelectorAll("[data-datatable-head-row], [data-datatable-row]")
	for _, row := range rows {
		children := row.Children()
		var cells []*dom.Element
		for _, c := range children {
			if c.HasAttribute("data-column-id") {
				cells = append(cells, c)
			}
		}
		slices.SortStableFunc(cells, func(a, b *dom.Element) int {
			return m.rank(a.GetAttribute("data-column-id")) - m.rank(b.GetAttribute("data-column-id"))
		})
		// Column cells fill the slots column cells held before; other
		// cells such as the select and expand cells keep their place.
		next := 0
		for _, c := range children {
			if c.HasAttribute("data-column-id") {
				c = cells[next]
				next++
			}
			row.AppendChild(c)
		}
	}

	for _, el := range root.QuerySelectorAll("[data-column-id]") {
		id := el.GetAttribute("data-column-id")
		if !m.Has(id) {
			continue
		}
		el.SetHidden(m.hidden[id])
		if w, ok := m.widths[id]; ok {
			state.SetInt(el, "data-width", w)
		} else {
			el.RemoveAttribute("data-width")
		}
		if p := m.PinOf(id); p != PinNone {
			el.SetAttribute("data-pin", string(p))
		} else {
			el.RemoveAttribute("data-pin")
		}
	}
}

func (m *ColumnModel) rank(id string) int {
	if i := m.Index(id); i >= 0 {
		return i
	}
	return len(m.order)
}
