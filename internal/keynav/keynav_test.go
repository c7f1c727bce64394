package keynav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/dom"
)

func TestNextGrid(t *testing.T) {
	grid := Options{Cols: 7, PageRows: 4}
	tests := []struct {
		name   string
		key    string
		index  int
		length int
		want   Result
	}{
		{"left moves back", KeyArrowLeft, 3, 35, Result{ActionMove, 2, true}},
		{"left at start stays", KeyArrowLeft, 0, 35, Result{ActionNone, 0, false}},
		{"right moves on", KeyArrowRight, 3, 35, Result{ActionMove, 4, true}},
		{"right clamps at end", KeyArrowRight, 34, 35, Result{ActionMove, 34, true}},
		{"up by a row", KeyArrowUp, 10, 35, Result{ActionMove, 3, true}},
		{"up in first row stays", KeyArrowUp, 6, 35, Result{ActionNone, 6, false}},
		{"down by a row", KeyArrowDown, 3, 35, Result{ActionMove, 10, true}},
		{"down clamps", KeyArrowDown, 30, 35, Result{ActionMove, 34, true}},
		{"home", KeyHome, 20, 35, Result{ActionMove, 0, true}},
		{"end", KeyEnd, 2, 35, Result{ActionMove, 34, true}},
		{"page up by four rows", KeyPageUp, 30, 35, Result{ActionMove, 2, true}},
		{"page up clamps", KeyPageUp, 20, 35, Result{ActionMove, 0, true}},
		{"page down clamps", KeyPageDown, 10, 35, Result{ActionMove, 34, true}},
		{"page down by four rows", KeyPageDown, 1, 35, Result{ActionMove, 29, true}},
		{"enter commits", KeyEnter, 5, 35, Result{ActionCommit, 5, true}},
		{"space commits", KeySpace, 5, 35, Result{ActionCommit, 5, true}},
		{"escape ignored", KeyEscape, 5, 35, Result{ActionNone, 5, false}},
		{"other key ignored", "a", 5, 35, Result{ActionNone, 5, false}},
		{"empty set", KeyArrowDown, 0, 0, Result{ActionNone, -1, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.key, tt.index, tt.length, grid))
		})
	}
}

func TestNextList(t *testing.T) {
	list := Options{Vertical: true, Escape: true}
	assert.Equal(t, Result{ActionMove, 1, true}, Next(KeyArrowDown, 0, 3, list))
	assert.Equal(t, Result{ActionMove, 2, true}, Next(KeyArrowDown, 2, 3, list))
	assert.Equal(t, Result{ActionMove, 0, true}, Next(KeyArrowUp, 1, 3, list))
	assert.Equal(t, Result{ActionNone, 0, false}, Next(KeyArrowUp, 0, 3, list))
	assert.Equal(t, Result{ActionNone, 1, false}, Next(KeyArrowRight, 1, 3, list))
	assert.Equal(t, Result{ActionNone, 1, false}, Next(KeyPageDown, 1, 3, list))
	assert.Equal(t, Result{ActionCancel, 0, true}, Next(KeyEscape, 2, 3, list))
}

func TestNextIdle(t *testing.T) {
	list := Options{}
	assert.Equal(t, Result{ActionMove, 0, true}, Next(KeyArrowDown, -1, 4, list))
	assert.Equal(t, Result{ActionMove, 3, true}, Next(KeyEnd, -1, 4, list))
	assert.Equal(t, Result{ActionNone, -1, false}, Next(KeyEnter, -1, 4, list))
	assert.Equal(t, Result{ActionNone, -1, false}, Next(KeyPageUp, -1, 4, list))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "move", ActionMove.String())
	assert.Equal(t, "none", Action(42).String())
}

func TestRoving(t *testing.T) {
	doc, err := dom.ParseString(`<ul><li>a</li><li>b</li><li>c</li></ul>`)
	require.NoError(t, err)
	items := doc.QuerySelectorAll("li")

	assert.Equal(t, -1, Current(items))
	EnsureOne(items)
	assert.Equal(t, 0, Current(items))

	FocusAt(items, 2)
	assert.Equal(t, 2, Current(items))
	assert.Equal(t, 1, Zeroes(items))
	assert.Same(t, items[2], doc.ActiveElement())
	assert.Equal(t, "-1", items[0].GetAttribute("tabindex"))

	FocusAt(items, 9)
	assert.Equal(t, 2, Current(items))
	assert.Equal(t, 1, IndexOf(items, items[1]))
	assert.Equal(t, -1, IndexOf(items, nil))
}
