//go:build property

package keynav

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/canon/internal/dom"
)

var keys = []string{
	KeyArrowLeft, KeyArrowRight, KeyArrowUp, KeyArrowDown,
	KeyHome, KeyEnd, KeyPageUp, KeyPageDown, KeyEnter, KeySpace, KeyEscape,
}

// TestNextStaysInBounds checks that no key sequence escapes the item range.
func TestNextStaysInBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("moves land inside [0, length)", prop.ForAll(
		func(length, cols, start int, presses []int) bool {
			opts := Options{Cols: cols, PageRows: 4, Escape: true}
			index := start % length
			for _, p := range presses {
				res := Next(keys[p%len(keys)], index, length, opts)
				if res.Action == ActionMove || res.Action == ActionCancel {
					index = res.Index
				}
				if index < 0 || index >= length {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 60),
		gen.IntRange(1, 8),
		gen.IntRange(0, 1000),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}

// TestRovingKeepsOneFocusable checks that exactly one item holds tabindex 0
// after any sequence of arrow moves.
func TestRovingKeepsOneFocusable(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("exactly one tabindex=0", prop.ForAll(
		func(count int, presses []int) bool {
			doc, err := dom.ParseString(`<div id="g"></div>`)
			if err != nil {
				return false
			}
			g := doc.GetElementByID("g")
			for i := 0; i < count; i++ {
				g.AppendChild(doc.CreateElement("button"))
			}
			items := g.Children()
			EnsureOne(items)
			for _, p := range presses {
				res := Next(keys[p%4], Current(items), len(items), Options{Cols: 7})
				if res.Action == ActionMove {
					FocusAt(items, res.Index)
				}
				if Zeroes(items) != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
