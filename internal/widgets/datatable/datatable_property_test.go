//go:build property

package datatable

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/canon/internal/dom"
)

func rowsMarkup(n, pageSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="dt" data-datatable data-page-size="%d"><table><tbody data-datatable-body>`, pageSize)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<tr data-datatable-row><td data-datatable-cell>%d</td></tr>`, i)
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String()
}

// TestPaginationClamps drives random prev/next sequences and checks the page
// stays in [1, total] and shows the expected number of rows.
func TestPaginationClamps(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("page stays in range", prop.ForAll(
		func(n, size int, moves []bool) bool {
			doc, err := dom.ParseString(rowsMarkup(n, size))
			if err != nil {
				return false
			}
			tb := Controller(doc.GetElementByID("dt"))
			tb.Refresh()
			total := TotalPagesFor(n, size)
			if tb.TotalPages() != total {
				return false
			}
			for _, next := range moves {
				if next {
					tb.Next()
				} else {
					tb.Prev()
				}
				page := tb.CurrentPage()
				if page < 1 || page > total {
					return false
				}
				want := size
				if page == total {
					want = n - (total-1)*size
				}
				if n == 0 {
					want = 0
				}
				if len(tb.PageRows()) != want {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.IntRange(1, 12),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

// TestSelectionIndeterminate checks the select-all state against the
// selected count.
func TestSelectionIndeterminate(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("indeterminate iff partially selected", prop.ForAll(
		func(picks []bool) bool {
			n := len(picks)
			doc, err := dom.ParseString(rowsMarkup(n, 10))
			if err != nil {
				return false
			}
			tb := Controller(doc.GetElementByID("dt"))
			selected := 0
			for i, row := range tb.Rows() {
				tb.SelectRow(row, picks[i])
				if picks[i] {
					selected++
				}
			}
			got := tb.SelectionState()
			switch {
			case selected == 0:
				return got == Unchecked
			case selected == n:
				return got == Checked
			default:
				return got == Indeterminate
			}
		},
		gen.SliceOfN(8, gen.Bool()),
	))

	properties.TestingRun(t)
}
