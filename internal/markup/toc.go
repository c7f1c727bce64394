package markup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// TOC renders a [data-toc] navigation for headings. Mode is simple, expand
// or nested; nested groups each heading under the nearest shallower one.
func TOC(headings []Heading, mode string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<nav data-toc data-toc-mode="%s" aria-label="Table of contents">`, templ.EscapeString(mode))
		if mode == "nested" {
			writeNested(&b, headings, topLevel(headings))
		} else {
			top := topLevel(headings)
			b.WriteString(`<ul>`)
			for _, h := range headings {
				child := ""
				if h.Level > top {
					child = ` data-child="true"`
				}
				fmt.Fprintf(&b, `<li><a href="#%s" data-toc-item data-target="%s" data-level="%d" data-state="idle"%s>%s</a></li>`,
					templ.EscapeString(h.ID), templ.EscapeString(h.ID), h.Level, child, templ.EscapeString(h.Text))
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</nav>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func topLevel(headings []Heading) int {
	top := 0
	for _, h := range headings {
		if top == 0 || h.Level < top {
			top = h.Level
		}
	}
	return top
}

// writeNested writes headings at or below level as a nested list.
func writeNested(b *strings.Builder, headings []Heading, level int) {
	b.WriteString(`<ul>`)
	i := 0
	for i < len(headings) && headings[i].Level >= level {
		h := headings[i]
		i++
		end := i
		for end < len(headings) && headings[end].Level > h.Level {
			end++
		}
		fmt.Fprintf(b, `<li data-toc-item data-target="%s" data-level="%d" data-state="idle">`,
			templ.EscapeString(h.ID), h.Level)
		if end > i {
			b.WriteString(`<button type="button" data-toc-expand-btn aria-expanded="false">+</button>`)
		}
		fmt.Fprintf(b, `<a href="#%s">%s</a>`, templ.EscapeString(h.ID), templ.EscapeString(h.Text))
		if end > i {
			b.WriteString(`<div data-toc-subtree data-state="closed">`)
			writeNested(b, headings[i:end], h.Level+1)
			b.WriteString(`</div>`)
		}
		b.WriteString(`</li>`)
		i = end
	}
	b.WriteString(`</ul>`)
}

// Article renders markdown followed by its TOC in the given mode.
func Article(doc *Document, mode string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := TOC(doc.Headings, mode).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<article>`+doc.HTML+`</article>`)
		return err
	})
}
