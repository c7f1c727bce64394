package markup

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// LineHeight is the pixel height assumed per source line when estimating
// heading offsets for the scroll model.
const LineHeight = 24

// Heading is one entry of a document outline.
type Heading struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Level  int    `json:"level" yaml:"level"`
	Offset int    `json:"offset" yaml:"offset"`
}

// Document is rendered markdown with its outline.
type Document struct {
	HTML     string
	Headings []Heading
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// RenderMarkdown converts source to HTML. Every heading gets an id and a
// data-offset-top estimated from its line number.
func RenderMarkdown(source []byte) (*Document, error) {
	md := newMarkdown()
	root := md.Parser().Parse(text.NewReader(source))

	var headings []Heading
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		offset := lineOf(source, h) * LineHeight
		h.SetAttributeString("data-offset-top", []byte(strconv.Itoa(offset)))
		headings = append(headings, Heading{
			ID:     id,
			Text:   headingText(h, source),
			Level:  h.Level,
			Offset: offset,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, canonerrors.NewParseError(canonerrors.ErrCodeMarkdown, "walking markdown", err)
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, root); err != nil {
		return nil, canonerrors.NewParseError(canonerrors.ErrCodeMarkdown, "rendering markdown", err)
	}
	return &Document{HTML: buf.String(), Headings: headings}, nil
}

// ExtractHeadings returns the outline of source.
func ExtractHeadings(source []byte) ([]Heading, error) {
	doc, err := RenderMarkdown(source)
	if err != nil {
		return nil, err
	}
	return doc.Headings, nil
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(headingText(c, source))
		}
	}
	return buf.String()
}

func lineOf(source []byte, h *ast.Heading) int {
	lines := h.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(source[:lines.At(0).Start], []byte("\n"))
}
