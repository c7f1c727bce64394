// Package dom is a headless, single-threaded DOM host. It parses
// server-rendered markup, exposes element handles with attribute and
// property state, dispatches events through capture and bubble phases, and
// runs observer and timer callbacks on a cooperative task loop.
package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// DefaultViewportHeight is the viewport height, in pixels, used by the
// scroll model when none is configured.
const DefaultViewportHeight = 1000

// Document owns a parsed node tree together with the loop, focus, and
// observers that act on it. A Document must only be touched from the
// goroutine that drives its Loop.
type Document struct {
	root  *html.Node
	elems map[*html.Node]*Element
	loop  *Loop

	target eventTarget
	active *Element

	mutationObservers     []*MutationObserver
	intersectionObservers []*IntersectionObserver

	viewportHeight float64
	scrollTop      float64
}

// Parse parses a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, canonerrors.NewParseError("ERR_BAD_MARKUP", "failed to parse markup", err)
	}
	return newDocument(root), nil
}

// ParseString parses markup held in a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:           root,
		elems:          make(map[*html.Node]*Element),
		loop:           NewLoop(),
		viewportHeight: DefaultViewportHeight,
	}
}

// Loop returns the document's task loop.
func (d *Document) Loop() *Loop { return d.loop }

// Node returns the underlying document node.
func (d *Document) Node() *html.Node { return d.root }

// wrap returns the cached handle for n, creating it on first use.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if el, ok := d.elems[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elems[n] = el
	return el
}

// Wrap returns the element handle for a node that belongs to this document.
func (d *Document) Wrap(n *html.Node) *Element { return d.wrap(n) }

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	html := d.DocumentElement()
	if html == nil {
		return nil
	}
	for _, c := range html.Children() {
		if c.node.DataAtom == atom.Body {
			return c
		}
	}
	return nil
}

// QuerySelector returns the first element matching selector, or nil.
func (d *Document) QuerySelector(selector string) *Element {
	return first(d.querySelectorAll(d.root, selector, true))
}

// QuerySelectorAll returns every element matching selector in document
// order. An invalid selector matches nothing.
func (d *Document) QuerySelectorAll(selector string) []*Element {
	return d.querySelectorAll(d.root, selector, false)
}

// GetElementByID returns the first element whose id attribute equals id.
func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = d.wrap(n)
			return false
		}
		return true
	})
	return found
}

// CreateElement returns a new detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return d.wrap(n)
}

// ParseFragment parses markup in the context of parent and returns the
// resulting top-level elements, detached.
func (d *Document) ParseFragment(parent *Element, markup string) ([]*Element, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if parent != nil {
		ctx = &html.Node{Type: html.ElementNode, Data: parent.node.Data, DataAtom: parent.node.DataAtom}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, canonerrors.NewParseError("ERR_BAD_MARKUP", "failed to parse fragment", err)
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if el := d.wrap(n); el != nil {
			out = append(out, el)
		}
	}
	return out, nil
}

// ActiveElement returns the focused element, or nil.
func (d *Document) ActiveElement() *Element {
	if d.active != nil && !d.active.IsConnected() {
		d.active = nil
	}
	return d.active
}

// AddEventListener registers a listener that runs after every element on the
// propagation path. It returns a function that removes the listener.
func (d *Document) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) func() {
	return d.target.add(eventType, fn, opts...)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document as HTML.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

func first(els []*Element) *Element {
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// walk visits descendants of n in document order, excluding n itself.
// Returning false from visit stops the walk.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !visit(c) {
			return false
		}
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func isAncestorOrSelf(ancestor, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}
