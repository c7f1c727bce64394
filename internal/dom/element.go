package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Element is a handle over an element node. Handles are cached per node, so
// two lookups of the same node return the same *Element.
type Element struct {
	doc    *Document
	node   *html.Node
	target eventTarget

	checked       *bool
	indeterminate bool
	value         *string
}

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Node returns the underlying node.
func (e *Element) Node() *html.Node { return e.node }

// TagName returns the lower-case tag name.
func (e *Element) TagName() string { return e.node.Data }

// ID returns the id attribute.
func (e *Element) ID() string { return e.GetAttribute("id") }

// GetAttribute returns the attribute value, or "" when absent.
func (e *Element) GetAttribute(name string) string {
	return attr(e.node, name)
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttribute sets or replaces an attribute.
func (e *Element) SetAttribute(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute removes an attribute if present.
func (e *Element) RemoveAttribute(name string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

// ToggleAttribute adds a boolean attribute when on and removes it otherwise.
func (e *Element) ToggleAttribute(name string, on bool) {
	if on {
		if !e.HasAttribute(name) {
			e.SetAttribute(name, "")
		}
		return
	}
	e.RemoveAttribute(name)
}

// Hidden reports whether the hidden attribute is present.
func (e *Element) Hidden() bool { return e.HasAttribute("hidden") }

// SetHidden toggles the hidden attribute.
func (e *Element) SetHidden(hidden bool) { e.ToggleAttribute("hidden", hidden) }

// TextContent concatenates all descendant text.
func (e *Element) TextContent() string {
	var b strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces all children with a single text node.
func (e *Element) SetTextContent(text string) {
	var removed []*html.Node
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		removed = append(removed, c)
		c = next
	}
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	e.doc.notifyChildList(e.node, nil, removed)
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element {
	return e.doc.wrap(e.node.Parent)
}

// Children returns element children in order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// Matches reports whether the element matches selector.
func (e *Element) Matches(selector string) bool {
	return matches(e.node, selector)
}

// Closest returns the nearest inclusive ancestor matching selector.
func (e *Element) Closest(selector string) *Element {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && matches(n, selector) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// QuerySelector returns the first descendant matching selector.
func (e *Element) QuerySelector(selector string) *Element {
	return first(e.doc.querySelectorAll(e.node, selector, true))
}

// QuerySelectorAll returns every descendant matching selector.
func (e *Element) QuerySelectorAll(selector string) []*Element {
	return e.doc.querySelectorAll(e.node, selector, false)
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	return other != nil && isAncestorOrSelf(e.node, other.node)
}

// IsConnected reports whether the element is attached to its document.
func (e *Element) IsConnected() bool {
	return isAncestorOrSelf(e.doc.root, e.node)
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	e.InsertBefore(child, nil)
}

// InsertBefore moves child before ref, or to the end when ref is nil.
func (e *Element) InsertBefore(child, ref *Element) {
	if child == nil || child == ref {
		return
	}
	if old := child.node.Parent; old != nil {
		old.RemoveChild(child.node)
		e.doc.notifyChildList(old, nil, []*html.Node{child.node})
	}
	if ref != nil && ref.node.Parent == e.node {
		e.node.InsertBefore(child.node, ref.node)
	} else {
		e.node.AppendChild(child.node)
	}
	e.doc.notifyChildList(e.node, []*html.Node{child.node}, nil)
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	parent := e.node.Parent
	if parent == nil {
		return
	}
	parent.RemoveChild(e.node)
	e.doc.notifyChildList(parent, nil, []*html.Node{e.node})
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.GetAttribute("class"))
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class list if missing.
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	e.SetAttribute("class", strings.TrimSpace(e.GetAttribute("class")+" "+name))
}

// RemoveClass removes name from the class list.
func (e *Element) RemoveClass(name string) {
	if !e.HasClass(name) {
		return
	}
	var kept []string
	for _, c := range e.Classes() {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		e.RemoveAttribute("class")
		return
	}
	e.SetAttribute("class", strings.Join(kept, " "))
}

// Focus makes e the active element and fires a non-bubbling focus event.
func (e *Element) Focus() {
	if e.doc.active == e {
		return
	}
	e.doc.active = e
	e.DispatchEvent(NewEvent("focus", EventInit{}))
}

// Blur clears focus if e holds it.
func (e *Element) Blur() {
	if e.doc.active == e {
		e.doc.active = nil
		e.DispatchEvent(NewEvent("blur", EventInit{}))
	}
}

// Checked returns the checked property, initialised from the checked
// attribute.
func (e *Element) Checked() bool {
	if e.checked == nil {
		return e.HasAttribute("checked")
	}
	return *e.checked
}

// SetChecked sets the checked property.
func (e *Element) SetChecked(checked bool) {
	e.checked = &checked
}

// Indeterminate returns the indeterminate property.
func (e *Element) Indeterminate() bool { return e.indeterminate }

// SetIndeterminate sets the indeterminate property.
func (e *Element) SetIndeterminate(v bool) { e.indeterminate = v }

// Value returns the value property, initialised from the value attribute.
func (e *Element) Value() string {
	if e.value == nil {
		return e.GetAttribute("value")
	}
	return *e.value
}

// SetValue sets the value property.
func (e *Element) SetValue(v string) {
	e.value = &v
}

// IsCheckbox reports whether e is an <input type="checkbox">.
func (e *Element) IsCheckbox() bool {
	return e.node.Data == "input" && strings.EqualFold(e.GetAttribute("type"), "checkbox")
}

// OuterHTML renders the element and its subtree.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.node)
	return buf.String()
}
