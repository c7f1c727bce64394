package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/keynav"
)

const nested = `<div id="t" data-tree role="tree">
	<div id="a" data-tree-item data-depth="0" data-expanded="false" data-has-children="true" tabindex="0">
		<button id="ta" data-tree-toggle>+</button><span>a</span>
		<div data-tree-group role="group">
			<div id="b" data-tree-item data-depth="1" data-expanded="false" data-has-children="true" tabindex="0">
				<button id="tb" data-tree-toggle>+</button><span>b</span>
				<div data-tree-group role="group">
					<div id="c" data-tree-item data-depth="2" data-has-children="false" tabindex="0">c</div>
				</div>
			</div>
		</div>
	</div>
	<div id="d" data-tree-item data-depth="0" data-has-children="false" tabindex="0">d</div>
</div>`

const flat = `<div id="t" data-tree>
	<div id="a" data-tree-item data-expanded="true" data-has-children="true">a</div>
	<div data-tree-group>
		<div id="b" data-tree-item data-expanded="false" data-has-children="true">b</div>
		<div data-tree-group>
			<div id="c" data-tree-item>c</div>
		</div>
	</div>
</div>`

func setup(t *testing.T, markup string) (*dom.Document, *dom.Element) {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	root := doc.GetElementByID("t")
	_, err = New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	return doc, root
}

func ids(els []*dom.Element) []string {
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.ID())
	}
	return out
}

func TestVisibleItems(t *testing.T) {
	for _, markup := range []string{nested, flat} {
		doc, root := setup(t, markup)
		tr := Controller(root)
		a, b := doc.GetElementByID("a"), doc.GetElementByID("b")

		tr.SetExpanded(a, false)
		tr.SetExpanded(b, false)
		assert.NotContains(t, ids(tr.VisibleItems()), "c")

		tr.SetExpanded(b, true)
		assert.NotContains(t, ids(tr.VisibleItems()), "c", "grandparent still collapsed")

		tr.SetExpanded(a, true)
		assert.Contains(t, ids(tr.VisibleItems()), "c")
	}
}

func TestParentItem(t *testing.T) {
	for _, markup := range []string{nested, flat} {
		doc, root := setup(t, markup)
		tr := Controller(root)
		assert.Equal(t, doc.GetElementByID("b"), tr.ParentItem(doc.GetElementByID("c")))
		assert.Equal(t, doc.GetElementByID("a"), tr.ParentItem(doc.GetElementByID("b")))
		assert.Nil(t, tr.ParentItem(doc.GetElementByID("a")))
	}
}

func TestAttachNormalizesTabindex(t *testing.T) {
	_, root := setup(t, nested)
	assert.Equal(t, 1, keynav.Zeroes(Controller(root).Items()))
	assert.Equal(t, "0", root.QuerySelector("#a").GetAttribute("tabindex"))
}

func TestToggle(t *testing.T) {
	doc, root := setup(t, nested)
	var expands []map[string]any
	root.AddEventListener(behavior.EventTreeExpand, func(ev *dom.Event) { expands = append(expands, ev.Detail) })
	selects := 0
	root.AddEventListener(behavior.EventTreeSelect, func(*dom.Event) { selects++ })

	doc.GetElementByID("ta").Click()
	a := doc.GetElementByID("a")
	assert.Equal(t, "true", a.GetAttribute("data-expanded"))
	assert.Equal(t, "true", a.GetAttribute("aria-expanded"))
	doc.GetElementByID("ta").Click()
	assert.Equal(t, "false", a.GetAttribute("data-expanded"))

	require.Len(t, expands, 2)
	assert.Equal(t, map[string]any{"itemId": "a", "expanded": true}, expands[0])
	assert.Equal(t, 0, selects, "toggle clicks do not select")
}

func TestClickSelects(t *testing.T) {
	doc, root := setup(t, nested)
	var got []string
	root.AddEventListener(behavior.EventTreeSelect, func(ev *dom.Event) { got = append(got, ev.Detail["itemId"].(string)) })

	doc.GetElementByID("d").Click()
	doc.GetElementByID("a").Click()

	assert.Equal(t, []string{"d", "a"}, got)
	assert.Equal(t, []string{"a"}, Controller(root).Selected())
	assert.Equal(t, "false", doc.GetElementByID("d").GetAttribute("aria-selected"))
	assert.Equal(t, "0", doc.GetElementByID("a").GetAttribute("tabindex"))
	assert.Equal(t, 1, keynav.Zeroes(Controller(root).Items()))
}

func TestMultiselect(t *testing.T) {
	doc, root := setup(t, nested)
	root.SetAttribute("aria-multiselectable", "true")
	tr := Controller(root)

	ctrlClick := func(id string) {
		doc.GetElementByID(id).DispatchEvent(dom.NewEvent("click", dom.EventInit{Bubbles: true, Cancelable: true, CtrlKey: true}))
	}
	ctrlClick("a")
	ctrlClick("d")
	assert.Equal(t, []string{"a", "d"}, tr.Selected())
	ctrlClick("a")
	assert.Equal(t, []string{"d"}, tr.Selected())
}

func TestKeyboard(t *testing.T) {
	doc, root := setup(t, nested)
	tr := Controller(root)
	a := doc.GetElementByID("a")

	a.KeyDown("ArrowDown")
	assert.Equal(t, "d", doc.ActiveElement().ID(), "collapsed children are skipped")
	assert.Equal(t, 1, keynav.Zeroes(tr.Items()))

	doc.GetElementByID("d").KeyDown("ArrowUp")
	a.KeyDown("ArrowRight")
	assert.True(t, Expanded(a), "right expands a collapsed parent")
	assert.Equal(t, "a", doc.ActiveElement().ID())

	a.KeyDown("ArrowRight")
	assert.Equal(t, "b", doc.ActiveElement().ID(), "right on an open parent enters it")

	doc.GetElementByID("b").KeyDown("ArrowLeft")
	assert.Equal(t, "a", doc.ActiveElement().ID(), "left on a collapsed item moves to the parent")

	a.KeyDown("ArrowLeft")
	assert.False(t, Expanded(a), "left collapses an open parent")

	a.KeyDown("End")
	assert.Equal(t, "d", doc.ActiveElement().ID())
	doc.GetElementByID("d").KeyDown("Enter")
	assert.Equal(t, []string{"d"}, tr.Selected())
	assert.Equal(t, 1, keynav.Zeroes(tr.Items()))
}

func TestCollapseMovesHiddenStop(t *testing.T) {
	doc, root := setup(t, nested)
	tr := Controller(root)
	a := doc.GetElementByID("a")
	tr.SetExpanded(a, true)
	doc.GetElementByID("b").Click()
	tr.SetExpanded(a, false)
	assert.Equal(t, "0", a.GetAttribute("tabindex"))
	assert.Equal(t, 1, keynav.Zeroes(tr.Items()))
}

func TestAttachIsIdempotent(t *testing.T) {
	doc, root := setup(t, nested)
	count := 0
	root.AddEventListener(behavior.EventTreeExpand, func(*dom.Event) { count++ })

	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, dispose)

	doc.GetElementByID("ta").Click()
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, doc.GetElementByID("ta").ListenerCount("click"))
}
