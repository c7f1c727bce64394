package toc

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/dom"
)

const article = `<main>
	<h2 id="intro" data-offset-top="0">Intro</h2>
	<h2 id="setup" data-offset-top="1000">Setup</h2>
	<h3 id="install" data-offset-top="1500">Install</h3>
	<h3 id="configure" data-offset-top="2000">Configure</h3>
	<h2 id="usage" data-offset-top="3000">Usage</h2>
</main>`

const simpleTOC = `<nav id="toc" data-toc data-toc-mode="%s">
	<a id="i-intro" data-toc-item data-target="intro" data-level="2">Intro</a>
	<a id="i-setup" data-toc-item data-target="setup" data-level="2">Setup</a>
	<a id="i-install" data-toc-item data-target="install" data-level="3" data-child="true">Install</a>
	<a id="i-configure" data-toc-item data-target="configure" data-level="3" data-child="true">Configure</a>
	<a id="i-usage" data-toc-item data-target="usage" data-level="2">Usage</a>
</nav>`

const nestedTOC = `<nav id="toc" data-toc data-toc-mode="nested"><ul>
	<li id="i-intro" data-toc-item data-target="intro">Intro</li>
	<li id="i-setup" data-toc-item data-target="setup">
		<button id="btn-setup" data-toc-expand-btn aria-expanded="false">+</button>
		<ul id="sub-setup" data-toc-subtree data-state="closed">
			<li id="i-install" data-toc-item data-target="install" data-level="3">Install</li>
			<li id="i-configure" data-toc-item data-target="configure" data-level="3">Configure</li>
		</ul>
	</li>
	<li id="i-usage" data-toc-item data-target="usage">Usage</li>
</ul></nav>`

func setup(t *testing.T, toc string) (*dom.Document, *dom.Element, func()) {
	t.Helper()
	doc, err := dom.ParseString(toc + article)
	require.NoError(t, err)
	root := doc.GetElementByID("toc")
	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, dispose)
	doc.Loop().Flush()
	return doc, root, dispose
}

func states(root *dom.Element) map[string]string {
	out := map[string]string{}
	for _, item := range root.QuerySelectorAll(itemSelector) {
		out[item.ID()] = item.GetAttribute("data-state")
	}
	return out
}

func withMode(mode string) string {
	return fmt.Sprintf(simpleTOC, mode)
}

func TestSimpleScrollSpy(t *testing.T) {
	doc, root, _ := setup(t, withMode(ModeSimple))

	doc.Intersect(doc.GetElementByID("setup"), true)
	doc.Loop().Flush()

	s := states(root)
	assert.Equal(t, "active", s["i-setup"])
	for id, st := range s {
		if id != "i-setup" {
			assert.Equal(t, "idle", st, id)
		}
	}

	doc.Intersect(doc.GetElementByID("setup"), false)
	doc.Loop().Flush()
	assert.Equal(t, "active", states(root)["i-setup"], "leaving does not clear")
}

func TestScrollModelBand(t *testing.T) {
	doc, root, _ := setup(t, withMode(ModeSimple))

	// The band spans 20%..30% of a 1000px viewport below the scroll offset.
	doc.ScrollTo(1800)
	doc.Loop().Flush()
	assert.Equal(t, "active", states(root)["i-configure"])

	doc.ScrollTo(2800)
	doc.Loop().Flush()
	assert.Equal(t, "active", states(root)["i-usage"])
	assert.Equal(t, "idle", states(root)["i-configure"])
}

func TestExpandMode(t *testing.T) {
	doc, root, _ := setup(t, withMode(ModeExpand))

	doc.Intersect(doc.GetElementByID("install"), true)
	doc.Loop().Flush()
	assert.Equal(t, "true", doc.GetElementByID("i-install").GetAttribute("data-visible"))
	assert.Equal(t, "true", doc.GetElementByID("i-configure").GetAttribute("data-visible"))
	assert.False(t, doc.GetElementByID("i-usage").HasAttribute("data-visible"))

	doc.Intersect(doc.GetElementByID("usage"), true)
	doc.Loop().Flush()
	assert.False(t, doc.GetElementByID("i-install").HasAttribute("data-visible"), "top-level entries hide children")
	assert.Equal(t, "active", states(root)["i-usage"])
}

func TestNestedMode(t *testing.T) {
	doc, root, _ := setup(t, nestedTOC)

	doc.Intersect(doc.GetElementByID("configure"), true)
	doc.Loop().Flush()

	assert.Equal(t, "open", doc.GetElementByID("sub-setup").GetAttribute("data-state"))
	assert.Equal(t, "true", doc.GetElementByID("btn-setup").GetAttribute("aria-expanded"))
	s := states(root)
	assert.Equal(t, "active", s["i-configure"])
	assert.Equal(t, "ancestor", s["i-setup"])
	assert.Equal(t, "idle", s["i-intro"])

	doc.Intersect(doc.GetElementByID("intro"), true)
	doc.Loop().Flush()
	assert.Equal(t, "idle", states(root)["i-setup"])
}

func TestNestedManualExpand(t *testing.T) {
	doc, _, _ := setup(t, nestedTOC)
	btn := doc.GetElementByID("btn-setup")
	sub := doc.GetElementByID("sub-setup")

	btn.Click()
	assert.Equal(t, "true", btn.GetAttribute("aria-expanded"))
	assert.Equal(t, "open", sub.GetAttribute("data-state"))
	btn.Click()
	assert.Equal(t, "false", btn.GetAttribute("aria-expanded"))
	assert.Equal(t, "closed", sub.GetAttribute("data-state"))
}

func TestActivateUnknownHeading(t *testing.T) {
	_, root, _ := setup(t, withMode(ModeSimple))
	assert.Nil(t, Activate(root, "missing", ModeSimple))
}

func TestDisposeDisconnects(t *testing.T) {
	doc, root, dispose := setup(t, withMode(ModeSimple))
	dispose()
	assert.False(t, root.HasAttribute("data-spy-attached"))

	doc.Intersect(doc.GetElementByID("usage"), true)
	doc.Loop().Flush()
	assert.NotEqual(t, "active", states(root)["i-usage"])
}

func TestAttachIsIdempotent(t *testing.T) {
	doc, root, _ := setup(t, nestedTOC)
	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, dispose)
	assert.Equal(t, 1, doc.GetElementByID("btn-setup").ListenerCount("click"))
}

func TestBadRootMargin(t *testing.T) {
	doc, err := dom.ParseString(withMode(ModeSimple) + article)
	require.NoError(t, err)
	root := doc.GetElementByID("toc")
	_, err = New(Options{RootMargin: "10em"}).Attach(context.Background(), root)
	require.Error(t, err)
	assert.False(t, root.HasAttribute("data-spy-attached"))
}
