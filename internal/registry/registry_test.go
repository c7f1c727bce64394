package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
)

type countingRecorder struct {
	mu       sync.Mutex
	attached map[string]int
	failed   map[string]int
	disposed map[string]int
	events   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		attached: map[string]int{},
		failed:   map[string]int{},
		disposed: map[string]int{},
		events:   map[string]int{},
	}
}

func (c *countingRecorder) AttachSucceeded(m string) { c.mu.Lock(); c.attached[m]++; c.mu.Unlock() }
func (c *countingRecorder) AttachFailed(m string)    { c.mu.Lock(); c.failed[m]++; c.mu.Unlock() }
func (c *countingRecorder) Disposed(m string)        { c.mu.Lock(); c.disposed[m]++; c.mu.Unlock() }
func (c *countingRecorder) EventEmitted(n string)    { c.mu.Lock(); c.events[n]++; c.mu.Unlock() }

// clickCounter wires one click listener per root, guarded, and counts hits.
type clickCounter struct {
	marker   behavior.Marker
	guard    behavior.Guard
	hits     int
	disposed int
}

func (c *clickCounter) Marker() behavior.Marker { return c.marker }

func (c *clickCounter) Attach(_ context.Context, root *dom.Element) (behavior.Disposer, error) {
	if !c.guard.TryAttach(root) {
		return nil, nil
	}
	scope := behavior.NewScope()
	scope.Defer(func() { c.guard.Release(root); c.disposed++ })
	if err := scope.Listen(root, "click", func(*dom.Event) { c.hits++ }); err != nil {
		return nil, err
	}
	return scope.Disposer(), nil
}

func parse(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	return doc
}

func TestRegisterAndLookup(t *testing.T) {
	r := New(logging.NewTestLogger(), nil)
	events := r.Watch()

	require.NoError(t, r.Register(&clickCounter{marker: behavior.MarkerTree}))
	require.NoError(t, r.Register(&clickCounter{marker: behavior.MarkerCarousel}))
	assert.Error(t, r.Register(&clickCounter{marker: behavior.MarkerTree}))
	assert.Error(t, r.Register(nil))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []behavior.Marker{behavior.MarkerTree, behavior.MarkerCarousel}, r.Markers())
	_, ok := r.Get(behavior.MarkerCarousel)
	assert.True(t, ok)

	ev := <-events
	assert.Equal(t, EventTypeRegistered, ev.Type)
	assert.Equal(t, behavior.MarkerTree, ev.Marker)

	r.UnWatch(events)
	assert.Len(t, events, 1)
}

func TestStartIsIdempotentPerRoot(t *testing.T) {
	doc := parse(t, `<div id="t" data-tree></div>`)
	counter := &clickCounter{marker: behavior.MarkerTree, guard: "data-test-attached"}
	rec := newCountingRecorder()
	r := New(logging.NewTestLogger(), rec)
	require.NoError(t, r.Register(counter))

	require.NoError(t, r.Start(context.Background(), doc))
	root := doc.GetElementByID("t")

	root.Click()
	root.Click()
	assert.Equal(t, 2, counter.hits)

	// A second scan and a direct second attach both leave one listener.
	r.Scan(doc.Body())
	_, err := counter.Attach(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, root.ListenerCount("click"))

	root.Click()
	root.Click()
	assert.Equal(t, 4, counter.hits)
	assert.Equal(t, 1, rec.attached["data-tree"])

	assert.Error(t, r.Start(context.Background(), doc))
}

type failing struct {
	marker behavior.Marker
	panics bool
}

func (f failing) Marker() behavior.Marker { return f.marker }

func (f failing) Attach(context.Context, *dom.Element) (behavior.Disposer, error) {
	if f.panics {
		panic("boom")
	}
	return nil, errors.New("listener registration failed")
}

func TestAttachFailuresAreIsolated(t *testing.T) {
	doc := parse(t, `<div id="a" data-calendar></div><div id="b" data-toc></div><div id="c" data-tree></div>`)
	counter := &clickCounter{marker: behavior.MarkerTree, guard: "data-test-attached"}
	rec := newCountingRecorder()
	r := New(logging.NewTestLogger(), rec)
	require.NoError(t, r.Register(failing{marker: behavior.MarkerCalendar}))
	require.NoError(t, r.Register(failing{marker: behavior.MarkerTOC, panics: true}))
	require.NoError(t, r.Register(counter))

	assert.Nil(t, r.Document())
	err := r.Start(context.Background(), doc)
	require.Error(t, err)
	assert.Same(t, doc, r.Document(), "attach failures leave the registry running")
	assert.Contains(t, err.Error(), "data-calendar on a")
	assert.Contains(t, err.Error(), "attach panicked")

	doc.GetElementByID("c").Click()
	assert.Equal(t, 1, counter.hits)
	assert.Equal(t, 1, rec.failed["data-calendar"])
	assert.Equal(t, 1, rec.failed["data-toc"])
	assert.True(t, r.Attached(doc.GetElementByID("c"), behavior.MarkerTree))
	assert.False(t, r.Attached(doc.GetElementByID("a"), behavior.MarkerCalendar))
}

func TestRemovalDisposesAndInsertionAttaches(t *testing.T) {
	doc := parse(t, `<main id="m"><div id="t" data-tree></div></main><aside id="side"></aside>`)
	counter := &clickCounter{marker: behavior.MarkerTree, guard: "data-test-attached"}
	rec := newCountingRecorder()
	r := New(logging.NewTestLogger(), rec)
	require.NoError(t, r.Register(counter))
	require.NoError(t, r.Start(context.Background(), doc))
	root := doc.GetElementByID("t")

	// Moving a root keeps it attached.
	doc.GetElementByID("side").AppendChild(root)
	doc.Loop().Flush()
	assert.Equal(t, 0, counter.disposed)
	assert.Equal(t, 1, r.ActiveRoots())

	root.Remove()
	doc.Loop().Flush()
	assert.Equal(t, 1, counter.disposed)
	assert.Equal(t, 0, root.ListenerCount("click"))
	assert.False(t, root.HasAttribute("data-test-attached"))
	assert.Equal(t, 0, r.ActiveRoots())
	assert.Equal(t, 1, rec.disposed["data-tree"])

	fresh, err := doc.ParseFragment(doc.Body(), `<section><div id="t2" data-tree></div></section>`)
	require.NoError(t, err)
	doc.GetElementByID("m").AppendChild(fresh[0])
	doc.Loop().Flush()

	t2 := doc.GetElementByID("t2")
	assert.True(t, r.Attached(t2, behavior.MarkerTree))
	t2.Click()
	assert.Equal(t, 1, counter.hits)

	r.Dispose()
	assert.Equal(t, 2, counter.disposed)
	assert.Equal(t, 0, r.ActiveRoots())
}

func TestCustomEventsAreCountedAndPublished(t *testing.T) {
	doc := parse(t, `<div id="t" data-tree></div>`)
	rec := newCountingRecorder()
	r := New(logging.NewTestLogger(), rec)
	require.NoError(t, r.Register(&clickCounter{marker: behavior.MarkerTree, guard: "data-test-attached"}))
	events := r.Watch()
	require.NoError(t, r.Start(context.Background(), doc))

	behavior.Emit(doc.GetElementByID("t"), behavior.EventTreeSelect, map[string]any{"itemId": "x"})
	assert.Equal(t, 1, rec.events[behavior.EventTreeSelect])

	var emitted *Event
	for len(events) > 0 {
		ev := <-events
		if ev.Type == EventTypeEmitted {
			emitted = &ev
		}
	}
	require.NotNil(t, emitted)
	assert.Equal(t, behavior.EventTreeSelect, emitted.Name)
	assert.Equal(t, "t", emitted.RootID)
	assert.Equal(t, "x", emitted.Detail["itemId"])
}

func TestFilter(t *testing.T) {
	all := []behavior.Behavior{
		&clickCounter{marker: behavior.MarkerTree},
		&clickCounter{marker: behavior.MarkerTOC},
		&clickCounter{marker: behavior.MarkerCarousel},
	}
	assert.Len(t, Filter(all, nil, nil), 3)
	assert.Len(t, Filter(all, nil, []string{"data-toc"}), 2)
	kept := Filter(all, []string{"data-tree", "data-toc"}, []string{"data-toc"})
	require.Len(t, kept, 1)
	assert.Equal(t, behavior.MarkerTree, kept[0].Marker())
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "attached", EventTypeAttached.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
