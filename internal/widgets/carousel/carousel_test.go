package carousel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
)

func fixture(t *testing.T, wrapperAttrs string) (*dom.Document, *dom.Element) {
	t.Helper()
	doc, err := dom.ParseString(`<div id="c" data-carousel>
		<div data-carousel-wrapper ` + wrapperAttrs + `>
			<div data-carousel-item>one</div>
			<div data-carousel-item>two</div>
			<div data-carousel-item>three</div>
			<div data-carousel-item>four</div>
		</div>
		<button data-carousel-prev>prev</button>
		<button data-carousel-next>next</button>
		<div data-carousel-indicators></div>
	</div>`)
	require.NoError(t, err)
	return doc, doc.GetElementByID("c")
}

func attach(t *testing.T, root *dom.Element) behavior.Disposer {
	t.Helper()
	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, dispose)
	return dispose
}

func TestGoToSlide(t *testing.T) {
	_, root := fixture(t, "")
	attach(t, root)

	var events []int
	root.AddEventListener(behavior.EventCarouselChange, func(ev *dom.Event) {
		events = append(events, ev.Detail["index"].(int))
	})

	Controller(root).GoToSlide(2)

	items := root.QuerySelectorAll("[data-carousel-item]")
	for i, item := range items {
		if i == 2 {
			assert.True(t, item.HasAttribute("data-active"))
			assert.Equal(t, "false", item.GetAttribute("aria-hidden"))
		} else {
			assert.False(t, item.HasAttribute("data-active"))
			assert.Equal(t, "true", item.GetAttribute("aria-hidden"))
		}
	}

	current := 0
	for _, dot := range root.QuerySelectorAll("[data-carousel-dot]") {
		if dot.GetAttribute("aria-current") == "true" {
			current++
			assert.Equal(t, "2", dot.GetAttribute("data-index"))
		}
	}
	assert.Equal(t, 1, current)
	assert.Equal(t, "2", root.GetAttribute("data-current-index"))
	assert.Equal(t, []int{2}, events)
}

func TestNextAtEnd(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
		want  int
	}{
		{"clamps without loop", "", 3},
		{"wraps with loop", "data-loop", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, root := fixture(t, tt.attrs)
			attach(t, root)
			Controller(root).GoToSlide(3)

			root.QuerySelector("[data-carousel-next]").Click()
			assert.Equal(t, tt.want, Controller(root).Current())
		})
	}
}

func TestPrevAtStart(t *testing.T) {
	_, root := fixture(t, "data-loop")
	attach(t, root)
	root.QuerySelector("[data-carousel-prev]").Click()
	assert.Equal(t, 3, Controller(root).Current())

	Controller(root).GoToSlide(0)
	Controller(root).Prev(false)
	assert.Equal(t, 0, Controller(root).Current())
}

func TestInitialIndexAndClamp(t *testing.T) {
	_, root := fixture(t, `data-initial-index="1"`)
	attach(t, root)
	assert.Equal(t, 1, Controller(root).Current())

	Controller(root).GoToSlide(99)
	assert.Equal(t, 3, Controller(root).Current())
}

func TestKeyboardAndDots(t *testing.T) {
	_, root := fixture(t, "")
	attach(t, root)

	assert.False(t, root.KeyDown("ArrowRight"), "arrow keys prevent default")
	assert.Equal(t, 1, Controller(root).Current())
	root.KeyDown("ArrowLeft")
	assert.Equal(t, 0, Controller(root).Current())
	assert.True(t, root.KeyDown("a"))

	dots := root.QuerySelectorAll("[data-carousel-dot]")
	require.Len(t, dots, 4)
	assert.Equal(t, "Go to slide 4", dots[3].GetAttribute("aria-label"))
	dots[3].Click()
	assert.Equal(t, 3, Controller(root).Current())
}

func TestAttachIsIdempotent(t *testing.T) {
	_, root := fixture(t, "")
	attach(t, root)
	next := root.QuerySelector("[data-carousel-next]")

	changes := 0
	root.AddEventListener(behavior.EventCarouselChange, func(*dom.Event) { changes++ })
	next.Click()
	next.Click()
	assert.Equal(t, 2, changes)

	dispose, err := New(Options{}).Attach(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, dispose)

	next.Click()
	next.Click()
	assert.Equal(t, 4, changes)
	assert.Equal(t, 1, next.ListenerCount("click"))
	assert.Len(t, root.QuerySelectorAll("[data-carousel-dot]"), 4)
}

func TestAutoplayStopsOnDispose(t *testing.T) {
	doc, root := fixture(t, `data-autoplay data-interval="1000"`)
	dispose := attach(t, root)

	doc.Loop().Advance(3 * time.Second)
	assert.Equal(t, 3, Controller(root).Current())
	doc.Loop().Advance(time.Second)
	assert.Equal(t, 0, Controller(root).Current(), "autoplay always wraps")

	dispose()
	assert.Equal(t, 0, doc.Loop().ActiveTimers())
	doc.Loop().Advance(5 * time.Second)
	assert.Equal(t, 0, Controller(root).Current())
	assert.Empty(t, root.QuerySelectorAll("[data-carousel-dot]"))
	assert.False(t, root.HasAttribute("data-carousel-attached"))
}

func TestMissingWrapperIsSkipped(t *testing.T) {
	doc, err := dom.ParseString(`<div id="c" data-carousel></div>`)
	require.NoError(t, err)
	dispose, err := New(Options{}).Attach(context.Background(), doc.GetElementByID("c"))
	require.NoError(t, err)
	assert.NotNil(t, dispose)
}
