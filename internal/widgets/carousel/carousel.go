// Package carousel attaches slide navigation, generated indicator dots,
// keyboard control, and autoplay to [data-carousel] roots.
package carousel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/keynav"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/state"
)

// DefaultInterval is the autoplay period when data-interval is absent.
const DefaultInterval = 5000 * time.Millisecond

const guard behavior.Guard = "data-carousel-attached"

// Options configures the behavior.
type Options struct {
	Interval time.Duration
	Logger   logging.Logger
}

// Behavior is the carousel behavior.
type Behavior struct {
	interval time.Duration
	logger   logging.Logger
}

// New creates the carousel behavior.
func New(opts Options) *Behavior {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{interval: opts.Interval, logger: opts.Logger.WithComponent("carousel")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerCarousel }

// Attach implements behavior.Behavior.
func (b *Behavior) Attach(ctx context.Context, root *dom.Element) (behavior.Disposer, error) {
	if !guard.TryAttach(root) {
		return nil, nil
	}
	scope := behavior.NewScope()
	scope.Defer(func() { guard.Release(root) })

	wrapper := root.QuerySelector("[data-carousel-wrapper]")
	if wrapper == nil {
		b.logger.Debug(ctx, "carousel has no wrapper", "root", root.ID())
		return scope.Disposer(), nil
	}
	c := Controller(root)
	total := c.Len()
	if total == 0 {
		return scope.Disposer(), nil
	}

	initial := state.Int(wrapper, "data-initial-index", 0)
	autoplay := state.Flag(wrapper, "data-autoplay")
	loop := state.Flag(wrapper, "data-loop")
	interval := state.Duration(wrapper, "data-interval", b.interval)

	if indicators := root.QuerySelector("[data-carousel-indicators]"); indicators != nil {
		doc := root.Document()
		for i := 0; i < total; i++ {
			index := i
			dot := doc.CreateElement("button")
			dot.SetAttribute("type", "button")
			dot.SetAttribute("data-carousel-dot", "")
			dot.SetAttribute("data-index", strconv.Itoa(i))
			dot.SetAttribute("aria-label", fmt.Sprintf("Go to slide %d", i+1))
			if err := scope.Listen(dot, "click", func(*dom.Event) { c.GoToSlide(index) }); err != nil {
				scope.Dispose()
				return nil, err
			}
			indicators.AppendChild(dot)
			scope.Defer(dot.Remove)
		}
	}

	c.GoToSlide(initial)

	if prev := root.QuerySelector("[data-carousel-prev]"); prev != nil {
		if err := scope.Listen(prev, "click", func(*dom.Event) { c.Prev(loop) }); err != nil {
			scope.Dispose()
			return nil, err
		}
	}
	if next := root.QuerySelector("[data-carousel-next]"); next != nil {
		if err := scope.Listen(next, "click", func(*dom.Event) { c.Next(loop) }); err != nil {
			scope.Dispose()
			return nil, err
		}
	}

	err := scope.Listen(root, "keydown", func(ev *dom.Event) {
		switch ev.Key {
		case keynav.KeyArrowLeft:
			ev.PreventDefault()
			c.Prev(loop)
		case keynav.KeyArrowRight:
			ev.PreventDefault()
			c.Next(loop)
		}
	})
	if err != nil {
		scope.Dispose()
		return nil, err
	}

	if autoplay {
		scope.Interval(root.Document().Loop(), interval, func() { c.Next(true) })
		b.logger.Debug(ctx, "carousel autoplay armed", "root", root.ID(), "interval", interval)
	}

	return scope.Disposer(), nil
}

// Carousel drives slide state stored on a carousel root.
type Carousel struct {
	root *dom.Element
}

// Controller returns a controller for root.
func Controller(root *dom.Element) *Carousel { return &Carousel{root: root} }

func (c *Carousel) items() []*dom.Element {
	return c.root.QuerySelectorAll("[data-carousel-item]")
}

// Len returns the number of slides.
func (c *Carousel) Len() int { return len(c.items()) }

// Current returns the index held in data-current-index.
func (c *Carousel) Current() int { return state.Int(c.root, "data-current-index", 0) }

// GoToSlide activates the slide at index, clamped to the slide range, syncs
// the indicator dots, and dispatches canon:carousel-change.
func (c *Carousel) GoToSlide(index int) {
	items := c.items()
	if len(items) == 0 {
		return
	}
	index = state.Clamp(index, 0, len(items)-1)
	state.SetInt(c.root, "data-current-index", index)

	for i, item := range items {
		if i == index {
			item.SetAttribute("data-active", "")
			item.SetAttribute("aria-hidden", "false")
		} else {
			item.RemoveAttribute("data-active")
			item.SetAttribute("aria-hidden", "true")
		}
	}
	for i, dot := range c.root.QuerySelectorAll("[data-carousel-dot]") {
		if i == index {
			dot.SetAttribute("data-active", "")
			dot.SetAttribute("aria-current", "true")
		} else {
			dot.RemoveAttribute("data-active")
			dot.RemoveAttribute("aria-current")
		}
	}

	behavior.Emit(c.root, behavior.EventCarouselChange, map[string]any{"index": index})
}

// Next advances one slide, wrapping to the first when loop is set and
// otherwise staying on the last.
func (c *Carousel) Next(loop bool) {
	total := c.Len()
	if total == 0 {
		return
	}
	current := c.Current()
	switch {
	case current < total-1:
		c.GoToSlide(current + 1)
	case loop:
		c.GoToSlide(0)
	default:
		c.GoToSlide(total - 1)
	}
}

// Prev steps back one slide, wrapping to the last when loop is set and
// otherwise staying on the first.
func (c *Carousel) Prev(loop bool) {
	total := c.Len()
	if total == 0 {
		return
	}
	current := c.Current()
	switch {
	case current > 0:
		c.GoToSlide(current - 1)
	case loop:
		c.GoToSlide(total - 1)
	default:
		c.GoToSlide(0)
	}
}
