package dom

import (
	"strconv"
	"strings"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// Length is a root-margin component in pixels or percent of the viewport.
type Length struct {
	Value   float64
	Percent bool
}

func (l Length) resolve(viewport float64) float64 {
	if l.Percent {
		return viewport * l.Value / 100
	}
	return l.Value
}

// RootMargin grows (positive) or shrinks (negative) the viewport before
// intersection is computed.
type RootMargin struct {
	Top, Right, Bottom, Left Length
}

// ParseRootMargin parses CSS margin shorthand with px or % units, for
// example "-20% 0px -70% 0px".
func ParseRootMargin(s string) (RootMargin, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return RootMargin{}, nil
	}
	if len(fields) > 4 {
		return RootMargin{}, canonerrors.NewParseError("ERR_BAD_ROOT_MARGIN", "root margin takes at most four values: "+s, nil)
	}
	vals := make([]Length, len(fields))
	for i, f := range fields {
		l, err := parseLength(f)
		if err != nil {
			return RootMargin{}, err
		}
		vals[i] = l
	}
	switch len(vals) {
	case 1:
		return RootMargin{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return RootMargin{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return RootMargin{vals[0], vals[1], vals[2], vals[1]}, nil
	default:
		return RootMargin{vals[0], vals[1], vals[2], vals[3]}, nil
	}
}

func parseLength(s string) (Length, error) {
	var l Length
	num := s
	switch {
	case strings.HasSuffix(s, "%"):
		l.Percent = true
		num = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	case s != "0":
		return l, canonerrors.NewParseError("ERR_BAD_ROOT_MARGIN", "root margin values need px or %: "+s, nil)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return l, canonerrors.NewParseError("ERR_BAD_ROOT_MARGIN", "bad root margin value "+s, err)
	}
	l.Value = v
	return l, nil
}

// IntersectionEntry reports a change in a target's intersection state.
type IntersectionEntry struct {
	Target            *Element
	IsIntersecting    bool
	IntersectionRatio float64
}

// IntersectionObserverInit configures an IntersectionObserver.
type IntersectionObserverInit struct {
	RootMargin string
	Threshold  float64
}

// IntersectionCallback receives a batch of entries.
type IntersectionCallback func(entries []IntersectionEntry, observer *IntersectionObserver)

// IntersectionObserver reports when observed elements enter or leave the
// root-margin band of the viewport. The host has no layout engine; geometry
// comes from data-offset-top and data-offset-height attributes, or entries
// are forced with Document.Intersect.
type IntersectionObserver struct {
	doc       *Document
	callback  IntersectionCallback
	margin    RootMargin
	threshold float64
	targets   []*Element
	state     map[*Element]bool
	pending   []IntersectionEntry
	scheduled bool
}

// NewIntersectionObserver creates an observer. It fails if the root margin
// cannot be parsed.
func (d *Document) NewIntersectionObserver(cb IntersectionCallback, opts IntersectionObserverInit) (*IntersectionObserver, error) {
	margin, err := ParseRootMargin(opts.RootMargin)
	if err != nil {
		return nil, canonerrors.NewObserverError("invalid intersection observer options", err)
	}
	io := &IntersectionObserver{
		doc:       d,
		callback:  cb,
		margin:    margin,
		threshold: opts.Threshold,
		state:     make(map[*Element]bool),
	}
	d.intersectionObservers = append(d.intersectionObservers, io)
	return io, nil
}

// Observe starts observing el and queues its initial entry.
func (o *IntersectionObserver) Observe(el *Element) {
	if el == nil {
		return
	}
	for _, t := range o.targets {
		if t == el {
			return
		}
	}
	o.targets = append(o.targets, el)
	in, ratio := o.compute(el)
	o.state[el] = in
	o.queue(IntersectionEntry{Target: el, IsIntersecting: in, IntersectionRatio: ratio})
}

// Unobserve stops observing el.
func (o *IntersectionObserver) Unobserve(el *Element) {
	for i, t := range o.targets {
		if t == el {
			o.targets = append(o.targets[:i], o.targets[i+1:]...)
			delete(o.state, el)
			return
		}
	}
}

// Disconnect stops observing every target.
func (o *IntersectionObserver) Disconnect() {
	o.targets = nil
	o.pending = nil
	o.state = make(map[*Element]bool)
	obs := o.doc.intersectionObservers
	for i, cur := range obs {
		if cur == o {
			o.doc.intersectionObservers = append(obs[:i], obs[i+1:]...)
			return
		}
	}
}

// Observing returns the number of observed targets.
func (o *IntersectionObserver) Observing() int { return len(o.targets) }

func (o *IntersectionObserver) observes(el *Element) bool {
	for _, t := range o.targets {
		if t == el {
			return true
		}
	}
	return false
}

func (o *IntersectionObserver) queue(entry IntersectionEntry) {
	o.pending = append(o.pending, entry)
	if !o.scheduled {
		o.scheduled = true
		o.doc.loop.Post(o.deliver)
	}
}

func (o *IntersectionObserver) deliver() {
	o.scheduled = false
	entries := o.pending
	o.pending = nil
	if len(entries) == 0 || len(o.targets) == 0 {
		return
	}
	o.callback(entries, o)
}

// compute derives intersection from the scroll model. Elements without a
// data-offset-top attribute never intersect.
func (o *IntersectionObserver) compute(el *Element) (bool, float64) {
	raw, ok := el.Attr("data-offset-top")
	if !ok {
		return false, 0
	}
	top, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false, 0
	}
	height, _ := strconv.ParseFloat(el.GetAttribute("data-offset-height"), 64)
	if height < 0 {
		height = 0
	}

	vh := o.doc.viewportHeight
	bandTop := o.doc.scrollTop - o.margin.Top.resolve(vh)
	bandBottom := o.doc.scrollTop + vh + o.margin.Bottom.resolve(vh)
	bottom := top + height

	if height == 0 {
		if top >= bandTop && top < bandBottom {
			return true, 1
		}
		return false, 0
	}
	overlap := minf(bottom, bandBottom) - maxf(top, bandTop)
	if overlap <= 0 {
		return false, 0
	}
	ratio := overlap / height
	if ratio < o.threshold {
		return false, ratio
	}
	return true, ratio
}

// SetViewportHeight sets the viewport height used by the scroll model.
func (d *Document) SetViewportHeight(h float64) {
	if h > 0 {
		d.viewportHeight = h
	}
}

// ScrollTop returns the scroll offset.
func (d *Document) ScrollTop() float64 { return d.scrollTop }

// ScrollTo moves the viewport and queues entries for every observed target
// whose intersection state changed.
func (d *Document) ScrollTo(offset float64) {
	if offset < 0 {
		offset = 0
	}
	d.scrollTop = offset
	for _, o := range d.intersectionObservers {
		for _, t := range o.targets {
			in, ratio := o.compute(t)
			if in == o.state[t] {
				continue
			}
			o.state[t] = in
			o.queue(IntersectionEntry{Target: t, IsIntersecting: in, IntersectionRatio: ratio})
		}
	}
}

// Intersect forces an entry for el on every observer watching it.
func (d *Document) Intersect(el *Element, intersecting bool) {
	ratio := 0.0
	if intersecting {
		ratio = 1
	}
	for _, o := range d.intersectionObservers {
		if !o.observes(el) {
			continue
		}
		o.state[el] = intersecting
		o.queue(IntersectionEntry{Target: el, IsIntersecting: intersecting, IntersectionRatio: ratio})
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
