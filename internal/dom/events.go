package dom

import "golang.org/x/net/html"

// EventPhase mirrors the DOM propagation phases.
type EventPhase int

const (
	PhaseNone EventPhase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// EventInit configures a new Event.
type EventInit struct {
	Bubbles    bool
	Cancelable bool
	Key        string
	CtrlKey    bool
	MetaKey    bool
	ShiftKey   bool
	Detail     map[string]any
}

// Event is a dispatched event. Listeners may read Target, CurrentTarget, Key
// and Detail, and may call PreventDefault or StopPropagation.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element
	Phase         EventPhase
	Key           string
	CtrlKey       bool
	MetaKey       bool
	ShiftKey      bool
	Detail        map[string]any
	Bubbles       bool
	Cancelable    bool

	defaultPrevented bool
	stopped          bool
	stoppedNow       bool
}

// NewEvent creates an event.
func NewEvent(eventType string, init EventInit) *Event {
	return &Event{
		Type:       eventType,
		Key:        init.Key,
		CtrlKey:    init.CtrlKey,
		MetaKey:    init.MetaKey,
		ShiftKey:   init.ShiftKey,
		Detail:     init.Detail,
		Bubbles:    init.Bubbles,
		Cancelable: init.Cancelable,
	}
}

// NewKeyboardEvent creates a bubbling, cancelable keydown event.
func NewKeyboardEvent(key string) *Event {
	return NewEvent("keydown", EventInit{Bubbles: true, Cancelable: true, Key: key})
}

// NewMouseEvent creates a bubbling, cancelable pointer event such as click or
// one of the drag events.
func NewMouseEvent(eventType string) *Event {
	return NewEvent(eventType, EventInit{Bubbles: true, Cancelable: true})
}

// NewCustomEvent creates a bubbling, non-cancelable event with a detail
// payload.
func NewCustomEvent(eventType string, detail map[string]any) *Event {
	return NewEvent(eventType, EventInit{Bubbles: true, Detail: detail})
}

// PreventDefault marks a cancelable event as handled.
func (ev *Event) PreventDefault() {
	if ev.Cancelable {
		ev.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation stops the event after the current element's listeners.
func (ev *Event) StopPropagation() { ev.stopped = true }

// StopImmediatePropagation also skips remaining listeners on the current
// element.
func (ev *Event) StopImmediatePropagation() {
	ev.stopped = true
	ev.stoppedNow = true
}

// Listener handles an event.
type Listener func(*Event)

// ListenerOptions mirrors addEventListener options.
type ListenerOptions struct {
	Capture bool
	Once    bool
}

type listener struct {
	eventType string
	fn        Listener
	capture   bool
	once      bool
	removed   bool
}

type eventTarget struct {
	listeners []*listener
}

func (t *eventTarget) add(eventType string, fn Listener, opts ...ListenerOptions) func() {
	var o ListenerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	l := &listener{eventType: eventType, fn: fn, capture: o.Capture, once: o.Once}
	t.listeners = append(t.listeners, l)
	return func() { t.remove(l) }
}

func (t *eventTarget) remove(l *listener) {
	l.removed = true
	for i, cur := range t.listeners {
		if cur == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

func (t *eventTarget) count(eventType string) int {
	n := 0
	for _, l := range t.listeners {
		if l.eventType == eventType {
			n++
		}
	}
	return n
}

// invoke runs matching listeners registered before the call, in order.
func (t *eventTarget) invoke(ev *Event, phase EventPhase) {
	snapshot := make([]*listener, 0, len(t.listeners))
	for _, l := range t.listeners {
		if l.eventType != ev.Type {
			continue
		}
		switch phase {
		case PhaseCapturing:
			if !l.capture {
				continue
			}
		case PhaseBubbling:
			if l.capture {
				continue
			}
		}
		snapshot = append(snapshot, l)
	}
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		if l.once {
			t.remove(l)
		}
		l.fn(ev)
		if ev.stoppedNow {
			return
		}
	}
}

// AddEventListener registers fn for eventType. It returns a function that
// removes the listener.
func (e *Element) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) func() {
	return e.target.add(eventType, fn, opts...)
}

// ListenerCount returns the number of listeners registered for eventType.
func (e *Element) ListenerCount(eventType string) int {
	return e.target.count(eventType)
}

// DispatchEvent runs ev through capture, target, and bubble phases and
// returns false if a listener prevented the default action.
func (e *Element) DispatchEvent(ev *Event) bool {
	ev.Target = e
	ev.defaultPrevented = false
	ev.stopped = false
	ev.stoppedNow = false

	var path []*Element
	for n := e.node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			path = append(path, e.doc.wrap(n))
		}
	}
	connected := e.IsConnected()

	if connected {
		ev.CurrentTarget = nil
		ev.Phase = PhaseCapturing
		e.doc.target.invoke(ev, PhaseCapturing)
	}
	for i := len(path) - 1; i >= 0 && !ev.stopped; i-- {
		ev.CurrentTarget = path[i]
		ev.Phase = PhaseCapturing
		path[i].target.invoke(ev, PhaseCapturing)
	}

	if !ev.stopped {
		ev.CurrentTarget = e
		ev.Phase = PhaseAtTarget
		e.target.invoke(ev, PhaseAtTarget)
	}

	if ev.Bubbles {
		for _, p := range path {
			if ev.stopped {
				break
			}
			ev.CurrentTarget = p
			ev.Phase = PhaseBubbling
			p.target.invoke(ev, PhaseBubbling)
		}
		if connected && !ev.stopped {
			ev.CurrentTarget = nil
			ev.Phase = PhaseBubbling
			e.doc.target.invoke(ev, PhaseBubbling)
		}
	}

	ev.CurrentTarget = nil
	ev.Phase = PhaseNone
	return !ev.defaultPrevented
}

// Click dispatches a click. Checkboxes toggle before listeners run, revert
// when the click is prevented, and fire change otherwise.
func (e *Element) Click() bool {
	isBox := e.IsCheckbox() && !e.HasAttribute("disabled")
	before := e.Checked()
	if isBox {
		e.SetChecked(!before)
	}
	ok := e.DispatchEvent(NewMouseEvent("click"))
	if isBox {
		if !ok {
			e.SetChecked(before)
		} else {
			e.DispatchEvent(NewEvent("change", EventInit{Bubbles: true}))
		}
	}
	return ok
}

// KeyDown dispatches a keydown for key.
func (e *Element) KeyDown(key string) bool {
	return e.DispatchEvent(NewKeyboardEvent(key))
}

// Input sets the value property and fires a bubbling input event.
func (e *Element) Input(value string) {
	e.SetValue(value)
	e.DispatchEvent(NewEvent("input", EventInit{Bubbles: true}))
}
