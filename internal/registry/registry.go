// Package registry maps behavior markers to behaviors, attaches them to
// every matching root in a document, and keeps attachments in step with the
// document as roots are inserted and removed.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	canonerrors "github.com/conneroisu/canon/internal/errors"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/metrics"
)

// EventType represents the type of registry event
type EventType int

const (
	EventTypeRegistered EventType = iota
	EventTypeAttached
	EventTypeFailed
	EventTypeDisposed
	EventTypeEmitted
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventTypeRegistered:
		return "registered"
	case EventTypeAttached:
		return "attached"
	case EventTypeFailed:
		return "failed"
	case EventTypeDisposed:
		return "disposed"
	case EventTypeEmitted:
		return "emitted"
	default:
		return "unknown"
	}
}

// Event represents a change in the registry or a custom event dispatched by
// an attached behavior.
type Event struct {
	Type      EventType
	Marker    behavior.Marker
	RootID    string
	Name      string
	Detail    map[string]any
	Err       error
	Timestamp time.Time
}

type attachment struct {
	marker  behavior.Marker
	dispose behavior.Disposer
}

// Registry holds behaviors keyed by marker. Registration and watching are
// safe for concurrent use; attachment methods must run on the document's
// loop goroutine.
type Registry struct {
	behaviors map[behavior.Marker]behavior.Behavior
	order     []behavior.Marker
	mutex     sync.RWMutex
	watchers  []chan Event

	logger   logging.Logger
	recorder metrics.Recorder

	ctx         context.Context
	doc         *dom.Document
	roots       []*dom.Element
	attachments map[*dom.Element][]attachment
	observer    *dom.MutationObserver
	teardown    []func()
}

// New creates an empty registry. A nil recorder disables metrics.
func New(logger logging.Logger, recorder metrics.Recorder) *Registry {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &Registry{
		behaviors:   make(map[behavior.Marker]behavior.Behavior),
		watchers:    make([]chan Event, 0),
		logger:      logger.WithComponent("registry"),
		recorder:    recorder,
		attachments: make(map[*dom.Element][]attachment),
	}
}

// Register adds a behavior. Each marker may be registered once.
func (r *Registry) Register(b behavior.Behavior) error {
	if b == nil || b.Marker() == "" {
		return canonerrors.NewValidationError("ERR_INVALID_BEHAVIOR", "behavior must declare a marker")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	marker := b.Marker()
	if _, exists := r.behaviors[marker]; exists {
		return canonerrors.NewValidationError("ERR_DUPLICATE_MARKER",
			fmt.Sprintf("marker %s is already registered", marker))
	}
	r.behaviors[marker] = b
	r.order = append(r.order, marker)

	r.notify(Event{Type: EventTypeRegistered, Marker: marker})
	return nil
}

// Get retrieves a behavior by marker
func (r *Registry) Get(marker behavior.Marker) (behavior.Behavior, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	b, exists := r.behaviors[marker]
	return b, exists
}

// Markers returns registered markers in registration order
func (r *Registry) Markers() []behavior.Marker {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]behavior.Marker, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered behaviors
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.behaviors)
}

// Watch returns a channel that receives registry events
func (r *Registry) Watch() <-chan Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan Event, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *Registry) UnWatch(ch <-chan Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// notify sends to every watcher without blocking. Callers hold the mutex.
func (r *Registry) notify(event Event) {
	event.Timestamp = time.Now()
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

func (r *Registry) publish(event Event) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	r.notify(event)
}
