package behavior

import (
	"time"

	"github.com/conneroisu/canon/internal/dom"
	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// Scope collects the cleanup work of one attachment. Dispose runs it in
// reverse order, once.
type Scope struct {
	cleanups []func()
	disposed bool
}

// NewScope returns an empty scope.
func NewScope() *Scope { return &Scope{} }

// Defer registers fn to run on Dispose. If the scope is already disposed fn
// runs immediately.
func (s *Scope) Defer(fn func()) {
	if fn == nil {
		return
	}
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Listen adds a listener to el and registers its removal.
func (s *Scope) Listen(el *dom.Element, eventType string, fn dom.Listener, opts ...dom.ListenerOptions) error {
	if el == nil {
		return canonerrors.NewListenerError(eventType, canonerrors.NewLookupError("listener target"))
	}
	if fn == nil {
		return canonerrors.NewListenerError(eventType, nil)
	}
	s.Defer(el.AddEventListener(eventType, fn, opts...))
	return nil
}

// Interval arms a repeating timer on loop and registers its disarm.
func (s *Scope) Interval(loop *dom.Loop, every time.Duration, fn func()) dom.TimerID {
	id := loop.SetInterval(every, fn)
	s.Defer(func() { loop.ClearTimer(id) })
	return id
}

// ObserveMutations installs a child-list observer on target and registers
// its disconnect.
func (s *Scope) ObserveMutations(target *dom.Element, subtree bool, cb dom.MutationCallback) error {
	if target == nil {
		return canonerrors.NewObserverError("mutation observer target missing", nil)
	}
	mo := target.Document().NewMutationObserver(cb)
	if err := mo.Observe(target, dom.MutationObserverInit{ChildList: true, Subtree: subtree}); err != nil {
		return err
	}
	s.Defer(mo.Disconnect)
	return nil
}

// ObserveIntersections creates an intersection observer and registers its
// disconnect.
func (s *Scope) ObserveIntersections(doc *dom.Document, opts dom.IntersectionObserverInit, cb dom.IntersectionCallback) (*dom.IntersectionObserver, error) {
	io, err := doc.NewIntersectionObserver(cb, opts)
	if err != nil {
		return nil, err
	}
	s.Defer(io.Disconnect)
	return io, nil
}

// Len returns the number of pending cleanups.
func (s *Scope) Len() int { return len(s.cleanups) }

// Disposed reports whether Dispose has run.
func (s *Scope) Disposed() bool { return s.disposed }

// Dispose runs every cleanup in reverse registration order.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

// Disposer returns Dispose as a Disposer.
func (s *Scope) Disposer() Disposer { return s.Dispose }
