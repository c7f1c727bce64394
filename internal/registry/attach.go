package registry

import (
	"context"
	"fmt"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// Start attaches every registered behavior to the matching roots in doc,
// then observes the body so that inserted roots are attached and removed
// roots are disposed. Attach failures are isolated: they are logged,
// counted, and returned together, and never stop other behaviors. A
// registry whose Document is set after Start is running even when Start
// reported attach failures.
func (r *Registry) Start(ctx context.Context, doc *dom.Document) error {
	if r.doc != nil {
		return canonerrors.NewValidationError("ERR_ALREADY_STARTED", "registry is already bound to a document")
	}
	body := doc.Body()
	if body == nil {
		return canonerrors.NewLookupError("body")
	}
	r.ctx = ctx
	r.doc = doc

	for _, name := range behavior.Events {
		r.teardown = append(r.teardown, doc.AddEventListener(name, r.onCustomEvent))
	}

	collector := r.Scan(body)

	r.observer = doc.NewMutationObserver(r.onMutations)
	if err := r.observer.Observe(body, dom.MutationObserverInit{ChildList: true, Subtree: true}); err != nil {
		collector.AddError(err)
	}
	return collector.Err()
}

// Scan attaches behaviors to scope and its descendants. Roots that already
// hold an attachment for a marker are skipped.
func (r *Registry) Scan(scope *dom.Element) *canonerrors.ErrorCollector {
	collector := canonerrors.NewErrorCollector()
	if scope == nil {
		return collector
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	for _, marker := range r.Markers() {
		b, ok := r.Get(marker)
		if !ok {
			continue
		}
		var roots []*dom.Element
		if scope.HasAttribute(string(marker)) {
			roots = append(roots, scope)
		}
		roots = append(roots, scope.QuerySelectorAll(marker.Selector())...)

		for _, root := range roots {
			if r.Attached(root, marker) {
				continue
			}
			if err := r.attachOne(ctx, b, root); err != nil {
				collector.Add(canonerrors.AttachError{Marker: string(marker), RootID: root.ID(), Err: err})
			}
		}
	}
	return collector
}

func (r *Registry) attachOne(ctx context.Context, b behavior.Behavior, root *dom.Element) (err error) {
	marker := b.Marker()
	defer func() {
		if p := recover(); p != nil {
			err = canonerrors.NewInternalError(canonerrors.ErrCodeAttachPanic,
				fmt.Sprintf("attach panicked: %v", p), nil)
		}
		if err != nil {
			r.logger.Warn(ctx, err, "behavior failed to attach",
				"marker", string(marker), "root", root.ID())
			r.recorder.AttachFailed(string(marker))
			r.publish(Event{Type: EventTypeFailed, Marker: marker, RootID: root.ID(), Err: err})
		}
	}()

	dispose, err := b.Attach(ctx, root)
	if err != nil {
		if dispose != nil {
			dispose()
		}
		return err
	}
	if dispose == nil {
		dispose = func() {}
	}

	if _, seen := r.attachments[root]; !seen {
		r.roots = append(r.roots, root)
	}
	r.attachments[root] = append(r.attachments[root], attachment{marker: marker, dispose: dispose})
	r.recorder.AttachSucceeded(string(marker))
	r.logger.Debug(ctx, "behavior attached", "marker", string(marker), "root", root.ID())
	r.publish(Event{Type: EventTypeAttached, Marker: marker, RootID: root.ID()})
	return nil
}

// Attached reports whether marker holds a live attachment on root.
func (r *Registry) Attached(root *dom.Element, marker behavior.Marker) bool {
	for _, a := range r.attachments[root] {
		if a.marker == marker {
			return true
		}
	}
	return false
}

// ActiveRoots returns the number of roots holding at least one attachment.
func (r *Registry) ActiveRoots() int { return len(r.roots) }

// Document returns the document bound by Start, or nil.
func (r *Registry) Document() *dom.Document { return r.doc }

// DisposeRoot runs the disposers for root, newest first.
func (r *Registry) DisposeRoot(root *dom.Element) {
	list, ok := r.attachments[root]
	if !ok {
		return
	}
	delete(r.attachments, root)
	for i, el := range r.roots {
		if el == root {
			r.roots = append(r.roots[:i], r.roots[i+1:]...)
			break
		}
	}
	for i := len(list) - 1; i >= 0; i-- {
		a := list[i]
		a.dispose()
		r.recorder.Disposed(string(a.marker))
		r.publish(Event{Type: EventTypeDisposed, Marker: a.marker, RootID: root.ID()})
	}
}

// Dispose tears down every attachment and stops observing the document.
func (r *Registry) Dispose() {
	if r.observer != nil {
		r.observer.Disconnect()
		r.observer = nil
	}
	for i := len(r.teardown) - 1; i >= 0; i-- {
		r.teardown[i]()
	}
	r.teardown = nil
	roots := append([]*dom.Element(nil), r.roots...)
	for i := len(roots) - 1; i >= 0; i-- {
		r.DisposeRoot(roots[i])
	}
	r.doc = nil
}

func (r *Registry) onMutations(records []dom.MutationRecord, _ *dom.MutationObserver) {
	for _, rec := range records {
		for _, removed := range rec.Removed {
			r.disposeDetached(removed)
		}
	}
	for _, rec := range records {
		for _, added := range rec.Added {
			if !added.IsConnected() {
				continue
			}
			collector := r.Scan(added)
			if collector.HasErrors() {
				r.logger.Debug(r.ctx, "attach errors after insertion", "count", len(collector.GetErrors()))
			}
		}
	}
}

// disposeDetached disposes every attached root inside removed that is no
// longer in the document. Moved nodes stay attached.
func (r *Registry) disposeDetached(removed *dom.Element) {
	roots := append([]*dom.Element(nil), r.roots...)
	for _, root := range roots {
		if removed.Contains(root) && !root.IsConnected() {
			r.DisposeRoot(root)
		}
	}
}

func (r *Registry) onCustomEvent(ev *dom.Event) {
	r.recorder.EventEmitted(ev.Type)
	rootID := ""
	if ev.Target != nil {
		rootID = ev.Target.ID()
	}
	r.publish(Event{Type: EventTypeEmitted, Name: ev.Type, RootID: rootID, Detail: ev.Detail})
}
