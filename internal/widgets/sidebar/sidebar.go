// Package sidebar wires collapse and pin toggles onto the [data-sidebar]
// root and persists both flags through a key-value store.
package sidebar

import (
	"context"
	"strings"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/state"
	"github.com/conneroisu/canon/internal/storage"
)

// Storage keys. StateKey holds "true" when the sidebar is open.
const (
	StateKey  = "sidebar:state"
	PinnedKey = "sidebar-pinned"
)

// ShortcutKey toggles the sidebar together with Ctrl or Meta.
const ShortcutKey = "b"

const guard behavior.Guard = "data-sidebar-attached"

// Options configures the behavior. A nil Store keeps state in memory.
type Options struct {
	Store  storage.Store
	Logger logging.Logger
}

// Behavior is the sidebar behavior.
type Behavior struct {
	store  storage.Store
	logger logging.Logger
}

// New creates the sidebar behavior.
func New(opts Options) *Behavior {
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewTestLogger()
	}
	return &Behavior{store: opts.Store, logger: opts.Logger.WithComponent("sidebar")}
}

// Marker implements behavior.Behavior.
func (b *Behavior) Marker() behavior.Marker { return behavior.MarkerSidebar }

// Attach implements behavior.Behavior. Toggles may live anywhere in the
// document, such as a page header.
func (b *Behavior) Attach(ctx context.Context, root *dom.Element) (behavior.Disposer, error) {
	if !guard.TryAttach(root) {
		return nil, nil
	}
	scope := behavior.NewScope()
	scope.Defer(func() { guard.Release(root) })

	s := &Sidebar{root: root, store: b.store, logger: b.logger, ctx: ctx}
	s.restore()

	doc := root.Document()
	for _, toggle := range doc.QuerySelectorAll("[data-sidebar-toggle]") {
		if err := scope.Listen(toggle, "click", func(*dom.Event) { s.Toggle() }); err != nil {
			scope.Dispose()
			return nil, err
		}
	}
	for _, pin := range doc.QuerySelectorAll("[data-sidebar-pin]") {
		if err := scope.Listen(pin, "click", func(*dom.Event) { s.SetPinned(!s.Pinned()) }); err != nil {
			scope.Dispose()
			return nil, err
		}
	}
	scope.Defer(doc.AddEventListener("keydown", func(ev *dom.Event) {
		if (ev.CtrlKey || ev.MetaKey) && strings.EqualFold(ev.Key, ShortcutKey) {
			ev.PreventDefault()
			s.Toggle()
		}
	}))
	return scope.Disposer(), nil
}

// Sidebar reads and writes sidebar state.
type Sidebar struct {
	root   *dom.Element
	store  storage.Store
	logger logging.Logger
	ctx    context.Context
}

// Controller returns a controller for root backed by store.
func Controller(root *dom.Element, store storage.Store) *Sidebar {
	return &Sidebar{root: root, store: store, logger: logging.NewTestLogger(), ctx: context.Background()}
}

// Collapsed reports whether data-collapsed is present.
func (s *Sidebar) Collapsed() bool { return state.Flag(s.root, "data-collapsed") }

// Pinned reports data-pinned="true".
func (s *Sidebar) Pinned() bool { return state.Bool(s.root, "data-pinned", false) }

// Toggle flips the collapsed state.
func (s *Sidebar) Toggle() { s.SetCollapsed(!s.Collapsed()) }

// SetCollapsed writes and persists the collapsed state.
func (s *Sidebar) SetCollapsed(collapsed bool) {
	s.applyCollapsed(collapsed)
	s.persist(StateKey, !collapsed)
	s.emit()
}

// SetPinned writes and persists the pinned state.
func (s *Sidebar) SetPinned(pinned bool) {
	s.applyPinned(pinned)
	s.persist(PinnedKey, pinned)
	s.emit()
}

func (s *Sidebar) applyCollapsed(collapsed bool) {
	if collapsed {
		s.root.SetAttribute("data-collapsed", "true")
	} else {
		s.root.RemoveAttribute("data-collapsed")
	}
	for _, toggle := range s.root.Document().QuerySelectorAll("[data-sidebar-toggle]") {
		state.SetBool(toggle, "aria-expanded", !collapsed)
	}
}

func (s *Sidebar) applyPinned(pinned bool) {
	state.SetBool(s.root, "data-pinned", pinned)
	for _, pin := range s.root.Document().QuerySelectorAll("[data-sidebar-pin]") {
		state.SetBool(pin, "aria-pressed", pinned)
	}
}

// restore applies stored state. Values other than "true" and "false" are
// ignored and the rendered state stands.
func (s *Sidebar) restore() {
	if v, ok := s.store.Get(StateKey); ok && (v == "true" || v == "false") {
		s.applyCollapsed(v == "false")
	}
	if v, ok := s.store.Get(PinnedKey); ok && (v == "true" || v == "false") {
		s.applyPinned(v == "true")
	}
}

func (s *Sidebar) persist(key string, v bool) {
	value := "false"
	if v {
		value = "true"
	}
	if err := s.store.Set(key, value); err != nil {
		s.logger.Warn(s.ctx, err, "failed to persist sidebar state", "key", key)
	}
}

func (s *Sidebar) emit() {
	behavior.Emit(s.root, behavior.EventSidebarChange, map[string]any{
		"collapsed": s.Collapsed(),
		"pinned":    s.Pinned(),
	})
}
