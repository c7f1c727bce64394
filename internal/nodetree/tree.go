// Package nodetree is the layout-builder node model: a flat arena of nodes
// keyed by id with an incrementally maintained children index.
package nodetree

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// Node is one entry of the arena. Parent is uuid.Nil for roots.
type Node struct {
	ID     uuid.UUID
	Kind   Kind
	Name   string
	Parent uuid.UUID
	Props  map[string]any
}

// Tree holds nodes and their ordering. It is safe for concurrent use.
type Tree struct {
	nodes    map[uuid.UUID]*Node
	children map[uuid.UUID][]uuid.UUID
	mutex    sync.RWMutex

	newID func() uuid.UUID
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{
		nodes:    make(map[uuid.UUID]*Node),
		children: make(map[uuid.UUID][]uuid.UUID),
		newID:    uuid.New,
	}
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.nodes)
}

// Get returns a copy of the node with id.
func (t *Tree) Get(id uuid.UUID) (Node, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Roots returns the root ids in order.
func (t *Tree) Roots() []uuid.UUID { return t.Children(uuid.Nil) }

// Children returns the ordered child ids of parent. uuid.Nil lists roots.
func (t *Tree) Children(parent uuid.UUID) []uuid.UUID {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return append([]uuid.UUID(nil), t.children[parent]...)
}

// Index returns the position of id among its siblings, or -1.
func (t *Tree) Index(id uuid.UUID) int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	return indexOf(t.children[n.Parent], id)
}

// AddSlot appends a named root slot.
func (t *Tree) AddSlot(name string) uuid.UUID {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	id := t.newID()
	t.nodes[id] = &Node{ID: id, Kind: KindSlot, Name: name}
	t.children[uuid.Nil] = append(t.children[uuid.Nil], id)
	return id
}

// Insert places a new node of kind under parent at index. Index is
// clamped to [0, len(children)].
func (t *Tree) Insert(parent uuid.UUID, kind Kind, index int) (uuid.UUID, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if err := t.checkPlacement(parent, kind); err != nil {
		return uuid.Nil, err
	}
	id := t.newID()
	t.nodes[id] = &Node{ID: id, Kind: kind, Parent: parent}
	t.children[parent] = insertAt(t.children[parent], id, index)
	return id, nil
}

// Move re-parents id under parent at index. Moving a node into its own
// subtree is rejected.
func (t *Tree) Move(id, parent uuid.UUID, index int) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return notFound(id)
	}
	if n.Kind == KindSlot {
		return canonerrors.NewValidationError(canonerrors.ErrCodeInvalidPlacement, "slots cannot be moved").
			WithContext("node", id.String())
	}
	for cur := parent; cur != uuid.Nil; cur = t.nodes[cur].Parent {
		if cur == id {
			return canonerrors.NewValidationError(canonerrors.ErrCodeCycle, "cannot move a node into its own subtree").
				WithContext("node", id.String()).
				WithContext("parent", parent.String())
		}
		if _, ok := t.nodes[cur]; !ok {
			break
		}
	}
	if err := t.checkPlacement(parent, n.Kind); err != nil {
		return err
	}

	t.children[n.Parent] = removeID(t.children[n.Parent], id)
	if len(t.children[n.Parent]) == 0 && n.Parent != uuid.Nil {
		delete(t.children, n.Parent)
	}
	n.Parent = parent
	t.children[parent] = insertAt(t.children[parent], id, index)
	return nil
}

// Remove deletes id and every descendant, returning the removed ids with
// id first.
func (t *Tree) Remove(id uuid.UUID) ([]uuid.UUID, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return nil, notFound(id)
	}
	removed := t.collect(id, nil)
	t.children[n.Parent] = removeID(t.children[n.Parent], id)
	for _, rid := range removed {
		delete(t.nodes, rid)
		delete(t.children, rid)
	}
	return removed, nil
}

// Descendants returns every node below id in depth-first order.
func (t *Tree) Descendants(id uuid.UUID) []uuid.UUID {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	return t.collect(id, nil)[1:]
}

// SetProp stores a property on id.
func (t *Tree) SetProp(id uuid.UUID, key string, value any) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return notFound(id)
	}
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[key] = value
	return nil
}

func (t *Tree) collect(id uuid.UUID, out []uuid.UUID) []uuid.UUID {
	out = append(out, id)
	for _, child := range t.children[id] {
		out = t.collect(child, out)
	}
	return out
}

func (t *Tree) checkPlacement(parent uuid.UUID, kind Kind) error {
	if !kind.Known() || kind == KindSlot {
		return canonerrors.NewValidationError(canonerrors.ErrCodeInvalidPlacement,
			fmt.Sprintf("unknown block kind %q", kind))
	}
	if parent == uuid.Nil {
		return canonerrors.NewValidationError(canonerrors.ErrCodeInvalidPlacement,
			"blocks must be placed inside a slot or container")
	}
	p, ok := t.nodes[parent]
	if !ok {
		return notFound(parent)
	}
	if !CanAccept(p.Kind, kind.Category()) {
		return canonerrors.NewValidationError(canonerrors.ErrCodeInvalidPlacement,
			fmt.Sprintf("%s cannot contain %s", p.Kind, kind)).
			WithContext("parent", parent.String())
	}
	return nil
}

func notFound(id uuid.UUID) error {
	return canonerrors.NewValidationError(canonerrors.ErrCodeNodeNotFound, "node not found").
		WithContext("node", id.String())
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func insertAt(ids []uuid.UUID, id uuid.UUID, index int) []uuid.UUID {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	ids = append(ids, uuid.Nil)
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	i := indexOf(ids, id)
	if i < 0 {
		return ids
	}
	return append(ids[:i], ids[i+1:]...)
}
