package nodetree

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

const propItemID = "itemId"

// Item is one entry of a tracked list.
type Item struct {
	ID   string
	Kind Kind
}

// Layout mirrors ordered item lists as a tree: every list is a slot and
// every item a block inside it. Items are addressed by the ids the page
// gives them, so drag and drop reorders can be replayed onto the model.
type Layout struct {
	tree *Tree

	slots map[string]uuid.UUID
	items map[string]map[string]uuid.UUID
	mutex sync.RWMutex
}

// NewLayout creates an empty layout.
func NewLayout() *Layout {
	return &Layout{
		tree:  New(),
		slots: make(map[string]uuid.UUID),
		items: make(map[string]map[string]uuid.UUID),
	}
}

// Tree returns the tree behind the layout.
func (l *Layout) Tree() *Tree { return l.tree }

// Lists returns the tracked list names, sorted.
func (l *Layout) Lists() []string {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return slices.Sorted(maps.Keys(l.slots))
}

// Track registers list with items in order, replacing any earlier state
// for list. Items without a kind become cards.
func (l *Layout) Track(list string, items []Item) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if old, ok := l.slots[list]; ok {
		if _, err := l.tree.Remove(old); err != nil {
			return err
		}
	}
	slot := l.tree.AddSlot(list)
	ids := make(map[string]uuid.UUID, len(items))
	for i, item := range items {
		kind := item.Kind
		if kind == "" {
			kind = KindCard
		}
		id, err := l.tree.Insert(slot, kind, i)
		if err != nil {
			_, _ = l.tree.Remove(slot)
			delete(l.slots, list)
			delete(l.items, list)
			return err
		}
		if err := l.tree.SetProp(id, propItemID, item.ID); err != nil {
			return err
		}
		ids[item.ID] = id
	}
	l.slots[list] = slot
	l.items[list] = ids
	return nil
}

// Reorder places from at the position to holds, shifting the items
// between them. This is the model side of dropping from onto to.
func (l *Layout) Reorder(list, from, to string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	slot, ok := l.slots[list]
	if !ok {
		return canonerrors.NewValidationError(canonerrors.ErrCodeNodeNotFound, "list is not tracked").
			WithContext("list", list)
	}
	src, ok := l.items[list][from]
	if !ok {
		return itemNotFound(list, from)
	}
	dst, ok := l.items[list][to]
	if !ok {
		return itemNotFound(list, to)
	}
	if src == dst {
		return nil
	}
	// Move indexes into the siblings with src removed, where the original
	// index of dst lands src exactly on dst's old position either way.
	return l.tree.Move(src, slot, l.tree.Index(dst))
}

// Order returns the item ids of list in order.
func (l *Layout) Order(list string) []string {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	slot, ok := l.slots[list]
	if !ok {
		return nil
	}
	var out []string
	for _, id := range l.tree.Children(slot) {
		if n, ok := l.tree.Get(id); ok {
			if v, ok := n.Props[propItemID].(string); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// Export returns the layout as a versioned document.
func (l *Layout) Export(name string) Document { return l.tree.Export(name) }

func itemNotFound(list, item string) error {
	return canonerrors.NewValidationError(canonerrors.ErrCodeNodeNotFound, "item not found").
		WithContext("list", list).
		WithContext("item", item)
}
