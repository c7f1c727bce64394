package nodetree

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CanonNode is the recursive export form of a node.
type CanonNode struct {
	ID       uuid.UUID      `json:"id"`
	Block    Kind           `json:"block"`
	Name     string         `json:"name,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Children []CanonNode    `json:"children"`
}

// Count returns the number of nodes in the subtree.
func (n CanonNode) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Depth returns the height of the subtree; a leaf has depth 1.
func (n CanonNode) Depth() int {
	deepest := 0
	for _, c := range n.Children {
		if d := c.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Find returns the node with id within the subtree.
func (n CanonNode) Find(id uuid.UUID) (CanonNode, bool) {
	if n.ID == id {
		return n, true
	}
	for _, c := range n.Children {
		if found, ok := c.Find(id); ok {
			return found, true
		}
	}
	return CanonNode{}, false
}

// Document is the persisted layout.
type Document struct {
	ID      uuid.UUID   `json:"id"`
	Layout  string      `json:"layout"`
	Version int         `json:"version"`
	Nodes   []CanonNode `json:"nodes"`
}

// TotalNodes counts every node in the document.
func (d Document) TotalNodes() int {
	total := 0
	for _, n := range d.Nodes {
		total += n.Count()
	}
	return total
}

// BuildTree exports the arena as nested nodes, children in index order.
func (t *Tree) BuildTree() []CanonNode {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.build(uuid.Nil)
}

func (t *Tree) build(parent uuid.UUID) []CanonNode {
	ids := t.children[parent]
	out := make([]CanonNode, 0, len(ids))
	for _, id := range ids {
		n := t.nodes[id]
		out = append(out, CanonNode{
			ID:       n.ID,
			Block:    n.Kind,
			Name:     n.Name,
			Props:    n.Props,
			Children: t.build(id),
		})
	}
	return out
}

// Export wraps the tree in a versioned document.
func (t *Tree) Export(layout string) Document {
	return Document{ID: uuid.New(), Layout: layout, Version: 1, Nodes: t.BuildTree()}
}

// MarshalJSON encodes the tree in its canonical nested form.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.BuildTree())
}

// FromDocument rebuilds an arena from a document, revalidating every
// placement.
func FromDocument(doc Document) (*Tree, error) {
	t := New()
	for _, root := range doc.Nodes {
		if err := t.load(uuid.Nil, root); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) load(parent uuid.UUID, n CanonNode) error {
	if parent != uuid.Nil || n.Block != KindSlot {
		if err := t.checkPlacement(parent, n.Block); err != nil {
			return err
		}
	}
	if _, dup := t.nodes[n.ID]; dup || n.ID == uuid.Nil {
		n.ID = t.newID()
	}
	t.nodes[n.ID] = &Node{ID: n.ID, Kind: n.Block, Name: n.Name, Parent: parent, Props: n.Props}
	t.children[parent] = append(t.children[parent], n.ID)
	for _, c := range n.Children {
		if err := t.load(n.ID, c); err != nil {
			return err
		}
	}
	return nil
}
