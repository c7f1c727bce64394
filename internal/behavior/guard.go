package behavior

import "github.com/conneroisu/canon/internal/dom"

// Guard is the name of an attribute that records that a behavior, or one of
// its sub-behaviors, has been wired onto a root.
type Guard string

const attachedValue = "1"

// TryAttach sets the guard and returns true on the first call for root. It
// returns false when the guard is already set.
func (g Guard) TryAttach(root *dom.Element) bool {
	if root == nil || g.Attached(root) {
		return false
	}
	root.SetAttribute(string(g), attachedValue)
	return true
}

// Attached reports whether the guard is set on root.
func (g Guard) Attached(root *dom.Element) bool {
	return root != nil && root.GetAttribute(string(g)) == attachedValue
}

// Release clears the guard so the behavior can attach again.
func (g Guard) Release(root *dom.Element) {
	if root != nil {
		root.RemoveAttribute(string(g))
	}
}
