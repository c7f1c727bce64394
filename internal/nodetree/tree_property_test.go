//go:build property

package nodetree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRemoveLeavesNoOrphans builds random trees, removes a random node, and
// checks that no surviving node points at a removed parent.
func TestRemoveLeavesNoOrphans(t *testing.T) {
	properties := gopter.NewProperties(nil)
	containers := []Kind{KindSection, KindCard, KindDialog}

	properties.Property("cascade removal", prop.ForAll(
		func(parents []int, victim int) bool {
			tree := New()
			ids := []uuid.UUID{tree.AddSlot("main")}
			for i, p := range parents {
				id, err := tree.Insert(ids[p%len(ids)], containers[i%len(containers)], i)
				if err != nil {
					return false
				}
				ids = append(ids, id)
			}
			total := tree.Len()
			target := ids[victim%len(ids)]
			removed, err := tree.Remove(target)
			if err != nil {
				return false
			}
			if tree.Len() != total-len(removed) {
				return false
			}
			gone := map[uuid.UUID]bool{}
			for _, id := range removed {
				gone[id] = true
			}
			for _, id := range ids {
				if gone[id] {
					continue
				}
				n, ok := tree.Get(id)
				if !ok || gone[n.Parent] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
