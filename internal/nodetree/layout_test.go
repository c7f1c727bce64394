package nodetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

func items(ids ...string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item{ID: id})
	}
	return out
}

func TestLayoutReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     []string
	}{
		{"forward", "a", "c", []string{"b", "c", "a", "d"}},
		{"backward", "d", "b", []string{"a", "d", "b", "c"}},
		{"adjacent", "b", "c", []string{"a", "c", "b", "d"}},
		{"onto self", "b", "b", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout()
			require.NoError(t, l.Track("tasks", items("a", "b", "c", "d")))
			require.NoError(t, l.Reorder("tasks", tt.from, tt.to))
			assert.Equal(t, tt.want, l.Order("tasks"))
		})
	}
}

func TestLayoutErrors(t *testing.T) {
	l := NewLayout()
	require.NoError(t, l.Track("tasks", items("a", "b")))

	for _, err := range []error{
		l.Reorder("missing", "a", "b"),
		l.Reorder("tasks", "x", "b"),
		l.Reorder("tasks", "a", "x"),
	} {
		require.Error(t, err)
		assert.True(t, canonerrors.IsType(err, canonerrors.ErrorTypeValidation))
	}

	err := l.Track("bad", []Item{{ID: "a"}, {ID: "b", Kind: KindSlot}})
	require.Error(t, err)
	assert.Equal(t, []string{"tasks"}, l.Lists())
}

func TestLayoutTrackReplaces(t *testing.T) {
	l := NewLayout()
	require.NoError(t, l.Track("tasks", items("a", "b")))
	require.NoError(t, l.Track("notes", []Item{{ID: "n", Kind: KindCallout}}))
	require.NoError(t, l.Track("tasks", items("c")))

	assert.Equal(t, []string{"notes", "tasks"}, l.Lists())
	assert.Equal(t, []string{"c"}, l.Order("tasks"))
	assert.Equal(t, 4, l.Tree().Len())

	doc := l.Export("board")
	assert.Equal(t, "board", doc.Layout)
	assert.Equal(t, 4, doc.TotalNodes())
	for _, slot := range doc.Nodes {
		assert.Equal(t, KindSlot, slot.Block)
		for _, c := range slot.Children {
			assert.NotEmpty(t, c.Props[propItemID])
		}
	}
}
