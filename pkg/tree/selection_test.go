package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"admin-gateway/pkg/tree"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	sel := tree.NewSelection("a", "b")
	before := sel.Clone()

	sel.Toggle("c")
	sel.Toggle("c")

	assert.Equal(t, before, sel)
}

func TestToggleChangesExactlyOneID(t *testing.T) {
	sel := tree.NewSelection("a", "b")

	sel.Toggle("b")
	assert.Equal(t, []string{"a"}, sel.IDs(), "removes a present id")

	sel.Toggle("z")
	assert.Equal(t, []string{"a", "z"}, sel.IDs(), "adds an absent id")
}

func TestToggleDoesNotCascade(t *testing.T) {
	// Checking a child never checks its parent; the persisted assignment
	// semantics allow a checked child under an unchecked parent.
	forest := []node{n("parent", n("child"))}
	sel := tree.NewSelection()

	sel.Toggle("child")

	rows := tree.Render(access, forest, sel)
	assert.False(t, rows[0].Checked, "parent stays unchecked")
	assert.True(t, rows[1].Checked)
}

func TestRetainDropsStaleIDs(t *testing.T) {
	// Ids selected against a previous tree snapshot must not survive a
	// reload that no longer contains them.
	sel := tree.NewSelection("keep", "stale1", "stale2")
	fresh := tree.CollectIDs(access, []node{n("root", n("keep"))})

	dropped := sel.Retain(fresh)

	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"keep"}, sel.IDs())
}

func TestCloneIsIndependent(t *testing.T) {
	sel := tree.NewSelection("a")
	cp := sel.Clone()

	cp.Toggle("b")

	assert.Equal(t, []string{"a"}, sel.IDs())
	assert.Equal(t, []string{"a", "b"}, cp.IDs())
}

func TestHasOnNilSelection(t *testing.T) {
	var sel tree.Selection
	assert.False(t, sel.Has("a"))
	assert.Equal(t, 0, sel.Len())
}
