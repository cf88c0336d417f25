// Package tree implements the hierarchy engine behind the directory and
// assignment services: depth-first flattening of nested entity forests for
// tabular display, id collection for seeding selections, and one-time
// structural validation of forests received from the upstream.
//
// The engine is generic over the node type. Callers describe their type with
// an Access value instead of converting to an intermediate representation, so
// a forest decoded straight from upstream JSON can be walked in place. All
// functions are pure: they never mutate the forest and never sort it (sibling
// order is display order; callers sort before walking).
package tree

import (
	dErrors "admin-gateway/pkg/domainerrors"
)

// Access describes how to read a node type. A nil slice from Children is
// treated as no children, which makes forests with absent "children" fields
// safe to walk without normalization.
type Access[T any] struct {
	ID       func(T) string
	Children func(T) []T
}

// Row is one entry of a flattened forest. Depth is zero for roots and is used
// by callers purely for visual indentation.
type Row[T any] struct {
	Node  T
	Depth int
}

// RenderedRow is a Row annotated with the node's selection state.
type RenderedRow[T any] struct {
	Node    T
	Depth   int
	Checked bool
}

// Flatten walks the forest depth-first in pre-order and returns one row per
// node. A child's row appears immediately after its parent's row and before
// any later sibling's subtree, so rendering the rows in order nests children
// under their parent. The result always holds exactly as many rows as the
// forest has nodes.
func Flatten[T any](a Access[T], forest []T) []Row[T] {
	rows := make([]Row[T], 0, len(forest))
	for _, root := range forest {
		rows = flattenInto(a, rows, root, 0)
	}
	return rows
}

func flattenInto[T any](a Access[T], rows []Row[T], node T, depth int) []Row[T] {
	rows = append(rows, Row[T]{Node: node, Depth: depth})
	for _, child := range a.Children(node) {
		rows = flattenInto(a, rows, child, depth+1)
	}
	return rows
}

// CollectIDs returns the ids of every node reachable from any forest root.
// Duplicate ids collapse under set semantics; use Validate to reject them.
func CollectIDs[T any](a Access[T], forest []T) Selection {
	sel := NewSelection()
	for _, root := range forest {
		collectInto(a, sel, root)
	}
	return sel
}

func collectInto[T any](a Access[T], sel Selection, node T) {
	sel.Add(a.ID(node))
	for _, child := range a.Children(node) {
		collectInto(a, sel, child)
	}
}

// Render composes Flatten with a membership check against sel, producing the
// rows a selectable tree view needs. A nil selection renders every row
// unchecked.
func Render[T any](a Access[T], forest []T, sel Selection) []RenderedRow[T] {
	flat := Flatten(a, forest)
	rows := make([]RenderedRow[T], len(flat))
	for i, r := range flat {
		rows[i] = RenderedRow[T]{
			Node:    r.Node,
			Depth:   r.Depth,
			Checked: sel.Has(a.ID(r.Node)),
		}
	}
	return rows
}

// Count returns the total number of nodes in the forest.
func Count[T any](a Access[T], forest []T) int {
	n := 0
	for _, root := range forest {
		n += countFrom(a, root)
	}
	return n
}

func countFrom[T any](a Access[T], node T) int {
	n := 1
	for _, child := range a.Children(node) {
		n += countFrom(a, child)
	}
	return n
}

// Validate walks the forest once and rejects structures the engine must not
// ingest: empty ids, ids appearing more than once anywhere in the forest, and
// cycles (a node reachable from itself). The upstream wire format cannot
// express a cycle through nesting alone, but backends assembling trees from
// adjacency rows can produce one, and a cycle would otherwise walk forever.
func Validate[T any](a Access[T], forest []T) error {
	seen := make(map[string]struct{})
	onPath := make(map[string]struct{})
	for _, root := range forest {
		if err := validateFrom(a, root, seen, onPath); err != nil {
			return err
		}
	}
	return nil
}

func validateFrom[T any](a Access[T], node T, seen, onPath map[string]struct{}) error {
	id := a.ID(node)
	if id == "" {
		return dErrors.New(dErrors.CodeSchema, "tree node has an empty id")
	}
	if _, ok := onPath[id]; ok {
		return dErrors.Newf(dErrors.CodeSchema, "tree contains a cycle through node %q", id)
	}
	if _, ok := seen[id]; ok {
		return dErrors.Newf(dErrors.CodeSchema, "tree contains duplicate node id %q", id)
	}
	seen[id] = struct{}{}
	onPath[id] = struct{}{}
	for _, child := range a.Children(node) {
		if err := validateFrom(a, child, seen, onPath); err != nil {
			return err
		}
	}
	delete(onPath, id)
	return nil
}
