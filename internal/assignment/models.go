// Package assignment manages what a role is granted: which menu entries it
// can see and which permissions it holds. Both grants are edited against a
// tree view of the full catalog with the role's current grants pre-checked.
package assignment

import (
	"admin-gateway/internal/directory"
	"admin-gateway/pkg/tree"
)

// Permission is one node of the permission catalog forest. Non-leaf nodes
// group related actions and carry no Action of their own.
type Permission struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Action    string       `json:"action,omitempty"`
	SortOrder int          `json:"sort_order"`
	Children  []Permission `json:"children,omitempty"`
}

var PermissionAccess = tree.Access[Permission]{
	ID:       func(p Permission) string { return p.ID },
	Children: func(p Permission) []Permission { return p.Children },
}

// MenuAssignment is an editable snapshot of a role's menu grants: the full
// menu catalog plus the role's current selection. The selection never holds
// an id outside the forest; grants referencing menus that no longer exist are
// dropped at load time.
type MenuAssignment struct {
	Forest    []directory.Menu
	Selection tree.Selection
}

// Rows renders the catalog with each row's checked state, in display order.
func (a *MenuAssignment) Rows() []tree.RenderedRow[directory.Menu] {
	return tree.Render(directory.MenuAccess, a.Forest, a.Selection)
}

// Toggle flips exactly one node's membership. Ancestors and descendants are
// untouched: checking a parent does not check its children.
func (a *MenuAssignment) Toggle(nodeID string) {
	a.Selection.Toggle(nodeID)
}

// PermissionAssignment is the permission-catalog counterpart of
// MenuAssignment.
type PermissionAssignment struct {
	Forest    []Permission
	Selection tree.Selection
}

func (a *PermissionAssignment) Rows() []tree.RenderedRow[Permission] {
	return tree.Render(PermissionAccess, a.Forest, a.Selection)
}

func (a *PermissionAssignment) Toggle(nodeID string) {
	a.Selection.Toggle(nodeID)
}
