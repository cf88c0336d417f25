// Package directory exposes the organizational hierarchies of the upstream
// API: organizations, their departments, and the navigation menu tree. Trees
// arrive nested from the upstream, are structurally validated once at
// ingestion, and are sorted by sort_order before anything walks them.
package directory

import (
	"sort"

	"admin-gateway/pkg/tree"
)

// Organization is one node of the organization forest.
type Organization struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Code      string         `json:"code,omitempty"`
	SortOrder int            `json:"sort_order"`
	Children  []Organization `json:"children,omitempty"`
}

// Department is one node of an organization's department forest.
type Department struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	LeaderID  string       `json:"leader_id,omitempty"`
	SortOrder int          `json:"sort_order"`
	Children  []Department `json:"children,omitempty"`
}

// Menu is one node of the navigation menu forest. Path and Icon are only set
// on leaf entries that map to a screen.
type Menu struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int    `json:"sort_order"`
	Children  []Menu `json:"children,omitempty"`
}

// Accessors for the tree engine. The Children funcs tolerate absent children
// fields because a nil slice walks as empty.
var (
	OrganizationAccess = tree.Access[Organization]{
		ID:       func(o Organization) string { return o.ID },
		Children: func(o Organization) []Organization { return o.Children },
	}
	DepartmentAccess = tree.Access[Department]{
		ID:       func(d Department) string { return d.ID },
		Children: func(d Department) []Department { return d.Children },
	}
	MenuAccess = tree.Access[Menu]{
		ID:       func(m Menu) string { return m.ID },
		Children: func(m Menu) []Menu { return m.Children },
	}
)

// sortForest orders every sibling group by sort_order ascending, in place.
// The sort is stable so upstream order breaks ties.
func sortForest[T any](forest []T, children func(*T) []T, order func(T) int) {
	sort.SliceStable(forest, func(i, j int) bool {
		return order(forest[i]) < order(forest[j])
	})
	for i := range forest {
		sortForest(children(&forest[i]), children, order)
	}
}

func sortOrganizations(forest []Organization) {
	sortForest(forest,
		func(o *Organization) []Organization { return o.Children },
		func(o Organization) int { return o.SortOrder })
}

func sortDepartments(forest []Department) {
	sortForest(forest,
		func(d *Department) []Department { return d.Children },
		func(d Department) int { return d.SortOrder })
}

func sortMenus(forest []Menu) {
	sortForest(forest,
		func(m *Menu) []Menu { return m.Children },
		func(m Menu) int { return m.SortOrder })
}
