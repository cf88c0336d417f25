package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"admin-gateway/internal/directory"
	"admin-gateway/pkg/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Inspect the directory hierarchies",
}

var treeOrgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "Print the organization tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var resp struct {
			Tree []directory.Organization `json:"tree"`
		}
		if err := c.get(cmd.Context(), "/directory/organizations/tree", &resp); err != nil {
			return err
		}
		for _, row := range tree.Flatten(directory.OrganizationAccess, resp.Tree) {
			printNode(cmd.OutOrStdout(), row.Depth, row.Node.ID, row.Node.Name, "")
		}
		return nil
	},
}

var treeDeptsCmd = &cobra.Command{
	Use:   "depts <org-id>",
	Short: "Print the department tree of one organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var resp struct {
			Tree []directory.Department `json:"tree"`
		}
		path := "/directory/organizations/" + args[0] + "/departments/tree"
		if err := c.get(cmd.Context(), path, &resp); err != nil {
			return err
		}
		for _, row := range tree.Flatten(directory.DepartmentAccess, resp.Tree) {
			printNode(cmd.OutOrStdout(), row.Depth, row.Node.ID, row.Node.Name, "")
		}
		return nil
	},
}

var treeMenusCmd = &cobra.Command{
	Use:   "menus",
	Short: "Print the navigation menu tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var resp struct {
			Tree []directory.Menu `json:"tree"`
		}
		if err := c.get(cmd.Context(), "/directory/menus/tree", &resp); err != nil {
			return err
		}
		for _, row := range tree.Flatten(directory.MenuAccess, resp.Tree) {
			printNode(cmd.OutOrStdout(), row.Depth, row.Node.ID, row.Node.Name, row.Node.Path)
		}
		return nil
	},
}

func printNode(w io.Writer, depth int, id, name, path string) {
	indent := strings.Repeat("  ", depth)
	if path != "" {
		fmt.Fprintf(w, "%s%s  (%s, %s)\n", indent, name, id, path)
		return
	}
	fmt.Fprintf(w, "%s%s  (%s)\n", indent, name, id)
}

func init() {
	treeCmd.AddCommand(treeOrgsCmd)
	treeCmd.AddCommand(treeDeptsCmd)
	treeCmd.AddCommand(treeMenusCmd)
}
