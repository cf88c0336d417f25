package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	roleSetMenus []string
	roleSetPerms []string
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Inspect and edit role grants",
}

type grantRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Depth   int    `json:"depth"`
	Checked bool   `json:"checked"`
}

type grantResponse struct {
	Rows        []grantRow `json:"rows"`
	SelectedIDs []string   `json:"selected_ids"`
}

var roleMenusCmd = &cobra.Command{
	Use:   "menus <role-id>",
	Short: "Show a role's menu grants, or replace them with --set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/roles/" + args[0] + "/menus"
		if cmd.Flags().Changed("set") {
			return setGrants(cmd, path, roleSetMenus)
		}
		return showGrants(cmd, path)
	},
}

var rolePermsCmd = &cobra.Command{
	Use:   "perms <role-id>",
	Short: "Show a role's permission grants, or replace them with --set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/roles/" + args[0] + "/permissions"
		if cmd.Flags().Changed("set") {
			return setGrants(cmd, path, roleSetPerms)
		}
		return showGrants(cmd, path)
	},
}

func showGrants(cmd *cobra.Command, path string) error {
	c := newClient()
	var resp grantResponse
	if err := c.get(cmd.Context(), path, &resp); err != nil {
		return err
	}
	printGrants(cmd.OutOrStdout(), resp)
	return nil
}

func setGrants(cmd *cobra.Command, path string, ids []string) error {
	c := newClient()
	body := map[string][]string{"ids": splitIDs(ids)}
	if err := c.put(cmd.Context(), path, body, nil); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "saved")
	return showGrants(cmd, path)
}

func printGrants(w io.Writer, resp grantResponse) {
	for _, row := range resp.Rows {
		mark := " "
		if row.Checked {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s%s  (%s)\n", mark, strings.Repeat("  ", row.Depth), row.Name, row.ID)
	}
}

// splitIDs accepts both repeated flags and comma-separated values.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
	}
	return ids
}

func init() {
	roleMenusCmd.Flags().StringSliceVar(&roleSetMenus, "set", nil, "replace the role's menu grants with these ids")
	rolePermsCmd.Flags().StringSliceVar(&roleSetPerms, "set", nil, "replace the role's permission grants with these ids")
	roleCmd.AddCommand(roleMenusCmd)
	roleCmd.AddCommand(rolePermsCmd)
}
