package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var user struct {
			ID       string   `json:"id"`
			Username string   `json:"username"`
			Name     string   `json:"name"`
			Email    string   `json:"email"`
			Roles    []string `json:"roles"`
		}
		if err := c.get(cmd.Context(), "/auth/me", &user); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:       %s\n", user.ID)
		fmt.Fprintf(out, "username: %s\n", user.Username)
		if user.Name != "" {
			fmt.Fprintf(out, "name:     %s\n", user.Name)
		}
		if user.Email != "" {
			fmt.Fprintf(out, "email:    %s\n", user.Email)
		}
		if len(user.Roles) > 0 {
			fmt.Fprintf(out, "roles:    %s\n", strings.Join(user.Roles, ", "))
		}
		return nil
	},
}
