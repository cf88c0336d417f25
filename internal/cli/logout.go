package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session and forget the cached token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		if c.token != "" {
			// Best effort: the cached token is removed even when the
			// gateway call fails.
			if err := c.post(cmd.Context(), "/auth/logout", nil, nil); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		}
		if err := clearToken(); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}
