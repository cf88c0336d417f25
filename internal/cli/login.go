package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the gateway and cache the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		var result struct {
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expires_at"`
			User      struct {
				Username string `json:"username"`
				Name     string `json:"name"`
			} `json:"user"`
		}
		body := map[string]string{
			"username": loginUsername,
			"password": loginPassword,
		}
		if err := c.post(cmd.Context(), "/auth/login", body, &result); err != nil {
			return err
		}
		if err := saveToken(result.Token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (session expires %s)\n",
			result.User.Username, result.ExpiresAt.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")
}
