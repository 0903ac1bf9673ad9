package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := newGroupCmd("admin", "Admin authentication")
	cmd.AddCommand(newAdminLoginCmd())
	return cmd
}

func newAdminLoginCmd() *cobra.Command {
	var identity, password string
	var noSave bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate as an admin and store the token",
		Long: `Authenticate against /api/admins/auth-with-password.

On success the admin token is used by the client and saved to the active
profile (unless --no-save). On failure the stored token is left untouched.`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, password, "password", "Admin password")
			if err != nil {
				return err
			}
			client, resolved, err := getClient()
			if err != nil {
				return err
			}

			res := client.Admins().AuthWithPassword(cmdContext(cmd), identity, pw)
			if err := printResult(cmd, res); err != nil {
				return err
			}
			if noSave || res.StatusCode != http.StatusOK || res.Token() == "" {
				return nil
			}
			return saveToken(cmd, resolved, client.Token())
		}),
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted when omitted)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the token in the profile")
	_ = cmd.MarkFlagRequired("identity")
	return cmd
}
