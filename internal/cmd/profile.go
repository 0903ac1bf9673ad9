package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itzreqle/pocketbase-go-sdk/internal/config"
	"github.com/itzreqle/pocketbase-go-sdk/internal/outfmt"
	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

func newProfileCmd() *cobra.Command {
	cmd := newGroupCmd("profile", "Manage stored connection profiles", "profiles")
	cmd.AddCommand(newProfileLoginCmd())
	cmd.AddCommand(newProfileStatusCmd())
	cmd.AddCommand(newProfileLogoutCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileListCmd())
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func newProfileLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [name]",
		Short: "Save base URL, collection and token to the OS keyring",
		Long: strings.TrimSpace(`
Save PocketBase connection settings securely to your OS keyring.

Values come from --url, --collection and --token, falling back to
POCKETBASE_BASE_URL, POCKETBASE_COLLECTION and POCKETBASE_API_TOKEN (a .env
file or --env-file is loaded first). The token is optional. The saved profile
becomes the current one.
`),
		Example: strings.TrimSpace(`
  pb profile login --url http://127.0.0.1:8090 --collection users
  pb profile login staging --url https://pb.example.com -c posts --token "$TOKEN"
  pb profile login --env-file .env.staging
`),
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := flags.Profile
			if len(args) == 1 {
				name = args[0]
			}
			name = firstNonEmpty(name, "default")

			profile := config.Profile{
				BaseURL:    firstNonEmpty(flags.URL, os.Getenv(config.EnvBaseURL)),
				Collection: firstNonEmpty(flags.Collection, os.Getenv(config.EnvCollection)),
				Token:      firstNonEmpty(flags.Token, os.Getenv(config.EnvToken)),
			}
			if _, err := pocketbase.New(pocketbase.Config{
				BaseURL:      profile.BaseURL,
				Collection:   profile.Collection,
				Token:        profile.Token,
				RequireToken: flags.RequireToken,
			}); err != nil {
				return err
			}

			if err := config.SaveProfile(name, profile); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Profile %s saved.\n", name)
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", strings.TrimRight(profile.BaseURL, "/"))
			_, _ = fmt.Fprintf(out, "  Collection: %s\n", profile.Collection)
			if profile.Token != "" {
				_, _ = fmt.Fprintf(out, "  Token: %s\n", maskToken(profile.Token))
			}
			return nil
		}),
	}
}

func newProfileStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resolved connection settings",
		Long:  "Display the settings commands would use after merging profile, environment and flags. The token is masked.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			resolved, err := config.Resolve(newClientFactory().overrides)
			if err != nil {
				if pocketbase.IsConfigurationError(err) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"configured": false,
							"message":    err.Error(),
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not configured.")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'pb profile login' or set POCKETBASE_BASE_URL and POCKETBASE_COLLECTION.")
					return nil
				}
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"configured": true,
					"profile":    resolved.Profile,
					"base_url":   resolved.BaseURL,
					"collection": resolved.Collection,
					"token":      maskToken(resolved.Token),
				})
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Configured")
			_, _ = fmt.Fprintf(out, "  Profile: %s\n", resolved.Profile)
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", resolved.BaseURL)
			_, _ = fmt.Fprintf(out, "  Collection: %s\n", resolved.Collection)
			if resolved.Token != "" {
				_, _ = fmt.Fprintf(out, "  Token: %s\n", maskToken(resolved.Token))
			} else {
				_, _ = fmt.Fprintln(out, "  Token: (none)")
			}
			return nil
		}),
	}
}

func newProfileLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [name]",
		Short: "Remove a stored profile",
		Long:  "Delete a stored profile from the OS keyring. Defaults to the current profile.",
		Args:  cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := flags.Profile
			if len(args) == 1 {
				name = args[0]
			}
			name = config.ProfileName(name)

			if _, err := config.LoadProfile(name); err != nil {
				if errors.Is(err, config.ErrProfileNotFound) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No profile named %s.\n", name)
					return nil
				}
				return err
			}
			if err := config.DeleteProfile(name); err != nil {
				return fmt.Errorf("failed to remove profile: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed.\n", name)
			return nil
		}),
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if _, err := config.LoadProfile(name); err != nil {
				return fmt.Errorf("profile %q: %w", name, err)
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %s.\n", name)
			return nil
		}),
	}
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			type row struct {
				Name       string `json:"name"`
				BaseURL    string `json:"base_url"`
				Collection string `json:"collection"`
				Current    bool   `json:"current"`
			}
			rows := make([]row, 0, len(names))
			for _, name := range names {
				p, err := config.LoadProfile(name)
				if err != nil {
					continue
				}
				rows = append(rows, row{Name: name, BaseURL: p.BaseURL, Collection: p.Collection, Current: name == current})
			}

			if isJSON(cmd) {
				return printJSON(cmd, rows)
			}
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No profiles found. Run 'pb profile login' to add one.")
				return nil
			}
			tbl := outfmt.NewTable(cmd.OutOrStdout(), "PROFILE", "BASE URL", "COLLECTION", "CURRENT")
			for _, r := range rows {
				marker := ""
				if r.Current {
					marker = "*"
				}
				tbl.Row(r.Name, r.BaseURL, r.Collection, marker)
			}
			return tbl.Flush()
		}),
	}
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) < 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
