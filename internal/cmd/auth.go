package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/itzreqle/pocketbase-go-sdk/internal/auth"
	"github.com/itzreqle/pocketbase-go-sdk/internal/config"
	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

func newAuthCmd() *cobra.Command {
	cmd := newGroupCmd("auth", "Authenticate records of an auth collection")
	cmd.AddCommand(newAuthPasswordCmd())
	cmd.AddCommand(newAuthRefreshCmd())
	cmd.AddCommand(newAuthMethodsCmd())
	cmd.AddCommand(newAuthOAuth2Cmd())
	cmd.AddCommand(newAuthOAuth2FlowCmd())
	cmd.AddCommand(newAuthOAuth2URLCmd())
	cmd.AddCommand(newAuthOAuth2LoginCmd())
	cmd.AddCommand(newAuthVerificationCmd())
	cmd.AddCommand(newAuthPasswordResetCmd())
	cmd.AddCommand(newAuthEmailChangeCmd())
	cmd.AddCommand(newAuthExternalCmd())
	return cmd
}

// saveToken stores token in the resolved profile, creating the profile from
// the resolved settings when it does not exist yet.
func saveToken(cmd *cobra.Command, resolved config.ClientConfig, token string) error {
	err := config.SaveToken(resolved.Profile, token)
	if errors.Is(err, config.ErrProfileNotFound) {
		err = config.SaveProfile(resolved.Profile, config.Profile{
			BaseURL:    resolved.BaseURL,
			Collection: resolved.Collection,
			Token:      token,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Token saved to profile %q\n", resolved.Profile)
	return nil
}

func newAuthPasswordCmd() *cobra.Command {
	var identity, password, expand string
	var save bool

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Authenticate with identity and password",
		Long: `Authenticate a record with its username or email and password.

The token is printed and, with --save, stored in the active profile so later
commands send it. Without --save nothing is stored.`,
		Example: `  pb auth password --identity ada@example.com --save`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, password, "password", "Password")
			if err != nil {
				return err
			}
			client, resolved, err := getClient()
			if err != nil {
				return err
			}

			var query pocketbase.Query
			if expand != "" {
				query = pocketbase.Query{"expand": expand}
			}
			res := client.Auth().AuthWithPassword(cmdContext(cmd), identity, pw, query)
			if err := printResult(cmd, res); err != nil {
				return err
			}
			if save && res.Token() != "" {
				return saveToken(cmd, resolved, res.Token())
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Username or email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&expand, "expand", "", "Relations of the auth record to expand")
	cmd.Flags().BoolVar(&save, "save", false, "Store the returned token in the active profile")
	_ = cmd.MarkFlagRequired("identity")
	return cmd
}

func newAuthRefreshCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the current auth token",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, resolved, err := getClient()
			if err != nil {
				return err
			}
			res := client.Auth().AuthRefresh(cmdContext(cmd), nil)
			if err := printResult(cmd, res); err != nil {
				return err
			}
			if save && res.Token() != "" {
				return saveToken(cmd, resolved, res.Token())
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the refreshed token in the active profile")
	return cmd
}

func newAuthMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the auth methods allowed for the collection",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().ListAuthMethods(cmdContext(cmd), nil))
		}),
	}
}

func newAuthOAuth2Cmd() *cobra.Command {
	var params pocketbase.OAuth2Params
	var createData string

	cmd := &cobra.Command{
		Use:   "oauth2",
		Short: "Exchange an OAuth2 authorization code",
		Example: `  pb auth oauth2 --provider google --code "$CODE" \
    --code-verifier "$VERIFIER" --redirect-url http://127.0.0.1:8090/api/oauth2-redirect`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if createData != "" {
				data, err := parseJSONObject(createData, "--create-data")
				if err != nil {
					return err
				}
				params.CreateData = data
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			res, err := client.Auth().AuthWithOAuth2(cmdContext(cmd), params, nil)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		}),
	}

	cmd.Flags().StringVar(&params.Provider, "provider", "", "OAuth2 provider name")
	cmd.Flags().StringVar(&params.Code, "code", "", "Authorization code from the provider redirect")
	cmd.Flags().StringVar(&params.CodeVerifier, "code-verifier", "", "PKCE code verifier used for the authorization request")
	cmd.Flags().StringVar(&params.RedirectURL, "redirect-url", "", "Redirect URL used for the authorization request")
	cmd.Flags().StringVar(&createData, "create-data", "", "JSON object used when a new record is created")
	return cmd
}

func newAuthOAuth2FlowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "oauth2-flow <provider>",
		Short: "Run the simulated OAuth2 flow (demonstration only)",
		Long: `Generate a PKCE pair and call auth-with-oauth2 with a placeholder code.

This does not perform a real login: the server is expected to reject the
simulated code. The generated verifier and challenge are printed to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			res, pkce, err := client.Auth().AuthWithOAuth2Flow(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "code_verifier: %s\ncode_challenge: %s\n", pkce.CodeVerifier, pkce.CodeChallenge)
			return printResult(cmd, res)
		}),
	}
}

func newAuthOAuth2URLCmd() *cobra.Command {
	var authURL, clientID, redirectURL, state string
	var scopes []string

	cmd := &cobra.Command{
		Use:   "oauth2-url",
		Short: "Print a provider authorization URL with a fresh PKCE challenge",
		Long: `Build the consent URL for an authorization-code flow with PKCE (S256).

Keep the printed code_verifier: pass it to 'pb auth oauth2 --code-verifier'
together with the code the provider redirects back with.`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			pkce, err := pocketbase.NewPKCE()
			if err != nil {
				return err
			}
			u := pocketbase.AuthorizationURL(authURL, clientID, redirectURL, state, scopes, pkce)

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"url":           u,
					"state":         state,
					"codeVerifier":  pkce.CodeVerifier,
					"codeChallenge": pkce.CodeChallenge,
				})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, u)
			_, _ = fmt.Fprintf(out, "code_verifier: %s\n", pkce.CodeVerifier)
			return nil
		}),
	}

	cmd.Flags().StringVar(&authURL, "auth-url", "", "Provider authorization endpoint (required)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client id (required)")
	cmd.Flags().StringVar(&redirectURL, "redirect-url", "", "Redirect URL registered with the provider")
	cmd.Flags().StringVar(&state, "state", "", "Opaque state value echoed back by the provider")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Scopes to request (repeatable or comma separated)")
	_ = cmd.MarkFlagRequired("auth-url")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}

var openBrowser = auth.OpenBrowser

// oauth2Provider is one entry of the auth-methods authProviders list.
type oauth2Provider struct {
	Name         string `json:"name"`
	State        string `json:"state"`
	CodeVerifier string `json:"codeVerifier"`
	AuthURL      string `json:"authUrl"`
}

func findOAuth2Provider(methods pocketbase.Result, name string) (oauth2Provider, error) {
	var found oauth2Provider
	var names []string
	for _, p := range methods.Get("authProviders").Array() {
		n := p.Get("name").String()
		names = append(names, n)
		if strings.EqualFold(n, name) {
			found = oauth2Provider{
				Name:         n,
				State:        p.Get("state").String(),
				CodeVerifier: p.Get("codeVerifier").String(),
				AuthURL:      p.Get("authUrl").String(),
			}
		}
	}
	if found.Name == "" {
		if len(names) == 0 {
			return found, fmt.Errorf("no OAuth2 providers are enabled for this collection")
		}
		return found, fmt.Errorf("unknown OAuth2 provider %q (available: %s)", name, strings.Join(names, ", "))
	}
	if found.AuthURL == "" || found.CodeVerifier == "" {
		return found, fmt.Errorf("provider %q did not return an authUrl and codeVerifier", found.Name)
	}
	return found, nil
}

func newAuthOAuth2LoginCmd() *cobra.Command {
	var provider string
	var wait time.Duration
	var save bool

	cmd := &cobra.Command{
		Use:   "oauth2-login",
		Short: "Sign in through an OAuth2 provider in the browser",
		Long: `Run a complete OAuth2 login against a provider enabled on the collection.

The provider's authUrl, state and code verifier come from auth-methods. A
loopback server on 127.0.0.1 receives the redirect; its URL must be allowed
by the provider app. The code is exchanged with auth-with-oauth2 using the
same verifier.`,
		Example: `  pb auth oauth2-login --provider google --save`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(provider) == "" {
				return fmt.Errorf("--provider is required")
			}
			client, resolved, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			methods := client.Auth().ListAuthMethods(ctx, nil)
			if err := methods.Err(); err != nil {
				return err
			}
			p, err := findOAuth2Provider(methods, provider)
			if err != nil {
				return err
			}

			server, err := auth.NewCallbackServer(p.Name, p.State)
			if err != nil {
				return err
			}
			redirectURL := server.RedirectURL()
			authURL := p.AuthURL + url.QueryEscape(redirectURL)

			errOut := cmd.ErrOrStderr()
			_, _ = fmt.Fprintf(errOut, "Open this URL in your browser to sign in with %s:\n  %s\n", p.Name, authURL)
			if err := openBrowser(authURL); err != nil {
				_, _ = fmt.Fprintf(errOut, "Could not open browser automatically: %v\n", err)
			}

			waitCtx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()
			cb, err := server.Wait(waitCtx)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("timed out after %s waiting for the %s redirect", wait, p.Name)
				}
				return err
			}

			res, err := client.Auth().AuthWithOAuth2(ctx, pocketbase.OAuth2Params{
				Provider:     p.Name,
				Code:         cb.Code,
				CodeVerifier: p.CodeVerifier,
				RedirectURL:  redirectURL,
			}, nil)
			if err != nil {
				return err
			}
			if err := printResult(cmd, res); err != nil {
				return err
			}
			if save && res.Token() != "" {
				return saveToken(cmd, resolved, res.Token())
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&provider, "provider", "", "OAuth2 provider name as listed by 'pb auth methods'")
	cmd.Flags().DurationVar(&wait, "wait", 3*time.Minute, "How long to wait for the browser redirect")
	cmd.Flags().BoolVar(&save, "save", false, "Store the returned token in the active profile")
	return cmd
}

func newAuthVerificationCmd() *cobra.Command {
	cmd := newGroupCmd("verification", "Request or confirm email verification")
	cmd.AddCommand(&cobra.Command{
		Use:   "request <email>",
		Short: "Send a verification email",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().RequestVerification(cmdContext(cmd), args[0]))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "confirm <token>",
		Short: "Confirm a verification token",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().ConfirmVerification(cmdContext(cmd), args[0]))
		}),
	})
	return cmd
}

func newAuthPasswordResetCmd() *cobra.Command {
	cmd := newGroupCmd("password-reset", "Request or confirm a password reset")
	cmd.AddCommand(&cobra.Command{
		Use:   "request <email>",
		Short: "Send a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().RequestPasswordReset(cmdContext(cmd), args[0]))
		}),
	})

	var password, passwordConfirm string
	confirm := &cobra.Command{
		Use:   "confirm <token>",
		Short: "Set a new password with the emailed token",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(cmd, password, "password", "New password")
			if err != nil {
				return err
			}
			confirmation := passwordConfirm
			if confirmation == "" && password != "" {
				confirmation = password
			}
			confirmation, err = passwordOrPrompt(cmd, confirmation, "password-confirm", "Confirm password")
			if err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().ConfirmPasswordReset(cmdContext(cmd), args[0], pw, confirmation))
		}),
	}
	confirm.Flags().StringVar(&password, "password", "", "New password (prompted when omitted)")
	confirm.Flags().StringVar(&passwordConfirm, "password-confirm", "", "Password confirmation (defaults to --password)")
	cmd.AddCommand(confirm)
	return cmd
}

func newAuthEmailChangeCmd() *cobra.Command {
	cmd := newGroupCmd("email-change", "Request or confirm an email change")
	cmd.AddCommand(&cobra.Command{
		Use:   "request <new-email>",
		Short: "Request an email change for the authenticated record",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().RequestEmailChange(cmdContext(cmd), args[0]))
		}),
	})

	var password string
	confirm := &cobra.Command{
		Use:   "confirm <token>",
		Short: "Confirm an email change with the emailed token",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(cmd, password, "password", "Password")
			if err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().ConfirmEmailChange(cmdContext(cmd), args[0], pw))
		}),
	}
	confirm.Flags().StringVar(&password, "password", "", "Current account password (prompted when omitted)")
	cmd.AddCommand(confirm)
	return cmd
}

func newAuthExternalCmd() *cobra.Command {
	cmd := newGroupCmd("external", "List or unlink OAuth2 providers linked to a record")
	cmd.AddCommand(&cobra.Command{
		Use:   "list <record-id>",
		Short: "List linked OAuth2 providers",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().ListExternalAuths(cmdContext(cmd), args[0], nil))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unlink <record-id> <provider>",
		Short: "Unlink an OAuth2 provider",
		Args:  cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Auth().UnlinkExternalAuth(cmdContext(cmd), args[0], strings.TrimSpace(args[1])))
		}),
	})
	return cmd
}
