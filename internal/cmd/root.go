package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/itzreqle/pocketbase-go-sdk/internal/config"
	"github.com/itzreqle/pocketbase-go-sdk/internal/debug"
	"github.com/itzreqle/pocketbase-go-sdk/internal/outfmt"
	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	URL          string
	Collection   string
	Token        string
	Profile      string
	EnvFile      string
	RequireToken bool
	Output       string
	JSON         bool
	JQ           string
	Compact      bool
	Timeout      time.Duration
	Debug        bool
	LogFile      string
}

// flags holds the global command flags. This is package-level mutable state
// that MUST be reset at the start of every Execute() call. Tests depend on
// this reset to get clean state.
var flags = defaultFlags()

func defaultFlags() rootFlags {
	return rootFlags{
		Output:  defaultOutput(),
		Timeout: pocketbase.DefaultTimeout,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("POCKETBASE_OUTPUT")); value != "" {
		return value
	}
	return "text"
}

// logCloser releases the --log-file handle after the command finishes.
var logCloser io.Closer

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = defaultFlags()

	root := &cobra.Command{
		Use:                "pb",
		Short:              "Command-line client for the PocketBase REST API",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // We provide our own did-you-mean via enhanceUnknownError
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := config.LoadEnvFile(flags.EnvFile); err != nil {
				return err
			}

			if flags.JSON {
				if cmd.Flags().Changed("output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if flags.JQ != "" && flags.Output != "json" {
				if cmd.Flags().Changed("output") {
					return fmt.Errorf("--jq requires --output json (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.ParseMode(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithOptions(ctx, outfmt.Options{
				Mode:    mode,
				Query:   flags.JQ,
				Compact: flags.Compact,
			})

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			logCloser = debug.SetupLogger(debug.LoggerOptions{
				Debug:  flags.Debug,
				Stderr: cmd.ErrOrStderr(),
				File:   flags.LogFile,
			})

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.URL, "url", "", "PocketBase base URL (env POCKETBASE_BASE_URL)")
	pf.StringVarP(&flags.Collection, "collection", "c", "", "Collection name or id (env POCKETBASE_COLLECTION)")
	pf.StringVar(&flags.Token, "token", "", "Auth token sent as Bearer (env POCKETBASE_API_TOKEN)")
	pf.StringVar(&flags.Profile, "profile", "", "Stored profile to use (env POCKETBASE_PROFILE)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Load environment from this dotenv file (default .env when present)")
	pf.BoolVar(&flags.RequireToken, "require-token", false, "Fail before any request when no token is configured")
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env POCKETBASE_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVar(&flags.JQ, "jq", "", "jq expression to filter JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.StringVar(&flags.LogFile, "log-file", "", "Also write logs to this file (rotated)")

	root.AddCommand(newRecordsCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newAdminCmd())
	root.AddCommand(newAccountsCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	// Unknown command: `unknown command "recrods" for "pb"`
	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					name := "--" + f.Name
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				})
			}
			helpCmd := "pb --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				helpCmd = targetCmd.CommandPath() + " --help"
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimRight(rest[:end], ".,;:!?\"'")
}
