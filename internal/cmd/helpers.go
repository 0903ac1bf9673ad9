package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itzreqle/pocketbase-go-sdk/internal/outfmt"
	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
			return &handledError{err: err, exitCode: ExitCode(err)}
		}
		return nil
	}
}

// newGroupCmd returns a parent command that only shows help, so that an
// unknown subcommand is reported instead of silently printing usage.
func newGroupCmd(use, short string, aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Aliases: aliases,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func isJSON(cmd *cobra.Command) bool {
	return outfmt.FromContext(cmdContext(cmd)).JSON()
}

// printJSON writes v honoring --jq and --compact-json.
func printJSON(cmd *cobra.Command, v any) error {
	return outfmt.FromContext(cmdContext(cmd)).WriteJSON(cmd.OutOrStdout(), v)
}

// printResult renders a Result and turns a non-2xx status into an error so
// the process exits non-zero. The body is always printed first.
func printResult(cmd *cobra.Command, res pocketbase.Result) error {
	if isJSON(cmd) {
		if err := printJSON(cmd, res); err != nil {
			return err
		}
	} else {
		outfmt.WriteStatus(cmd.OutOrStdout(), res.StatusCode, res.Response, res.Raw)
	}
	return res.Err()
}

// parseQueryPairs turns repeated key=value flags into a query. Values stay
// strings; the server does its own coercion.
func parseQueryPairs(pairs []string) (pocketbase.Query, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	q := make(pocketbase.Query, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query parameter %q: must be key=value", pair)
		}
		q[key] = value
	}
	return q, nil
}

// parseJSONObject parses a JSON object argument such as record data.
func parseJSONObject(raw, what string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("invalid %s: must be a JSON object: %w", what, err)
	}
	return out, nil
}

var (
	errConflictingBody = errors.New("cannot use both --data and --input flags")
	errMissingBody     = errors.New("missing record data: pass --data, --input, --field or --raw-field")
)
