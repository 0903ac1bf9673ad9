package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	readPassword = term.ReadPassword
	stdinIsTTY   = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// passwordOrPrompt returns value, or reads it from the terminal without echo
// when empty. Non-interactive callers must pass the flag.
func passwordOrPrompt(cmd *cobra.Command, value, flagName, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	if !stdinIsTTY() {
		return "", fmt.Errorf("--%s is required when stdin is not a terminal", flagName)
	}
	errOut := cmd.ErrOrStderr()
	_, _ = fmt.Fprintf(errOut, "%s: ", label)
	raw, err := readPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%s must not be empty", strings.ToLower(label))
	}
	return string(raw), nil
}
