package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itzreqle/pocketbase-go-sdk/internal/config"
)

func TestProfileLogin(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"profile", "login", "staging", "--url", "https://pb.example.com/", "-c", "posts", "--token", "abcd1234efgh"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Profile staging saved.")
	assert.Contains(t, output, "Base URL: https://pb.example.com\n")
	assert.Contains(t, output, "Token: abcd****efgh")

	p, err := config.LoadProfile("staging")
	require.NoError(t, err)
	assert.Equal(t, config.Profile{BaseURL: "https://pb.example.com", Collection: "posts", Token: "abcd1234efgh"}, p)

	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "staging", current)
}

func TestProfileLogin_FromEnvironment(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)
	t.Setenv(config.EnvBaseURL, "http://127.0.0.1:8090")
	t.Setenv(config.EnvCollection, "users")

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "login"}))
	})

	p, err := config.LoadProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090", p.BaseURL)
	assert.Empty(t, p.Token)
}

func TestProfileLogin_RequiresCollection(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"profile", "login", "--url", "http://127.0.0.1:8090"})
	})

	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, stderr, "Configuration error")
	names, listErr := config.ListProfiles()
	require.NoError(t, listErr)
	assert.Empty(t, names)
}

func TestProfileStatus(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)
	require.NoError(t, config.SaveProfile("prod", config.Profile{BaseURL: "https://pb.example.com", Collection: "users", Token: "tok-1234567890"}))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "status"}))
	})

	assert.Contains(t, output, "Configured")
	assert.Contains(t, output, "Profile: prod")
	assert.Contains(t, output, "Collection: users")
	assert.Contains(t, output, "Token: tok-******7890")
	assert.NotContains(t, output, "tok-1234567890")
}

func TestProfileStatus_JSONNotConfigured(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "status", "--json"}))
	})

	out := decodeJSON(t, output)
	assert.Equal(t, false, out["configured"])
}

func TestProfileUseAndList(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)
	require.NoError(t, config.SaveProfile("one", config.Profile{BaseURL: "http://one", Collection: "users"}))
	require.NoError(t, config.SaveProfile("two", config.Profile{BaseURL: "http://two", Collection: "posts"}))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "use", "one"}))
	})
	assert.Contains(t, output, "Switched to profile one.")

	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "list"}))
	})
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "PROFILE")
	assert.True(t, strings.HasPrefix(lines[1], "one"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "*"))
	assert.False(t, strings.HasSuffix(strings.TrimSpace(lines[2]), "*"))

	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "ls", "--jq", "[.[] | select(.current) | .name]", "--compact-json"}))
	})
	assert.Equal(t, `["one"]`, strings.TrimSpace(output))
}

func TestProfileUse_Unknown(t *testing.T) {
	withTestKeyring(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"profile", "use", "ghost"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, `profile "ghost": profile not found`)
}

func TestProfileList_Empty(t *testing.T) {
	withTestKeyring(t)

	var stdout string
	stderr := captureStderr(t, func() {
		stdout = captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), []string{"profile", "list"}))
		})
	})
	assert.Contains(t, stderr, "No profiles found")
	assert.Empty(t, stdout)
}

func TestProfileLogout(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)
	require.NoError(t, config.SaveProfile("one", config.Profile{BaseURL: "http://one", Collection: "users"}))
	require.NoError(t, config.SaveProfile("two", config.Profile{BaseURL: "http://two", Collection: "users"}))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "logout", "two"}))
	})
	assert.Contains(t, output, "Profile two removed.")

	_, err := config.LoadProfile("two")
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "one", current)

	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"profile", "logout", "two"}))
	})
	assert.Contains(t, output, "No profile named two.")
}

func TestProfile_ExplicitProfileMustExist(t *testing.T) {
	withTestKeyring(t)
	clearPocketBaseEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"records", "list", "--profile", "missing"})
	})
	require.Error(t, err)
	assert.Contains(t, stderr, `profile "missing"`)
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "12345678"},
		{"abcdefghijkl", "abcd****ijkl"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskToken(tt.token), tt.token)
	}
}
