package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

// Environment variables read by Resolve.
const (
	EnvBaseURL    = "POCKETBASE_BASE_URL"
	EnvCollection = "POCKETBASE_COLLECTION"
	EnvToken      = "POCKETBASE_API_TOKEN"
	EnvProfile    = "POCKETBASE_PROFILE"
)

// DefaultEnvFile is loaded from the working directory when present.
const DefaultEnvFile = ".env"

// Overrides are explicit values, typically from command-line flags. Empty
// fields do not override.
type Overrides struct {
	Profile    string
	BaseURL    string
	Collection string
	Token      string
}

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Profile    string
	BaseURL    string
	Collection string
	Token      string
}

// APIConfig converts the resolved settings into an pocketbase.Config.
func (c ClientConfig) APIConfig() pocketbase.Config {
	return pocketbase.Config{
		BaseURL:    c.BaseURL,
		Collection: c.Collection,
		Token:      c.Token,
	}
}

// LoadEnvFile loads variables from a dotenv file without overwriting ones
// already set. With an empty path the default .env is tried and a missing
// file is not an error; an explicit path must exist.
func LoadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to parse env file %q: %w", path, err)
	}
	return nil
}

// ProfileName picks the profile to use: the override, then
// POCKETBASE_PROFILE, then the stored current profile.
func ProfileName(override string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	if name := strings.TrimSpace(os.Getenv(EnvProfile)); name != "" {
		return name
	}
	if name, err := CurrentProfile(); err == nil && name != "" {
		return name
	}
	return defaultProfile
}

// Resolve merges the stored profile, the environment and overrides, in
// increasing precedence. A profile that was named explicitly must exist;
// otherwise a missing or unreadable keyring is ignored.
func Resolve(o Overrides) (ClientConfig, error) {
	explicit := strings.TrimSpace(o.Profile) != "" || strings.TrimSpace(os.Getenv(EnvProfile)) != ""
	cfg := ClientConfig{Profile: ProfileName(o.Profile)}

	profile, err := LoadProfile(cfg.Profile)
	switch {
	case err == nil:
		cfg.BaseURL = profile.BaseURL
		cfg.Collection = profile.Collection
		cfg.Token = profile.Token
	case explicit && errors.Is(err, ErrProfileNotFound):
		return ClientConfig{}, fmt.Errorf("profile %q: %w", cfg.Profile, err)
	case explicit:
		return ClientConfig{}, err
	}

	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCollection)); v != "" {
		cfg.Collection = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		cfg.Token = v
	}

	if v := strings.TrimSpace(o.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(o.Collection); v != "" {
		cfg.Collection = v
	}
	if v := strings.TrimSpace(o.Token); v != "" {
		cfg.Token = v
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.BaseURL == "" {
		return ClientConfig{}, &pocketbase.ConfigurationError{
			Field:  "base_url",
			Reason: fmt.Sprintf("base URL not configured (set %s, pass --url, or run 'pb profile login')", EnvBaseURL),
		}
	}
	if cfg.Collection == "" {
		return ClientConfig{}, &pocketbase.ConfigurationError{
			Field:  "collection",
			Reason: fmt.Sprintf("collection not configured (set %s, pass --collection, or run 'pb profile login')", EnvCollection),
		}
	}
	return cfg, nil
}
