package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/itzreqle/pocketbase-go-sdk/internal/config"
	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

type clientFactory struct {
	timeout      time.Duration
	userAgent    string
	requireToken bool
	overrides    config.Overrides
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:      flags.Timeout,
		userAgent:    fmt.Sprintf("pocketbase-cli/%s", version),
		requireToken: flags.RequireToken,
		overrides: config.Overrides{
			Profile:    flags.Profile,
			BaseURL:    flags.URL,
			Collection: flags.Collection,
			Token:      flags.Token,
		},
	}
}

func (f *clientFactory) client() (*pocketbase.Client, config.ClientConfig, error) {
	resolved, err := config.Resolve(f.overrides)
	if err != nil {
		return nil, config.ClientConfig{}, err
	}
	cfg := resolved.APIConfig()
	cfg.RequireToken = f.requireToken
	cfg.Timeout = f.timeout
	cfg.UserAgent = f.userAgent
	cfg.Logger = slog.Default()

	client, err := pocketbase.New(cfg)
	if err != nil {
		return nil, config.ClientConfig{}, err
	}
	return client, resolved, nil
}

// getClient resolves configuration from flags, environment and the stored
// profile and builds a client.
func getClient() (*pocketbase.Client, config.ClientConfig, error) {
	return newClientFactory().client()
}
