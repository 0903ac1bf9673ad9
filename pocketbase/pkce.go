package pocketbase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/oauth2"
)

// PKCE holds a Proof Key for Code Exchange pair (RFC 7636).
type PKCE struct {
	// CodeVerifier is 64 lowercase hex characters (32 random bytes).
	CodeVerifier string `json:"codeVerifier"`
	// CodeChallenge is base64url(SHA-256(CodeVerifier)) without padding.
	CodeChallenge string `json:"codeChallenge"`
}

// randRead is replaced in tests to force entropy failures.
var randRead = rand.Read

// NewPKCE generates a fresh verifier and its S256 challenge.
func NewPKCE() (PKCE, error) {
	buf := make([]byte, 32)
	if _, err := randRead(buf); err != nil {
		return PKCE{}, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	verifier := hex.EncodeToString(buf)
	return PKCE{
		CodeVerifier:  verifier,
		CodeChallenge: oauth2.S256ChallengeFromVerifier(verifier),
	}, nil
}

// AuthorizationURL builds the provider consent URL for an authorization-code
// flow carrying the S256 challenge of p. The caller owns the redirect
// handling and must keep p.CodeVerifier until the code comes back.
func AuthorizationURL(authURL, clientID, redirectURL, state string, scopes []string, p PKCE) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
		RedirectURL: redirectURL,
		Scopes:      scopes,
	}
	return cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(p.CodeVerifier))
}
