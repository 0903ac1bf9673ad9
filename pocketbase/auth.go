package pocketbase

import (
	"context"
	"net/http"
	"strings"
)

// SimulatedOAuth2Code is the placeholder authorization code sent by
// AuthWithOAuth2Flow. A real server rejects it.
const SimulatedOAuth2Code = "simulated_oauth2_code"

// AuthService groups the collection-scoped auth endpoints under
// /api/collections/{collection}/.
type AuthService struct{ r Requester }

// AuthWithPassword authenticates a record with identity (username or email)
// and password. The returned token is NOT stored on the client; call
// SetToken(result.Token()) to use it.
func (s AuthService) AuthWithPassword(ctx context.Context, identity, password string, query Query) Result {
	body := passwordCredentials{Identity: identity, Password: password}
	return s.r.execute(ctx, http.MethodPost, s.r.collectionURL("auth-with-password", query), body)
}

// AuthWithOAuth2 exchanges an OAuth2 authorization code. Provider, Code,
// CodeVerifier and RedirectURL are checked in that order and the first
// missing one is reported as a *ValidationError without any request.
func (s AuthService) AuthWithOAuth2(ctx context.Context, params OAuth2Params, query Query) (Result, error) {
	return authWithOAuth2(ctx, s.r, params, query)
}

func authWithOAuth2(ctx context.Context, r Requester, params OAuth2Params, query Query) (Result, error) {
	if err := params.validate(); err != nil {
		return Result{}, err
	}
	return r.execute(ctx, http.MethodPost, r.collectionURL("auth-with-oauth2", query), params), nil
}

func (p OAuth2Params) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"provider", p.Provider},
		{"code", p.Code},
		{"codeVerifier", p.CodeVerifier},
		{"redirectUrl", p.RedirectURL},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return missingParam(f.name)
		}
	}
	return nil
}

// AuthWithOAuth2Flow is a demonstration helper, not a working login. It
// generates a PKCE pair and the {base}/api/oauth2-redirect URL, then calls
// AuthWithOAuth2 with SimulatedOAuth2Code. The pair is returned so the caller
// can see exactly what was sent; a real flow must obtain the code from the
// provider redirect and reuse the same verifier.
func (s AuthService) AuthWithOAuth2Flow(ctx context.Context, provider string) (Result, PKCE, error) {
	if strings.TrimSpace(provider) == "" {
		return Result{}, PKCE{}, missingParam("provider")
	}
	pkce, err := NewPKCE()
	if err != nil {
		return Result{}, PKCE{}, err
	}
	res, err := authWithOAuth2(ctx, s.r, OAuth2Params{
		Provider:     provider,
		Code:         SimulatedOAuth2Code,
		CodeVerifier: pkce.CodeVerifier,
		RedirectURL:  s.r.rootURL("api/oauth2-redirect"),
	}, nil)
	return res, pkce, err
}

// AuthRefresh returns a new token for the currently authenticated record.
// It does not update the stored token.
func (s AuthService) AuthRefresh(ctx context.Context, query Query) Result {
	return s.r.execute(ctx, http.MethodPost, s.r.collectionURL("auth-refresh", query), nil)
}

// RequestVerification sends a verification email.
func (s AuthService) RequestVerification(ctx context.Context, email string) Result {
	return s.post(ctx, "request-verification", map[string]string{"email": email})
}

// ConfirmVerification confirms a verification token from the email.
func (s AuthService) ConfirmVerification(ctx context.Context, token string) Result {
	return s.post(ctx, "confirm-verification", map[string]string{"token": token})
}

// RequestPasswordReset sends a password reset email.
func (s AuthService) RequestPasswordReset(ctx context.Context, email string) Result {
	return s.post(ctx, "request-password-reset", map[string]string{"email": email})
}

// ConfirmPasswordReset sets a new password using the emailed token.
func (s AuthService) ConfirmPasswordReset(ctx context.Context, token, password, passwordConfirm string) Result {
	return s.post(ctx, "confirm-password-reset", map[string]string{
		"token":           token,
		"password":        password,
		"passwordConfirm": passwordConfirm,
	})
}

// RequestEmailChange asks for the authenticated record's email to change.
func (s AuthService) RequestEmailChange(ctx context.Context, newEmail string) Result {
	return s.post(ctx, "request-email-change", map[string]string{"newEmail": newEmail})
}

// ConfirmEmailChange confirms an email change with the emailed token and the
// account password.
func (s AuthService) ConfirmEmailChange(ctx context.Context, token, password string) Result {
	return s.post(ctx, "confirm-email-change", map[string]string{
		"token":    token,
		"password": password,
	})
}

func (s AuthService) post(ctx context.Context, endpoint string, body any) Result {
	return s.r.execute(ctx, http.MethodPost, s.r.collectionURL(endpoint, nil), body)
}

// ListAuthMethods returns the public list of allowed auth methods.
func (s AuthService) ListAuthMethods(ctx context.Context, query Query) Result {
	return s.r.execute(ctx, http.MethodGet, s.r.collectionURL("auth-methods", query), nil)
}

// ListExternalAuths returns the OAuth2 providers linked to a record.
func (s AuthService) ListExternalAuths(ctx context.Context, userID string, query Query) Result {
	return s.r.execute(ctx, http.MethodGet, s.r.collectionURL(pathJoin("records", userID, "external-auths"), query), nil)
}

// UnlinkExternalAuth removes one linked OAuth2 provider from a record.
func (s AuthService) UnlinkExternalAuth(ctx context.Context, userID, provider string) Result {
	return s.r.execute(ctx, http.MethodDelete, s.r.collectionURL(pathJoin("records", userID, "external-auths", provider), nil), nil)
}
