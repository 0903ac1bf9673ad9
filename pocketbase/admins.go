package pocketbase

import (
	"context"
	"net/http"
)

// AdminsService holds the admin endpoints that live outside any collection.
type AdminsService struct {
	r       Requester
	observe AuthObserver
}

// AuthWithPassword authenticates an admin against
// {base}/api/admins/auth-with-password. Unlike AuthService.AuthWithPassword,
// a 200 response carrying a token stores that token on the client. The
// observer is told about both outcomes; on failure the stored token is left
// untouched.
func (s AdminsService) AuthWithPassword(ctx context.Context, identity, password string) Result {
	res := s.r.execute(ctx, http.MethodPost, s.r.rootURL("api/admins/auth-with-password"), passwordCredentials{
		Identity: identity,
		Password: password,
	})

	token := res.Token()
	ok := res.StatusCode == http.StatusOK && token != ""
	if ok {
		s.r.SetToken(token)
	}
	if s.observe != nil {
		s.observe(ok, res)
	}
	return res
}

// logAdminAuth is the default observer. The token itself is never logged.
func (c *Client) logAdminAuth(ok bool, res Result) {
	if ok {
		c.logger.Info("admin token generated", "status", res.StatusCode, "admin", res.Get("admin.email").String())
		return
	}
	c.logger.Warn("admin token generation failed", "status", res.StatusCode, "response", string(res.Raw))
}
