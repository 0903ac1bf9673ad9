package pocketbase

import "context"

// PathResolver builds the URLs the services talk to. It hides the base URL
// and collection so that services only deal in collection-relative paths.
type PathResolver interface {
	// collectionURL returns the URL for a path relative to
	// {base}/api/collections/{collection}/.
	// Example: collectionURL("records/abc", nil) -> ".../api/collections/users/records/abc"
	collectionURL(path string, query Query) string

	// rootURL returns the URL for a path relative to the base URL.
	// Example: rootURL("api/admins/auth-with-password")
	rootURL(path string) string
}

// HTTPExecutor issues a single request and normalizes the outcome.
type HTTPExecutor interface {
	// execute performs the exchange. Transport failures are folded into a
	// 500 Result rather than returned.
	execute(ctx context.Context, method, url string, body any) Result
}

// TokenStore holds the bearer token attached to outgoing requests.
type TokenStore interface {
	SetToken(token string)
	Token() string
}

// Requester is the capability object handed to every service: path
// building, request execution and the token store. Tests substitute a fake
// to count calls or capture requests without a network.
type Requester interface {
	PathResolver
	HTTPExecutor
	TokenStore
}
