package pocketbase

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query holds scalar query parameters. Values are formatted with their
// natural string form; slices and maps are not supported.
type Query map[string]any

// Clone returns a shallow copy; a nil receiver yields an empty Query.
func (q Query) Clone() Query {
	out := make(Query, len(q)+2)
	for k, v := range q {
		out[k] = v
	}
	return out
}

// paginationKeys are always encoded last, in this order, so list requests
// end with ...&page=N&perPage=M whatever the caller supplied.
var paginationKeys = []string{"page", "perPage"}

// Encode returns the URL-encoded form: keys sorted, except the pagination
// keys which follow in fixed order.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		if k == "page" || k == "perPage" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(q))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(formatScalar(q[k])))
	}
	for _, k := range paginationKeys {
		if v, ok := q[k]; ok {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(formatScalar(v)))
		}
	}
	return strings.Join(parts, "&")
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		// PocketBase accepts 1/0 and true/false; keep the Go spelling.
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// collectionPrefix is the API-root form of a collection path. Paths that
// already carry it are accepted by BuildURL without double-prefixing.
func collectionPrefix(collection string) string {
	return "api/collections/" + url.PathEscape(collection) + "/"
}

// BuildURL returns {baseURL}/api/collections/{collection}/{relativePath},
// followed by the encoded query when non-empty. relativePath may be a bare
// resource path ("records", "records/abc") or the same path already
// prefixed from the API root ("api/collections/users/records").
func BuildURL(baseURL, collection, relativePath string, query Query) string {
	return buildURL(baseURL, collection, relativePath, query.Encode())
}

func buildURL(baseURL, collection, relativePath, rawQuery string) string {
	prefix := collectionPrefix(collection)
	path := strings.TrimLeft(relativePath, "/")
	path = strings.TrimPrefix(path, prefix)
	if unescaped := "api/collections/" + collection + "/"; strings.HasPrefix(path, unescaped) {
		path = strings.TrimPrefix(path, unescaped)
	}

	u := strings.TrimRight(baseURL, "/") + "/" + prefix + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// pathJoin escapes each segment and joins them with "/".
func pathJoin(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
