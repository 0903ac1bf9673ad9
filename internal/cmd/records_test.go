package cmd

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsList(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{"page":1,"perPage":20,"totalItems":1,"totalPages":1,"items":[{"id":"r1","title":"Hello"}]}`))

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "list", "--filter", "title='Hello'", "--sort", "-created"})
		require.NoError(t, err)
	})

	req := env.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/collections/users/records", req.Path)
	assert.Equal(t, "filter=title%3D%27Hello%27&sort=-created&page=1&perPage=20", req.Query)
	assert.Equal(t, "Bearer test-token", req.Auth)
	assert.Contains(t, output, "HTTP 200")
	assert.Contains(t, output, `"title": "Hello"`)
}

func TestRecordsList_PaginationFlags(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{"items":[]}`))

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "ls", "--page", "3", "--per-page", "5", "--query", "skipTotal=1"})
		require.NoError(t, err)
	})

	assert.Equal(t, "skipTotal=1&page=3&perPage=5", env.last(t).Query)
}

func TestRecordsList_JSON(t *testing.T) {
	setupTestEnv(t, jsonResponse(http.StatusOK, `{"items":[{"id":"r1"}]}`))

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "list", "--json"})
		require.NoError(t, err)
	})

	result := decodeJSON(t, output)
	assert.Equal(t, float64(200), result["statusCode"])
	response, ok := result["response"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, response["items"], 1)
}

func TestRecordsList_All(t *testing.T) {
	env := setupTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		body := `{"page":1,"totalPages":2,"items":[{"id":"a"},{"id":"b"}]}`
		if r.URL.Query().Get("page") == "2" {
			body = `{"page":2,"totalPages":2,"items":[{"id":"c"}]}`
		}
		jsonResponse(http.StatusOK, body)(w, r)
	})

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "list", "--all", "--per-page", "2", "--jq", "[.response.items[].id]", "--compact-json"})
		require.NoError(t, err)
	})

	assert.Equal(t, 2, env.count())
	assert.Equal(t, `["a","b","c"]`, strings.TrimSpace(output))
}

func TestRecordsList_AllStopsOnError(t *testing.T) {
	setupTestEnv(t, jsonResponse(http.StatusForbidden, `{"code":403,"message":"Only admins can perform this action.","data":{}}`))

	var err error
	output := captureStdout(t, func() {
		_ = captureStderr(t, func() {
			err = Execute(context.Background(), []string{"records", "list", "--all"})
		})
	})

	require.Error(t, err)
	assert.Equal(t, exitForbidden, ExitCode(err))
	assert.Contains(t, output, "HTTP 403")
}

func TestRecordsGet(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{"id":"abc","title":"One"}`))

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "get", "abc", "--expand", "author", "--jq", ".response.title"})
		require.NoError(t, err)
	})

	req := env.last(t)
	assert.Equal(t, "/api/collections/users/records/abc", req.Path)
	assert.Equal(t, "expand=author", req.Query)
	assert.Equal(t, `"One"`, strings.TrimSpace(output))
}

func TestRecordsGet_NotFound(t *testing.T) {
	setupTestEnv(t, jsonResponse(http.StatusNotFound, `{"code":404,"message":"The requested resource wasn't found.","data":{}}`))

	var err error
	stderr := captureStderr(t, func() {
		_ = captureStdout(t, func() {
			err = Execute(context.Background(), []string{"records", "get", "missing"})
		})
	})

	require.Error(t, err)
	assert.Equal(t, exitNotFound, ExitCode(err))
	assert.Contains(t, stderr, "API error (HTTP 404)")
}

func TestRecordsCreate(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{"id":"new1"}`))

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "create", "-f", "title=hello", "-F", "published=true", "-F", "views=3"})
		require.NoError(t, err)
	})

	req := env.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/collections/users/records", req.Path)
	assert.Equal(t, map[string]any{"title": "hello", "published": true, "views": float64(3)}, req.Body)
}

func TestRecordsCreate_FromFile(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{"id":"new1"}`))
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"from file"}`), 0o600))

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "create", "-i", path})
		require.NoError(t, err)
	})

	assert.Equal(t, map[string]any{"title": "from file"}, env.last(t).Body)
}

func TestRecordsCreate_RequiresBody(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{}`))

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"records", "create"})
	})

	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, stderr, "missing record data")
	assert.Equal(t, 0, env.count())
}

func TestRecordsCreate_ConflictingBody(t *testing.T) {
	setupTestEnv(t, jsonResponse(http.StatusOK, `{}`))

	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"records", "create", "-d", `{"a":1}`, "-i", "x.json"})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot use both")
}

func TestRecordsUpdate(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{"id":"abc","title":"changed"}`))

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "update", "abc", "-d", `{"title":"changed"}`})
		require.NoError(t, err)
	})

	req := env.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/collections/users/records/abc", req.Path)
	assert.Equal(t, map[string]any{"title": "changed"}, req.Body)
}

func TestRecordsDelete(t *testing.T) {
	env := setupTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "rm", "abc"})
		require.NoError(t, err)
	})

	req := env.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/collections/users/records/abc", req.Path)
	assert.Contains(t, output, "HTTP 204")
}

func TestRecords_CollectionFlagOverridesEnv(t *testing.T) {
	env := setupTestEnv(t, jsonResponse(http.StatusOK, `{"items":[]}`))

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"records", "list", "-c", "posts"})
		require.NoError(t, err)
	})

	assert.Equal(t, "/api/collections/posts/records", env.last(t).Path)
}

func TestRecords_InvalidQueryPair(t *testing.T) {
	setupTestEnv(t, jsonResponse(http.StatusOK, `{}`))

	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"records", "get", "abc", "--query", "novalue"})
	})
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}
