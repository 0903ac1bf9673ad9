package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/itzreqle/pocketbase-go-sdk/internal/config"
)

// captureStdout executes a function and captures its stdout output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	return <-done
}

// captureStderr executes a function and captures its stderr output.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stderr = old
	return <-done
}

// recordedRequest is what the mock server saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// testEnv wraps a mock PocketBase server and the requests it received.
type testEnv struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func (e *testEnv) last(t *testing.T) recordedRequest {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		t.Fatal("no request reached the server")
	}
	return e.requests[len(e.requests)-1]
}

func (e *testEnv) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

// setupTestEnv starts a mock server and points POCKETBASE_* at it with the
// "users" collection and token "test-token". Each request is recorded before
// handler runs.
func setupTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	env := &testEnv{}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
			r.Body = io.NopCloser(bytes.NewReader(data))
		}
		env.mu.Lock()
		env.requests = append(env.requests, rec)
		env.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(env.server.Close)

	t.Setenv(config.EnvBaseURL, env.server.URL)
	t.Setenv(config.EnvCollection, "users")
	t.Setenv(config.EnvToken, "test-token")
	t.Setenv(config.EnvProfile, "")
	return env
}

// jsonResponse returns a handler that always answers with status and body.
func jsonResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes "METHOD /path" to handlers and answers 404 otherwise.
type routeHandler map[string]http.HandlerFunc

func (rh routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rh[r.Method+" "+r.URL.Path]; ok {
		h(w, r)
		return
	}
	jsonResponse(http.StatusNotFound, `{"code":404,"message":"The requested resource wasn't found.","data":{}}`)(w, r)
}

// withTestKeyring installs one in-memory keyring for the whole test so that
// profiles persist across Execute calls.
func withTestKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	restore := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(restore)
	return ring
}

// clearPocketBaseEnv unsets connection variables for tests that must rely on
// profiles or flags only.
func clearPocketBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvBaseURL, config.EnvCollection, config.EnvToken, config.EnvProfile} {
		t.Setenv(key, "")
	}
}

func decodeJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(output), &out); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, output)
	}
	return out
}
