package pocketbase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client, err := New(Config{BaseURL: "https://example.com/", Collection: "users", Token: "test-token"})
	require.NoError(t, err)

	if client.BaseURL != "https://example.com" {
		t.Errorf("Expected BaseURL https://example.com, got %s", client.BaseURL)
	}
	if client.Collection != "users" {
		t.Errorf("Expected Collection users, got %s", client.Collection)
	}
	if client.Token() != "test-token" {
		t.Errorf("Expected token test-token, got %s", client.Token())
	}
	if client.HTTP == nil || client.HTTP.Timeout != DefaultTimeout {
		t.Error("Expected HTTP client with default timeout")
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"missing base URL", Config{Collection: "users"}, "base_url"},
		{"blank base URL", Config{BaseURL: "  ", Collection: "users"}, "base_url"},
		{"relative base URL", Config{BaseURL: "example.com", Collection: "users"}, "base_url"},
		{"ftp base URL", Config{BaseURL: "ftp://example.com", Collection: "users"}, "base_url"},
		{"base URL with query", Config{BaseURL: "https://example.com?x=1", Collection: "users"}, "base_url"},
		{"missing collection", Config{BaseURL: "https://example.com"}, "collection"},
		{"token required", Config{BaseURL: "https://example.com", Collection: "users", RequireToken: true}, "token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, IsConfigurationError(err))
			assert.False(t, IsValidationError(err))

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNew_TokenOptionalByDefault(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:8090", Collection: "users"})
	require.NoError(t, err)
	assert.Empty(t, c.Token())
}

func TestNew_TimeoutDoesNotMutateCallerClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c, err := New(Config{BaseURL: "https://example.com", Collection: "users", HTTPClient: shared, Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.HTTP.Timeout)
	assert.Equal(t, time.Minute, shared.Timeout)
}

func TestExecute_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Expected bearer token header, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("User-Agent") != "pb-test/1.0" {
			t.Errorf("Expected User-Agent pb-test/1.0, got %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL, Collection: "users", Token: "secret", UserAgent: "pb-test/1.0"})
	require.NoError(t, err)

	res := c.Records().List(context.Background(), nil, 1, 20)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, map[string]any{"ok": true}, res.Response)
}

func TestExecute_NoAuthorizationWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Errorf("Expected no Authorization header, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	res := c.Auth().ListAuthMethods(context.Background(), nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestExecute_BodyAndContentLength(t *testing.T) {
	var (
		gotBody   []byte
		gotLength string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotLength = strconv.FormatInt(r.ContentLength, 10)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	res := c.Records().Create(context.Background(), map[string]any{"title": "héllo"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.JSONEq(t, `{"title":"héllo"}`, string(gotBody))
	assert.Equal(t, strconv.Itoa(len(gotBody)), gotLength)
}

func TestExecute_NoBodyOnGetAndDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("Expected empty body for %s, got %q", r.Method, body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	res := c.Records().Delete(context.Background(), "abc")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Nil(t, res.Response)
}

func TestExecute_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	res := c.Records().Get(context.Background(), "abc", nil)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Nil(t, res.Response)
	assert.Equal(t, "<html>bad gateway</html>", string(res.Raw))
}

func TestExecute_APIErrorPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"message":"The requested resource wasn't found.","data":{}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	res := c.Records().Get(context.Background(), "missing", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "The requested resource wasn't found.", res.Get("message").String())
}

func TestExecute_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url, nil)
	res := c.Records().List(context.Background(), nil, 1, 20)

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	body, ok := res.Response.(map[string]any)
	require.True(t, ok, "expected map response, got %T", res.Response)
	assert.Contains(t, body["error"], "request failed")
	assert.Contains(t, res.Get("error").String(), "request failed")
	assert.True(t, res.TransportFailure())

	var apiErr *APIError
	require.ErrorAs(t, res.Err(), &apiErr)
	assert.True(t, apiErr.Transport)
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
func (failingBody) Close() error { return nil }

func TestExecute_BodyReadFailure(t *testing.T) {
	c := newTestClient(t, "https://x.test", func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: failingBody{}}, nil
	})
	res := c.Records().Get(context.Background(), "a", nil)

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, res.Get("error").String(), "failed to read response")
	assert.True(t, res.TransportFailure())
}

func TestExecute_ServerErrorIsNotTransportFailure(t *testing.T) {
	c := newTestClient(t, "https://x.test", func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"code":500,"message":"request failed: hook panicked"}`), nil
	})
	res := c.Records().Get(context.Background(), "a", nil)

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.False(t, res.TransportFailure())
	var apiErr *APIError
	require.ErrorAs(t, res.Err(), &apiErr)
	assert.False(t, apiErr.Transport)
}

func TestExecute_LogsAtLoggerDebugLevel(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.level}))
			c, err := New(Config{
				BaseURL:    "https://x.test",
				Collection: "users",
				Logger:     logger,
				HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
					return jsonResponse(http.StatusOK, `{"items":[]}`), nil
				})},
			})
			require.NoError(t, err)

			c.Records().List(context.Background(), nil, 1, 20)

			if tt.want {
				assert.Contains(t, buf.String(), "request complete")
				assert.Contains(t, buf.String(), "status=200")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestExecute_RoundTripperError(t *testing.T) {
	c := newTestClient(t, "https://x.test", func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: lookup x.test: no such host")
	})
	res := c.Records().Get(context.Background(), "a", nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, res.Get("error").String(), "no such host")
}

func TestExecute_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := c.Records().List(ctx, nil, 1, 20)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.NotEmpty(t, res.Get("error").String())
}

func TestExecute_UnmarshalableBody(t *testing.T) {
	calls := 0
	c := newTestClient(t, "https://x.test", func(*http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	res := c.Records().Create(context.Background(), map[string]any{"ch": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, res.Get("error").String(), "marshal")
	assert.Zero(t, calls)
}

func TestExecute_CustomMethod(t *testing.T) {
	var gotMethod, gotURL string
	c := newTestClient(t, "https://x.test", func(req *http.Request) (*http.Response, error) {
		gotMethod = req.Method
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `[]`), nil
	})
	res := c.Do(context.Background(), "purge", "records", nil, Query{"a": 1})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "PURGE", gotMethod)
	assert.Equal(t, "https://x.test/api/collections/users/records?a=1", gotURL)
	assert.Equal(t, []any{}, res.Response)
}

func TestSetToken(t *testing.T) {
	var gotAuth []string
	c := newTestClient(t, "https://x.test", func(req *http.Request) (*http.Response, error) {
		gotAuth = append(gotAuth, req.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	ctx := context.Background()
	c.Records().Get(ctx, "a", nil)
	c.SetToken("one")
	c.Records().Get(ctx, "a", nil)
	c.SetToken("two")
	c.Records().Get(ctx, "a", nil)
	c.ClearToken()
	c.Records().Get(ctx, "a", nil)

	assert.Equal(t, []string{"", "Bearer one", "Bearer two", ""}, gotAuth)
}
