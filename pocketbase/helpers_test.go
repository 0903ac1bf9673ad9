package pocketbase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// roundTripFunc lets tests answer requests for any host without a listener.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, baseURL string, rt roundTripFunc) *Client {
	t.Helper()
	cfg := Config{BaseURL: baseURL, Collection: "users"}
	if rt != nil {
		cfg.HTTPClient = &http.Client{Transport: rt}
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

type recordedCall struct {
	Method string
	URL    string
	Body   map[string]any
}

// recordingRequester is a Requester that never touches the network. It
// records every execute call and replies with a fixed result.
type recordingRequester struct {
	base  string
	token string
	reply Result
	calls []recordedCall
}

func newRecordingRequester() *recordingRequester {
	return &recordingRequester{base: "https://x.test", reply: Result{StatusCode: http.StatusOK}}
}

func (f *recordingRequester) collectionURL(path string, query Query) string {
	return BuildURL(f.base, "users", path, query)
}

func (f *recordingRequester) rootURL(path string) string {
	return f.base + "/" + strings.TrimLeft(path, "/")
}

func (f *recordingRequester) execute(_ context.Context, method, url string, body any) Result {
	call := recordedCall{Method: method, URL: url}
	if body != nil {
		data, _ := json.Marshal(body)
		_ = json.Unmarshal(data, &call.Body)
	}
	f.calls = append(f.calls, call)
	return f.reply
}

func (f *recordingRequester) SetToken(token string) { f.token = token }
func (f *recordingRequester) Token() string         { return f.token }
