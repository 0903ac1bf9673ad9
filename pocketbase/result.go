package pocketbase

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Result is the uniform outcome of every request: the HTTP status and the
// decoded JSON body. Response is nil when the body is empty or not JSON
// (e.g. 204 No Content). Transport failures are reported as StatusCode 500
// with Response {"error": "..."}.
type Result struct {
	StatusCode int `json:"statusCode"`
	Response   any `json:"response"`

	// Raw is the undecoded response body.
	Raw []byte `json:"-"`

	transport bool
}

func newResult(status int, body []byte) Result {
	r := Result{StatusCode: status, Raw: body}
	if len(body) > 0 {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			r.Response = decoded
		}
	}
	return r
}

func failureResult(msg string) Result {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return Result{
		StatusCode: http.StatusInternalServerError,
		Response:   map[string]any{"error": msg},
		Raw:        raw,
	}
}

// transportFailure is a failureResult for a request that got no complete
// response from the server.
func transportFailure(msg string) Result {
	r := failureResult(msg)
	r.transport = true
	return r
}

// TransportFailure reports a Result synthesized because the server could not
// be reached or its response could not be read.
func (r Result) TransportFailure() bool {
	return r.transport
}

// OK reports a 2xx status.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get looks up a gjson path in the response body, e.g. "record.email" or
// "items.#.id".
func (r Result) Get(path string) gjson.Result {
	if len(r.Raw) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Raw, path)
}

// Token returns the "token" field of an auth response, or "".
func (r Result) Token() string {
	t := r.Get("token")
	if t.Type != gjson.String {
		return ""
	}
	return t.String()
}

// Decode unmarshals the raw response body into v.
func (r Result) Decode(v any) error {
	if len(r.Raw) == 0 {
		return fmt.Errorf("empty response body (status %d)", r.StatusCode)
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return nil
}

// Err converts a non-2xx result into an *APIError. It returns nil for 2xx.
// Callers that branch on StatusCode directly never need it.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return newAPIError(r)
}
