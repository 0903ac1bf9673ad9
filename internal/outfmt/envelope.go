package outfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/itzreqle/pocketbase-go-sdk/internal/filter"
)

// WriteJSON encodes v, first running it through the jq query when one is
// set. Values are marshalled before filtering so struct tags such as
// "statusCode" are what the query sees.
func (o Options) WriteJSON(w io.Writer, v any) error {
	if o.Query == "" {
		return encode(w, v, o.Compact)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	filtered, err := filter.ApplyFromJSON(data, o.Query)
	if err != nil {
		return err
	}
	return encode(w, filtered, o.Compact)
}

func encode(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// WriteStatus is the text layout for a response: "HTTP <status>", then the
// decoded body indented, or the raw body when it was not JSON. An empty body
// prints only the status line.
func WriteStatus(w io.Writer, status int, decoded any, raw []byte) {
	_, _ = fmt.Fprintf(w, "HTTP %d\n", status)
	if decoded != nil {
		if pretty, err := json.MarshalIndent(decoded, "", "  "); err == nil {
			_, _ = fmt.Fprintln(w, string(pretty))
			return
		}
	}
	if len(raw) > 0 {
		_, _ = fmt.Fprintln(w, string(raw))
	}
}
