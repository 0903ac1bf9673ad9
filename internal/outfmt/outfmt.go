// Package outfmt renders pb command output. Text mode prints an HTTP status
// line and the pretty body; JSON mode prints the {"statusCode","response"}
// envelope, optionally reshaped by a jq query.
package outfmt

import (
	"context"
	"fmt"
)

// Mode selects how results are printed.
type Mode int

const (
	Text Mode = iota
	JSON
)

func (m Mode) String() string {
	if m == JSON {
		return "json"
	}
	return "text"
}

// ParseMode accepts "text", "json" or "" (text).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "text":
		return Text, nil
	case "json":
		return JSON, nil
	}
	return Text, fmt.Errorf("invalid output format: %q (use 'text' or 'json')", s)
}

// Options is the output setup for one invocation, built from the global
// --output, --json, --jq and --compact-json flags.
type Options struct {
	Mode    Mode
	Query   string
	Compact bool
}

// JSON reports whether machine-readable output was requested. A jq query
// only makes sense over JSON, so it implies JSON.
func (o Options) JSON() bool {
	return o.Mode == JSON || o.Query != ""
}

type optionsKey struct{}

func WithOptions(ctx context.Context, o Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, o)
}

// FromContext returns the Options stored by WithOptions, or text output.
func FromContext(ctx context.Context) Options {
	if o, ok := ctx.Value(optionsKey{}).(Options); ok {
		return o
	}
	return Options{}
}
