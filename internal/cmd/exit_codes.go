package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/pflag"

	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitForbidden   = 5
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	var apiErr *pocketbase.APIError
	if errors.As(err, &apiErr) {
		return exitCodeForAPIError(apiErr)
	}
	if pocketbase.IsConfigurationError(err) || pocketbase.IsValidationError(err) {
		return exitUsage
	}
	if isUsageError(err) {
		return exitUsage
	}
	if isNetworkError(err) {
		return exitNetwork
	}
	return exitGeneric
}

func exitCodeForAPIError(e *pocketbase.APIError) int {
	if isTransportFailure(e) {
		return exitNetwork
	}
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return exitAuth
	case e.StatusCode == http.StatusForbidden:
		return exitForbidden
	case e.StatusCode == http.StatusNotFound:
		return exitNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return exitRateLimited
	case e.StatusCode >= 500:
		return exitServer
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return exitUsage
	default:
		return exitGeneric
	}
}

// isTransportFailure reports a 500 synthesized by the client because no
// complete response arrived.
func isTransportFailure(e *pocketbase.APIError) bool {
	return e.Transport
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "certificate") ||
		strings.Contains(msg, "timeout")
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid query parameter",
		"must be",
		"is required",
		"missing",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
