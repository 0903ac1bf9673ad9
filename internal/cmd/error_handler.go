package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var cfgErr *pocketbase.ConfigurationError
	var apiErr *pocketbase.APIError

	switch {
	case errors.As(err, &cfgErr):
		fmt.Fprintf(&msg, "Configuration error: %s\n\n", cfgErr.Reason)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: pb profile login\n")
		msg.WriteString("  - Or set POCKETBASE_BASE_URL and POCKETBASE_COLLECTION (a .env file works)\n")

	case errors.As(err, &apiErr) && isTransportFailure(apiErr):
		msg.WriteString(transportMessage(apiErr.Message))

	case errors.As(err, &apiErr):
		message := apiErr.Message
		if message == "" {
			message = "request failed"
		}
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n", apiErr.StatusCode, message)
		if len(apiErr.Fields) > 0 {
			keys := make([]string, 0, len(apiErr.Fields))
			for k := range apiErr.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&msg, "  %s: %s\n", k, apiErr.Fields[k])
			}
		}
		msg.WriteString("\n")
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func transportMessage(detail string) string {
	var msg strings.Builder
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check if the PocketBase server is running\n")
		msg.WriteString("  - Verify the URL: pb profile status\n")
	case strings.Contains(lower, "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the PocketBase URL spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")
	case strings.Contains(lower, "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's certificate\n")
		msg.WriteString("  - Ensure you're using https:// correctly\n")
	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		msg.WriteString("Request timed out.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Increase --timeout\n")
		msg.WriteString("  - Check your network connection\n")
	case strings.HasPrefix(lower, "failed to read response"):
		msg.WriteString("The connection closed before the full response arrived.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Retry the command\n")
		msg.WriteString("  - Check for a proxy or load balancer cutting the connection\n")
	default:
		fmt.Fprintf(&msg, "Error: %s\n", detail)
	}
	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check your request parameters and filter syntax\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")

	case 401:
		suggestions.WriteString("  - Your token may be invalid or expired\n")
		suggestions.WriteString("  - Run: pb auth password --save or pb admin login\n")

	case 403:
		suggestions.WriteString("  - The collection API rules do not allow this action\n")
		suggestions.WriteString("  - Authenticate as a user or admin with access\n")

	case 404:
		suggestions.WriteString("  - The record or collection doesn't exist\n")
		suggestions.WriteString("  - Check the id and --collection\n")

	case 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait and retry in a few seconds\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Check the PocketBase server logs\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
