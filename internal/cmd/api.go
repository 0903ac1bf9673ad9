package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newAPICmd() *cobra.Command {
	var method string
	var fields []string
	var rawFields []string
	var inputFile string
	var jsonBody string
	var queryPairs []string

	cmd := &cobra.Command{
		Use:   "api <path>",
		Short: "Make raw API requests to any collection endpoint",
		Long: `Make raw API requests to any endpoint of the configured collection.

The path is relative to the collection base path:
  /api/collections/{collection}/<path>

A path that already starts with api/collections/{collection}/ is used as-is.`,
		Example: `  # GET request (default)
  pb api records/abc123

  # POST with string fields
  pb api records -X POST -f title=hello -f status=draft

  # PATCH with a JSON value
  pb api records/abc123 -X PATCH -F 'tags=["a","b"]'

  # Query parameters
  pb api records --query 'filter=status="draft"' --query perPage=5

  # Body from stdin
  echo '{"title":"x"}' | pb api records -X POST -i -`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			method = strings.ToUpper(strings.TrimSpace(method))
			validMethods := map[string]bool{
				"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
			}
			if !validMethods[method] {
				return fmt.Errorf("invalid HTTP method %q: must be one of GET, POST, PUT, PATCH, DELETE", method)
			}
			if jsonBody != "" && inputFile != "" {
				return fmt.Errorf("cannot use both --body and --input flags")
			}

			body, err := buildRequestBody(fields, rawFields, inputFile, jsonBody)
			if err != nil {
				return err
			}
			query, err := parseQueryPairs(queryPairs)
			if err != nil {
				return err
			}

			client, _, err := getClient()
			if err != nil {
				return err
			}

			var payload any
			if body != nil {
				payload = body
			}
			return printResult(cmd, client.Do(cmdContext(cmd), method, args[0], payload, query))
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Request body field as key=value (string)")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "Request body field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&jsonBody, "body", "d", "", "Request body as inline JSON object")
	cmd.Flags().StringArrayVar(&queryPairs, "query", nil, "Query parameter as key=value (repeatable)")

	return cmd
}

// buildRequestBody constructs the request body from fields and/or input file/inline JSON
func buildRequestBody(fields, rawFields []string, inputFile, jsonBody string) (map[string]any, error) {
	body := make(map[string]any)

	// Inline JSON first; fields override it.
	if jsonBody != "" {
		if err := json.Unmarshal([]byte(jsonBody), &body); err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
	}

	if inputFile != "" {
		var inputData []byte
		var err error

		if inputFile == "-" {
			inputData, err = io.ReadAll(os.Stdin)
		} else {
			inputData, err = os.ReadFile(inputFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		if err := json.Unmarshal(inputData, &body); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	for _, field := range fields {
		key, value, err := parseField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	for _, field := range rawFields {
		key, value, err := parseRawField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// parseField parses a key=value field where value is a string
func parseField(field string) (string, string, error) {
	key, value, ok := strings.Cut(field, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	return key, value, nil
}

// parseRawField parses a key=value field where value is JSON
func parseRawField(field string) (string, any, error) {
	key, raw, ok := strings.Cut(field, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid raw field format %q: must be key=value", field)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return "", nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
	}
	return key, value, nil
}
