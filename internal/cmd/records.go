package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

func newRecordsCmd() *cobra.Command {
	cmd := newGroupCmd("records", "List, read and modify records in the collection", "record", "rec")
	cmd.AddCommand(newRecordsListCmd())
	cmd.AddCommand(newRecordsGetCmd())
	cmd.AddCommand(newRecordsCreateCmd())
	cmd.AddCommand(newRecordsUpdateCmd())
	cmd.AddCommand(newRecordsDeleteCmd())
	return cmd
}

// recordQueryFlags are the PocketBase list/view query options.
type recordQueryFlags struct {
	filter string
	sort   string
	expand string
	fields string
	extra  []string
}

func (f *recordQueryFlags) register(cmd *cobra.Command, listing bool) {
	if listing {
		cmd.Flags().StringVar(&f.filter, "filter", "", `PocketBase filter expression, e.g. 'verified=true && created>"2024-01-01"'`)
		cmd.Flags().StringVar(&f.sort, "sort", "", "Sort fields, e.g. -created,id")
	}
	cmd.Flags().StringVar(&f.expand, "expand", "", "Relations to expand")
	cmd.Flags().StringVar(&f.fields, "fields", "", "Comma separated fields to return")
	cmd.Flags().StringArrayVar(&f.extra, "query", nil, "Extra query parameter as key=value (repeatable)")
}

func (f *recordQueryFlags) build() (pocketbase.Query, error) {
	q, err := parseQueryPairs(f.extra)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = pocketbase.Query{}
	}
	for key, value := range map[string]string{
		"filter": f.filter,
		"sort":   f.sort,
		"expand": f.expand,
		"fields": f.fields,
	} {
		if value != "" {
			q[key] = value
		}
	}
	if len(q) == 0 {
		return nil, nil
	}
	return q, nil
}

func newRecordsListCmd() *cobra.Command {
	var qf recordQueryFlags
	var page, perPage int
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List records",
		Example: `  pb records list --filter 'verified=true' --sort -created
  pb records list --all --per-page 200 --json --jq '.response.items[].id'`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			query, err := qf.build()
			if err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			if !all {
				return printResult(cmd, client.Records().List(ctx, query, page, perPage))
			}

			items, last := client.Records().ListAll(ctx, query, perPage)
			if !last.OK() {
				return printResult(cmd, last)
			}
			if items == nil {
				items = []map[string]any{}
			}
			return printResult(cmd, pocketbase.Result{
				StatusCode: last.StatusCode,
				Response: map[string]any{
					"items":      items,
					"totalItems": len(items),
				},
			})
		}),
	}

	qf.register(cmd, true)
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&perPage, "per-page", pocketbase.DefaultPerPage, "Records per page")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page and print the combined items")
	return cmd
}

func newRecordsGetCmd() *cobra.Command {
	var qf recordQueryFlags

	cmd := &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"view", "show"},
		Short:   "Get a record by id",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			query, err := qf.build()
			if err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Records().Get(cmdContext(cmd), args[0], query))
		}),
	}

	qf.register(cmd, false)
	return cmd
}

// recordBodyFlags collect a record payload the same way the api command does.
type recordBodyFlags struct {
	fields    []string
	rawFields []string
	inputFile string
	jsonBody  string
}

func (f *recordBodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.fields, "field", "f", nil, "Field as key=value (string)")
	cmd.Flags().StringArrayVarP(&f.rawFields, "raw-field", "F", nil, "Field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&f.inputFile, "input", "i", "", "Read record JSON from file (use - for stdin)")
	cmd.Flags().StringVarP(&f.jsonBody, "data", "d", "", "Record as inline JSON object")
}

func (f *recordBodyFlags) build() (map[string]any, error) {
	if f.jsonBody != "" && f.inputFile != "" {
		return nil, errConflictingBody
	}
	body, err := buildRequestBody(f.fields, f.rawFields, f.inputFile, f.jsonBody)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errMissingBody
	}
	return body, nil
}

func newRecordsCreateCmd() *cobra.Command {
	var bf recordBodyFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		Example: `  pb records create -f title=hello -F published=true
  pb records create -d '{"title":"hello"}'`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			body, err := bf.build()
			if err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Records().Create(cmdContext(cmd), body))
		}),
	}

	bf.register(cmd)
	return cmd
}

func newRecordsUpdateCmd() *cobra.Command {
	var bf recordBodyFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Patch a record",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			body, err := bf.build()
			if err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Records().Update(cmdContext(cmd), args[0], body))
		}),
	}

	bf.register(cmd)
	return cmd
}

func newRecordsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a record",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Records().Delete(cmdContext(cmd), args[0]))
		}),
	}
}
