package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itzreqle/pocketbase-go-sdk/pocketbase"
)

func newAccountsCmd() *cobra.Command {
	cmd := newGroupCmd("accounts", "Create, update and delete user accounts", "account")
	cmd.AddCommand(newAccountsCreateCmd())
	cmd.AddCommand(newAccountsUpdateCmd())
	cmd.AddCommand(newAccountsDeleteCmd())
	return cmd
}

func newAccountsCreateCmd() *cobra.Command {
	var in pocketbase.AccountInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Create a user account in the collection.

passwordConfirm is set to the password. Name, description and avatar are sent
as null when omitted.`,
		Example: `  pb accounts create --username ada --email ada@example.com --name "Ada L"`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, in.Password, "password", "Password")
			if err != nil {
				return err
			}
			in.Password = pw
			client, _, err := getClient()
			if err != nil {
				return err
			}
			return printResult(cmd, client.Accounts().Create(cmdContext(cmd), in))
		}),
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.Avatar, "avatar", "", "Avatar value")
	return cmd
}

func newAccountsUpdateCmd() *cobra.Command {
	var bf recordBodyFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user account",
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
			res, err := client.Accounts().Update(cmdContext(cmd), args[0], body)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		}),
	}

	bf.register(cmd)
	return cmd
}

func newAccountsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			res, err := client.Accounts().Delete(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		}),
	}
}
