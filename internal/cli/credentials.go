package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage API credentials",
	Long: `Manage credentials used with the client_credentials grant.

Scopes: clients:read, clients:write (implies clients:read) and
credentials:manage. A credential created without --scope may only read.`,
}

var credentialsAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Add a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scopes, err := scopeFlag(cmd)
		if err != nil {
			return err
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		credential, secret, err := services.AuthService.CreateCredential(cmd.Context(), args[0], scopes)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Credential created")
		fmt.Fprintf(out, "Client ID: %s\n", credential.ID)
		fmt.Fprintf(out, "Client Secret: %s\n", secret)
		fmt.Fprintf(out, "Scopes: %s\n", credential.Scopes)
		fmt.Fprintln(out, "\nThe secret is shown only once.")
		return nil
	},
}

var credentialsUpdateCmd = &cobra.Command{
	Use:   "update <credential-id>",
	Short: "Change a credential's label or scopes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := changedFlag(cmd, "label")
		scopes, err := scopeFlag(cmd)
		if err != nil {
			return err
		}
		if label == nil && len(scopes) == 0 {
			return fmt.Errorf("nothing to update: pass --label or --scope")
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		credential, err := services.AuthService.UpdateCredential(cmd.Context(), args[0], label, scopes)
		if err != nil {
			return err
		}
		if credential == nil {
			return fmt.Errorf("credential not found: %s", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Credential '%s' updated (%s)\n", credential.ID, credential.Scopes)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <credential-id>",
	Short: "Delete a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if !confirm(cmd, fmt.Sprintf("Delete credential '%s'?", args[0])) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}

		deleted, err := services.AuthService.DeleteCredential(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("credential not found: %s", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Credential '%s' deleted\n", args[0])
		return nil
	},
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		credentials, err := services.AuthService.ListCredentials(cmd.Context())
		if err != nil {
			return err
		}
		if len(credentials) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No credentials found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CLIENT ID\tLABEL\tSCOPES\tCREATED AT")
		for _, credential := range credentials {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				credential.ID,
				credential.Label,
				credential.Scopes,
				credential.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		w.Flush()
		return nil
	},
}

func scopeFlag(cmd *cobra.Command) (domain.Scopes, error) {
	names, _ := cmd.Flags().GetStringSlice("scope")
	return domain.NewScopes(names...)
}

// confirm asks a yes/no question on stdin
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (yes/no): ", question)
	var answer string
	fmt.Fscanln(cmd.InOrStdin(), &answer)
	return answer == "yes"
}

func init() {
	credentialsAddCmd.Flags().StringSlice("scope", nil, "scopes to grant, repeatable or comma separated")
	credentialsUpdateCmd.Flags().StringSlice("scope", nil, "replace the granted scopes")
	credentialsUpdateCmd.Flags().String("label", "", "new label")

	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsAddCmd)
	credentialsCmd.AddCommand(credentialsUpdateCmd)
	credentialsCmd.AddCommand(credentialsDeleteCmd)
	credentialsCmd.AddCommand(credentialsListCmd)
}
