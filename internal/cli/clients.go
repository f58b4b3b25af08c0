package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/martijn/clientdesk/internal/api/util"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/repository"
	"github.com/martijn/clientdesk/internal/core/service"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  "Create, inspect, update and delete client records",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		query, _ := cmd.Flags().GetString("query")
		order, _ := cmd.Flags().GetString("order")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")

		listFilter, err := util.ParseListFilter(query, order, page, perPage,
			[]string{"id", "name", "cpf", "email", "created_at", "updated_at"},
			[]string{"id", "name", "email", "created_at", "updated_at"},
		)
		if err != nil {
			return err
		}

		clients, total, err := services.ClientService.ListClients(cmd.Context(), repository.ClientFilter{ListFilter: listFilter})
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No clients found")
			return nil
		}

		printClients(cmd.OutOrStdout(), clients)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d clients\n", len(clients), total)
		return nil
	},
}

var clientsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a client by id, --cpf or --email",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cpf, _ := cmd.Flags().GetString("cpf")
		email, _ := cmd.Flags().GetString("email")

		if len(args) == 0 && cpf == "" && email == "" {
			return fmt.Errorf("an id, --cpf or --email is required")
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		ctx := cmd.Context()
		var client *domain.ClientDTO
		switch {
		case len(args) == 1:
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err = services.ClientService.GetClientByID(ctx, id)
			if err != nil {
				return err
			}
		case cpf != "":
			client, err = services.ClientService.GetClientByCPF(ctx, cpf)
		default:
			client, err = services.ClientService.GetClientByEmail(ctx, email)
		}
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}
		if client == nil {
			return fmt.Errorf("client not found")
		}

		printClients(cmd.OutOrStdout(), []domain.ClientDTO{*client})
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add <name> <cpf> <email>",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		client, err := services.ClientService.CreateClient(cmd.Context(), service.NewClientInput{
			Name:  args[0],
			CPF:   args[1],
			Email: args[2],
		})
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Client created successfully with ID %s\n", client.ID)
		return nil
	},
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a client's name, CPF or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		patch := service.ClientPatch{
			Name:  changedFlag(cmd, "name"),
			CPF:   changedFlag(cmd, "cpf"),
			Email: changedFlag(cmd, "email"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name, --cpf or --email")
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		client, err := services.ClientService.UpdateClient(cmd.Context(), id, patch)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		if client == nil {
			return fmt.Errorf("client not found: %d", id)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Client '%d' updated successfully\n", id)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			if !confirm(cmd, fmt.Sprintf("Are you sure you want to delete client '%d'?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
		}

		deleted, err := services.ClientService.DeleteClient(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		if !deleted {
			return fmt.Errorf("client not found: %d", id)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Client '%d' deleted successfully\n", id)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default clients into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		inserted, err := services.ClientService.SeedClients(cmd.Context(), service.DefaultSeedClients)
		if err != nil {
			return err
		}

		if inserted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Clients already present, nothing seeded")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d clients\n", inserted)
		return nil
	},
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid client ID: %s", arg)
	}
	return id, nil
}

// changedFlag returns the flag value only when the user set it
func changedFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}

func printClients(out io.Writer, clients []domain.ClientDTO) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCPF\tEMAIL\tCREATED AT\tUPDATED AT")
	for _, client := range clients {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			client.ID,
			client.Name,
			client.CPF,
			client.Email,
			client.CreatedAt.Format("2006-01-02 15:04:05"),
			client.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
}

func init() {
	clientsListCmd.Flags().String("query", "", "filter, e.g. 'name|contains|doe'")
	clientsListCmd.Flags().String("order", "", "ordering, e.g. 'name|asc'")
	clientsListCmd.Flags().Int("page", 1, "page number")
	clientsListCmd.Flags().Int("per-page", util.DefaultPerPage, "clients per page")

	clientsGetCmd.Flags().String("cpf", "", "look up by CPF")
	clientsGetCmd.Flags().String("email", "", "look up by email")

	clientsUpdateCmd.Flags().String("name", "", "new name")
	clientsUpdateCmd.Flags().String("cpf", "", "new CPF")
	clientsUpdateCmd.Flags().String("email", "", "new email")

	clientsDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(seedCmd)
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsGetCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsUpdateCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)
}
