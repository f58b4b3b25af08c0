package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage operators",
	Long:  "Manage the operators who log in through /auth/authorize",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add an operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		password, err := promptNewPassword(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := services.AuthService.CreateUser(cmd.Context(), args[0], password); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User '%s' created\n", args[0])
		return nil
	},
}

var usersPasswdCmd = &cobra.Command{
	Use:     "passwd <username>",
	Aliases: []string{"update-password"},
	Short:   "Change an operator's password",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		password, err := promptNewPassword(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		found, err := services.AuthService.ChangePassword(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("user not found: %s", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Password changed for '%s'\n", args[0])
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if !confirm(cmd, fmt.Sprintf("Delete user '%s'?", args[0])) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}

		deleted, err := services.AuthService.DeleteUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("user not found: %s", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User '%s' deleted\n", args[0])
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operators",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		users, err := services.AuthService.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No users found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tCREATED AT\tUPDATED AT")
		for _, user := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				user.Username,
				user.CreatedAt.Format("2006-01-02 15:04:05"),
				user.UpdatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		w.Flush()
		return nil
	},
}

// promptNewPassword reads a password twice from the terminal without echo
func promptNewPassword(out io.Writer) (string, error) {
	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	password, err := read("Password: ")
	if err != nil {
		return "", err
	}
	again, err := read("Repeat password: ")
	if err != nil {
		return "", err
	}
	if password != again {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersPasswdCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersListCmd)
}
