package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff accounts (admin only)",
	}
	cmd.AddCommand(
		usersListCmd(),
		usersAddCmd(),
		usersUpdateCmd(),
		usersRemoveCmd(),
	)
	return cmd
}

func usersListCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := api.Users.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
				for _, u := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
						u.ID, truncate(u.Name, 30), u.Email, u.Role, u.Active)
				}
				fmt.Fprintf(w, "\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	addPageFlags(cmd, &opts)
	return cmd
}

func usersAddCmd() *cobra.Command {
	var params client.UserCreateParams
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := api.Users.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (%s, %s)\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.Email, "email", "", "email address")
	cmd.Flags().StringVar(&params.Name, "name", "", "full name")
	cmd.Flags().StringVar(&params.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&params.Role, "role", "", "role (admin|staff|viewer, default viewer)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func usersUpdateCmd() *cobra.Command {
	var name, role, password string
	var active bool
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change an account",
		Long:  "Change an account. Password changes and deactivation revoke the user's sessions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params client.UserUpdateParams
			if cmd.Flags().Changed("name") {
				params.Name = &name
			}
			if cmd.Flags().Changed("role") {
				params.Role = &role
			}
			if cmd.Flags().Changed("password") {
				params.Password = &password
			}
			if cmd.Flags().Changed("active") {
				params.Active = &active
			}
			if params.Name == nil && params.Role == nil && params.Password == nil && params.Active == nil {
				return fmt.Errorf("nothing to update")
			}
			u, err := api.Users.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated user %s (%s, active: %v)\n", u.ID, u.Role, u.Active)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&role, "role", "", "new role (admin|staff|viewer)")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.Flags().BoolVar(&active, "active", true, "activate or deactivate")
	return cmd
}

func usersRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete user %s without --yes", args[0])
			}
			if err := api.Users.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted user %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
