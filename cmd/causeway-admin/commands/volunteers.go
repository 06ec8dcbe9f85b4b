package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func volunteersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volunteers",
		Short: "Manage volunteers",
	}
	cmd.AddCommand(
		volunteersListCmd(),
		volunteersGetCmd(),
		volunteersAddCmd(),
		volunteersUpdateCmd(),
		volunteersRemoveCmd(),
		volunteersStatusCmd(),
	)
	return cmd
}

func volunteersListCmd() *cobra.Command {
	var opts client.VolunteerListOptions
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List volunteers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Status = client.VolunteerStatus(status)
			page, err := api.Volunteers.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tSKILLS\tJOINED")
				for _, v := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						v.ID, truncate(v.Name, 30), v.Email, v.Status,
						truncate(strings.Join(v.Skills, ", "), 40),
						formatWhenPtr(v.JoinedAt))
				}
				fmt.Fprintf(w, "\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending|active|inactive)")
	addPageFlags(cmd, &opts.ListOptions)
	return cmd
}

func volunteersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one volunteer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := api.Volunteers.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(v, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", v.ID)
				fmt.Fprintf(w, "Name:\t%s\n", v.Name)
				fmt.Fprintf(w, "Email:\t%s\n", v.Email)
				fmt.Fprintf(w, "Phone:\t%s\n", v.Phone)
				fmt.Fprintf(w, "Status:\t%s\n", v.Status)
				fmt.Fprintf(w, "Skills:\t%s\n", strings.Join(v.Skills, ", "))
				fmt.Fprintf(w, "Joined:\t%s\n", formatWhenPtr(v.JoinedAt))
			})
		},
	}
}

func volunteerParamFlags(cmd *cobra.Command, p *client.VolunteerParams) {
	cmd.Flags().StringVar(&p.Email, "email", "", "email address")
	cmd.Flags().StringVar(&p.Name, "name", "", "full name")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "phone number")
	cmd.Flags().StringSliceVar(&p.Skills, "skills", nil, "skills (repeat or comma-separate)")
}

func volunteersAddCmd() *cobra.Command {
	var params client.VolunteerParams
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a volunteer (starts as pending)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := api.Volunteers.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Created volunteer %s (%s)\n", v.ID, v.Email)
			return nil
		},
	}
	volunteerParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func volunteersUpdateCmd() *cobra.Command {
	var params client.VolunteerParams
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace a volunteer's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := api.Volunteers.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated volunteer %s\n", v.ID)
			return nil
		},
	}
	volunteerParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func volunteersRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a volunteer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete volunteer %s without --yes", args[0])
			}
			if err := api.Volunteers.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted volunteer %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func volunteersStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [pending|active|inactive]",
		Short: "Change a volunteer's status",
		Long:  "Change a volunteer's status. The first activation stamps the joined date.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := api.Volunteers.SetStatus(cmd.Context(), args[0], client.VolunteerStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("Volunteer %s is now %s\n", v.ID, v.Status)
			return nil
		},
	}
}
