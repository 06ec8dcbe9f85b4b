package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func donorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donors",
		Short: "Manage donors",
	}
	cmd.AddCommand(
		donorsListCmd(),
		donorsGetCmd(),
		donorsAddCmd(),
		donorsUpdateCmd(),
		donorsRemoveCmd(),
		donorsDonationsCmd(),
	)
	return cmd
}

func donorsListCmd() *cobra.Command {
	var opts client.DonorListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := api.Donors.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tDONATED\tGIFTS\tLAST GIFT")
				for _, d := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						d.ID, truncate(d.Name, 30), d.Email,
						formatAmount(d.TotalDonatedCents), d.DonationCount,
						formatWhenPtr(d.LastDonationAt))
				}
				fmt.Fprintf(w, "\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Search, "query", "q", "", "match against name and email")
	addPageFlags(cmd, &opts.ListOptions)
	return cmd
}

func donorsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one donor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := api.Donors.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(d, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", d.ID)
				fmt.Fprintf(w, "Name:\t%s\n", d.Name)
				fmt.Fprintf(w, "Email:\t%s\n", d.Email)
				fmt.Fprintf(w, "Phone:\t%s\n", d.Phone)
				fmt.Fprintf(w, "Address:\t%s\n", d.Address)
				fmt.Fprintf(w, "Notes:\t%s\n", d.Notes)
				fmt.Fprintf(w, "Donated:\t%s over %d gifts\n", formatAmount(d.TotalDonatedCents), d.DonationCount)
				fmt.Fprintf(w, "Last gift:\t%s\n", formatWhenPtr(d.LastDonationAt))
				fmt.Fprintf(w, "Since:\t%s\n", formatWhen(d.CreatedAt))
			})
		},
	}
}

func donorParamFlags(cmd *cobra.Command, p *client.DonorParams) {
	cmd.Flags().StringVar(&p.Email, "email", "", "email address")
	cmd.Flags().StringVar(&p.Name, "name", "", "full name")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&p.Address, "address", "", "postal address")
	cmd.Flags().StringVar(&p.Notes, "notes", "", "freeform notes")
}

func donorsAddCmd() *cobra.Command {
	var params client.DonorParams
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a donor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := api.Donors.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Created donor %s (%s)\n", d.ID, d.Email)
			return nil
		},
	}
	donorParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func donorsUpdateCmd() *cobra.Command {
	var params client.DonorParams
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace a donor's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := api.Donors.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated donor %s\n", d.ID)
			return nil
		},
	}
	donorParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func donorsRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a donor and their donation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete donor %s without --yes", args[0])
			}
			if err := api.Donors.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted donor %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func donorsDonationsCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "donations [id]",
		Short: "List one donor's donations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := api.Donors.Donations(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				printDonationRows(w, page)
			})
		},
	}
	addPageFlags(cmd, &opts)
	return cmd
}

// addPageFlags wires the shared limit/offset pagination flags.
func addPageFlags(cmd *cobra.Command, opts *client.ListOptions) {
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (server default when 0)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "page offset")
}
