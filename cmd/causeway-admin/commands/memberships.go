package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func membershipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memberships",
		Short: "Manage donor memberships",
	}
	cmd.AddCommand(
		membershipsListCmd(),
		membershipsGetCmd(),
		membershipsAddCmd(),
		membershipsUpdateCmd(),
		membershipsRenewCmd(),
		membershipsCancelCmd(),
	)
	return cmd
}

func membershipsListCmd() *cobra.Command {
	var opts client.MembershipListOptions
	var status, tier string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memberships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Status = client.MembershipStatus(status)
			opts.Tier = client.MembershipTier(tier)
			page, err := api.Memberships.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tDONOR\tTIER\tSTATUS\tAUTO-RENEW\tEXPIRES")
				for _, m := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\n",
						m.ID, m.DonorID, m.Tier, m.Status, m.AutoRenew,
						formatWhen(m.ExpiresAt))
				}
				fmt.Fprintf(w, "\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	cmd.Flags().StringVar(&opts.DonorID, "donor", "", "filter by donor ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active|lapsed|cancelled)")
	cmd.Flags().StringVar(&tier, "tier", "", "filter by tier (basic|silver|gold|patron)")
	addPageFlags(cmd, &opts.ListOptions)
	return cmd
}

func membershipsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one membership",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := api.Memberships.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(m, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", m.ID)
				fmt.Fprintf(w, "Donor:\t%s\n", m.DonorID)
				fmt.Fprintf(w, "Tier:\t%s\n", m.Tier)
				fmt.Fprintf(w, "Status:\t%s\n", m.Status)
				fmt.Fprintf(w, "Auto-renew:\t%v\n", m.AutoRenew)
				fmt.Fprintf(w, "Started:\t%s\n", formatWhen(m.StartedAt))
				fmt.Fprintf(w, "Expires:\t%s\n", formatWhen(m.ExpiresAt))
			})
		},
	}
}

func membershipsAddCmd() *cobra.Command {
	var params client.MembershipParams
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Enroll a donor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := api.Memberships.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Created membership %s (%s, expires %s)\n", m.ID, m.Tier, formatWhen(m.ExpiresAt))
			return nil
		},
	}
	cmd.Flags().StringVar(&params.DonorID, "donor", "", "donor ID")
	cmd.Flags().StringVar(&params.Tier, "tier", string(client.TierBasic), "tier (basic|silver|gold|patron)")
	cmd.Flags().BoolVar(&params.AutoRenew, "auto-renew", false, "renew automatically on expiry")
	_ = cmd.MarkFlagRequired("donor")
	return cmd
}

func membershipsUpdateCmd() *cobra.Command {
	var tier string
	var autoRenew bool
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change tier or auto-renew",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params client.MembershipUpdateParams
			if cmd.Flags().Changed("tier") {
				params.Tier = &tier
			}
			if cmd.Flags().Changed("auto-renew") {
				params.AutoRenew = &autoRenew
			}
			if params.Tier == nil && params.AutoRenew == nil {
				return fmt.Errorf("nothing to update, pass --tier or --auto-renew")
			}
			m, err := api.Memberships.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated membership %s (%s)\n", m.ID, m.Tier)
			return nil
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "new tier (basic|silver|gold|patron)")
	cmd.Flags().BoolVar(&autoRenew, "auto-renew", false, "renew automatically on expiry")
	return cmd
}

func membershipsRenewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renew [id]",
		Short: "Extend a membership by one period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := api.Memberships.Renew(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Membership %s renewed, now expires %s\n", m.ID, formatWhen(m.ExpiresAt))
			return nil
		},
	}
}

func membershipsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [id]",
		Short: "Cancel a membership",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := api.Memberships.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Membership %s is now %s\n", m.ID, m.Status)
			return nil
		},
	}
}
