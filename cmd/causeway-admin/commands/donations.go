package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func donationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donations",
		Short: "Record and manage donations",
	}
	cmd.AddCommand(
		donationsListCmd(),
		donationsGetCmd(),
		donationsRecordCmd(),
		donationsCompleteCmd(),
		donationsRefundCmd(),
		donationsReceiptCmd(),
	)
	return cmd
}

func printDonationRows(w io.Writer, page *client.Page[client.Donation]) {
	fmt.Fprintln(w, "ID\tDONOR\tCAMPAIGN\tAMOUNT\tMETHOD\tSTATUS\tRECEIVED")
	for _, d := range page.Items {
		campaign := d.CampaignID
		if campaign == "" {
			campaign = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.DonorID, campaign,
			formatMoney(d.AmountCents, d.Currency), d.Method, d.Status,
			formatWhen(d.ReceivedAt))
	}
	fmt.Fprintf(w, "\t\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
}

func donationsListCmd() *cobra.Command {
	var opts client.DonationListOptions
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Status = client.DonationStatus(status)
			page, err := api.Donations.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				printDonationRows(w, page)
			})
		},
	}
	cmd.Flags().StringVar(&opts.DonorID, "donor", "", "filter by donor ID")
	cmd.Flags().StringVar(&opts.CampaignID, "campaign", "", "filter by campaign ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending|completed|refunded)")
	addPageFlags(cmd, &opts.ListOptions)
	return cmd
}

func donationsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one donation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := api.Donations.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(d, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", d.ID)
				fmt.Fprintf(w, "Donor:\t%s\n", d.DonorID)
				fmt.Fprintf(w, "Campaign:\t%s\n", d.CampaignID)
				fmt.Fprintf(w, "Amount:\t%s\n", formatMoney(d.AmountCents, d.Currency))
				fmt.Fprintf(w, "Method:\t%s\n", d.Method)
				fmt.Fprintf(w, "Status:\t%s\n", d.Status)
				fmt.Fprintf(w, "Message:\t%s\n", d.Message)
				fmt.Fprintf(w, "Received:\t%s\n", formatWhen(d.ReceivedAt))
				fmt.Fprintf(w, "Receipt sent:\t%s\n", formatWhenPtr(d.ReceiptSentAt))
			})
		},
	}
}

func donationsRecordCmd() *cobra.Command {
	var params client.DonationParams
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a donation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := api.Donations.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded donation %s: %s (%s)\n", d.ID, formatMoney(d.AmountCents, d.Currency), d.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.DonorID, "donor", "", "donor ID")
	cmd.Flags().StringVar(&params.CampaignID, "campaign", "", "campaign ID")
	cmd.Flags().Int64Var(&params.AmountCents, "cents", 0, "amount in cents")
	cmd.Flags().StringVar(&params.Currency, "currency", "USD", "ISO currency code")
	cmd.Flags().StringVar(&params.Method, "method", "card", "payment method (card|bank|cash|other)")
	cmd.Flags().StringVar(&params.Status, "status", "", "initial status (pending|completed, default completed)")
	cmd.Flags().StringVar(&params.Message, "message", "", "donor message")
	cmd.Flags().StringVar(&params.ReceivedAt, "received-at", "", "receipt time, RFC 3339 (default now)")
	_ = cmd.MarkFlagRequired("donor")
	_ = cmd.MarkFlagRequired("cents")
	return cmd
}

func donationsCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [id]",
		Short: "Mark a pending donation as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := api.Donations.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Donation %s is now %s\n", d.ID, d.Status)
			return nil
		},
	}
}

func donationsRefundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refund [id]",
		Short: "Refund a completed donation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := api.Donations.Refund(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Donation %s is now %s\n", d.ID, d.Status)
			return nil
		},
	}
}

func donationsReceiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt [id]",
		Short: "Send the donation receipt email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := api.Donations.SendReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if result.Sent {
				fmt.Printf("Receipt for donation %s sent\n", args[0])
			} else {
				fmt.Printf("Receipt for donation %s recorded, mail delivery is disabled on the server\n", args[0])
			}
			return nil
		},
	}
}
