package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Organization-wide reports",
	}
	cmd.AddCommand(reportSummaryCmd())
	return cmd
}

func reportSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := api.Stats.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return emit(s, func(w io.Writer) {
				fmt.Fprintf(w, "Total raised:\t%s over %d donations\n", formatAmount(s.TotalRaisedCents), s.DonationCount)
				fmt.Fprintf(w, "Last 30 days:\t%s\n", formatAmount(s.RaisedLast30dCents))
				fmt.Fprintf(w, "Donors:\t%d\n", s.DonorCount)
				fmt.Fprintf(w, "Active campaigns:\t%d\n", s.ActiveCampaigns)
				fmt.Fprintf(w, "Active volunteers:\t%d\n", s.ActiveVolunteers)
				fmt.Fprintf(w, "Active memberships:\t%d\n", s.ActiveMemberships)
				fmt.Fprintf(w, "Upcoming events:\t%d\n", s.UpcomingEvents)
				fmt.Fprintf(w, "Published posts:\t%d\n", s.PublishedPosts)
			})
		},
	}
}
