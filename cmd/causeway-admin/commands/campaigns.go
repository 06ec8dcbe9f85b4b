package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func campaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Manage fundraising campaigns",
	}
	cmd.AddCommand(
		campaignsListCmd(),
		campaignsGetCmd(),
		campaignsAddCmd(),
		campaignsUpdateCmd(),
		campaignsRemoveCmd(),
		campaignsStatusCmd(),
		campaignsStatsCmd(),
	)
	return cmd
}

func campaignsListCmd() *cobra.Command {
	var opts client.CampaignListOptions
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Status = client.CampaignStatus(status)
			page, err := api.Campaigns.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tRAISED\tGOAL\tDONORS")
				for _, c := range page.Items {
					goal := "open-ended"
					if c.GoalCents > 0 {
						goal = formatAmount(c.GoalCents)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
						c.ID, truncate(c.Title, 40), c.Status,
						formatAmount(c.RaisedCents), goal, c.DonorCount)
				}
				fmt.Fprintf(w, "\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft|active|completed|archived)")
	addPageFlags(cmd, &opts.ListOptions)
	return cmd
}

func campaignsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := api.Campaigns.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(c, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", c.ID)
				fmt.Fprintf(w, "Title:\t%s\n", c.Title)
				fmt.Fprintf(w, "Slug:\t%s\n", c.Slug)
				fmt.Fprintf(w, "Status:\t%s\n", c.Status)
				fmt.Fprintf(w, "Raised:\t%s from %d donors\n", formatAmount(c.RaisedCents), c.DonorCount)
				if c.GoalCents > 0 {
					fmt.Fprintf(w, "Goal:\t%s\n", formatAmount(c.GoalCents))
				} else {
					fmt.Fprintf(w, "Goal:\topen-ended\n")
				}
				fmt.Fprintf(w, "Starts:\t%s\n", formatWhen(c.StartsAt))
				fmt.Fprintf(w, "Ends:\t%s\n", formatWhenPtr(c.EndsAt))
				fmt.Fprintf(w, "Description:\t%s\n", truncate(c.Description, 120))
			})
		},
	}
}

func campaignParamFlags(cmd *cobra.Command, p *client.CampaignParams) {
	cmd.Flags().StringVar(&p.Title, "title", "", "campaign title")
	cmd.Flags().StringVar(&p.Slug, "slug", "", "URL slug (derived from the title when empty)")
	cmd.Flags().StringVar(&p.Description, "description", "", "long description")
	cmd.Flags().Int64Var(&p.GoalCents, "goal-cents", 0, "goal in cents (0 = open-ended)")
	cmd.Flags().StringVar(&p.StartsAt, "starts-at", "", "start time, RFC 3339 (default now)")
	cmd.Flags().StringVar(&p.EndsAt, "ends-at", "", "end time, RFC 3339 (empty = open-ended)")
}

func campaignsAddCmd() *cobra.Command {
	var params client.CampaignParams
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a campaign (starts as a draft)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := api.Campaigns.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Created campaign %s (%s)\n", c.ID, c.Slug)
			return nil
		},
	}
	campaignParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func campaignsUpdateCmd() *cobra.Command {
	var params client.CampaignParams
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace a campaign's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := api.Campaigns.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated campaign %s\n", c.ID)
			return nil
		},
	}
	campaignParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func campaignsRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete campaign %s without --yes", args[0])
			}
			if err := api.Campaigns.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted campaign %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func campaignsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [draft|active|completed|archived]",
		Short: "Move a campaign through its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := api.Campaigns.SetStatus(cmd.Context(), args[0], client.CampaignStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("Campaign %s is now %s\n", c.ID, c.Status)
			return nil
		},
	}
}

func campaignsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [id]",
		Short: "Show campaign aggregates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := api.Campaigns.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(s, func(w io.Writer) {
				fmt.Fprintf(w, "Raised:\t%s\n", formatAmount(s.RaisedCents))
				if s.GoalCents > 0 {
					fmt.Fprintf(w, "Goal:\t%s (%.1f%%)\n", formatAmount(s.GoalCents), s.Progress*100)
				} else {
					fmt.Fprintf(w, "Goal:\topen-ended\n")
				}
				fmt.Fprintf(w, "Donations:\t%d from %d donors\n", s.DonationCount, s.DonorCount)
				fmt.Fprintf(w, "Average:\t%s\n", formatAmount(s.AverageCents))
				fmt.Fprintf(w, "Largest:\t%s\n", formatAmount(s.LargestCents))
				fmt.Fprintf(w, "Refunded:\t%s\n", formatAmount(s.RefundedCents))
				fmt.Fprintf(w, "Pending:\t%d\n", s.PendingDonations)
			})
		},
	}
}
