package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/causewayhq/causeway/pkg/client"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage events and tickets",
	}
	cmd.AddCommand(
		eventsListCmd(),
		eventsGetCmd(),
		eventsAddCmd(),
		eventsUpdateCmd(),
		eventsRemoveCmd(),
		eventsTicketsCmd(),
		eventsIssueCmd(),
		eventsCheckinCmd(),
	)
	return cmd
}

func eventsListCmd() *cobra.Command {
	var opts client.EventListOptions
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Status = client.EventStatus(status)
			page, err := api.Events.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSTARTS\tTICKETS\tCAPACITY")
				for _, e := range page.Items {
					capacity := "unlimited"
					if e.Capacity > 0 {
						capacity = fmt.Sprintf("%d", e.Capacity)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						e.ID, truncate(e.Title, 40), e.Status,
						formatWhen(e.StartsAt), e.TicketsIssued, capacity)
				}
				fmt.Fprintf(w, "\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (scheduled|cancelled|completed)")
	addPageFlags(cmd, &opts.ListOptions)
	return cmd
}

func eventsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := api.Events.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(e, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%s\n", e.ID)
				fmt.Fprintf(w, "Title:\t%s\n", e.Title)
				fmt.Fprintf(w, "Status:\t%s\n", e.Status)
				fmt.Fprintf(w, "Location:\t%s\n", e.Location)
				fmt.Fprintf(w, "Starts:\t%s\n", formatWhen(e.StartsAt))
				fmt.Fprintf(w, "Ends:\t%s\n", formatWhen(e.EndsAt))
				if e.Capacity > 0 {
					fmt.Fprintf(w, "Tickets:\t%d of %d\n", e.TicketsIssued, e.Capacity)
				} else {
					fmt.Fprintf(w, "Tickets:\t%d (unlimited)\n", e.TicketsIssued)
				}
				if e.PriceCents > 0 {
					fmt.Fprintf(w, "Price:\t%s\n", formatAmount(e.PriceCents))
				} else {
					fmt.Fprintf(w, "Price:\tfree\n")
				}
				fmt.Fprintf(w, "Campaign:\t%s\n", e.CampaignID)
			})
		},
	}
}

func eventParamFlags(cmd *cobra.Command, p *client.EventParams) {
	cmd.Flags().StringVar(&p.Title, "title", "", "event title")
	cmd.Flags().StringVar(&p.Slug, "slug", "", "URL slug (derived from the title when empty)")
	cmd.Flags().StringVar(&p.Description, "description", "", "long description")
	cmd.Flags().StringVar(&p.Location, "location", "", "venue or address")
	cmd.Flags().StringVar(&p.StartsAt, "starts-at", "", "start time, RFC 3339")
	cmd.Flags().StringVar(&p.EndsAt, "ends-at", "", "end time, RFC 3339")
	cmd.Flags().IntVar(&p.Capacity, "capacity", 0, "ticket capacity (0 = unlimited)")
	cmd.Flags().Int64Var(&p.PriceCents, "price-cents", 0, "ticket price in cents")
	cmd.Flags().StringVar(&p.CampaignID, "campaign", "", "linked campaign ID")
}

func eventsAddCmd() *cobra.Command {
	var params client.EventParams
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := api.Events.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("Created event %s (%s)\n", e.ID, e.Slug)
			return nil
		},
	}
	eventParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("starts-at")
	_ = cmd.MarkFlagRequired("ends-at")
	return cmd
}

func eventsUpdateCmd() *cobra.Command {
	var params client.EventParams
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace an event's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := api.Events.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Updated event %s\n", e.ID)
			return nil
		},
	}
	eventParamFlags(cmd, &params)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("starts-at")
	_ = cmd.MarkFlagRequired("ends-at")
	return cmd
}

func eventsRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete an event and its tickets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete event %s without --yes", args[0])
			}
			if err := api.Events.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted event %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func eventsTicketsCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "tickets [event-id]",
		Short: "List an event's tickets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := api.Events.Tickets(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return emit(page, func(w io.Writer) {
				fmt.Fprintln(w, "CODE\tHOLDER\tEMAIL\tSTATUS\tISSUED\tCHECKED IN")
				for _, t := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						t.Code, truncate(t.HolderName, 30), t.HolderEmail,
						t.Status, formatWhen(t.IssuedAt), formatWhenPtr(t.CheckedInAt))
				}
				fmt.Fprintf(w, "\t\t\t\t\t(%d of %d)\n", len(page.Items), page.Total)
			})
		},
	}
	addPageFlags(cmd, &opts)
	return cmd
}

func eventsIssueCmd() *cobra.Command {
	var params client.TicketParams
	cmd := &cobra.Command{
		Use:   "issue [event-id]",
		Short: "Issue a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := api.Events.IssueTicket(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			fmt.Printf("Issued ticket %s to %s\n", t.Code, t.HolderName)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.HolderName, "name", "", "ticket holder name")
	cmd.Flags().StringVar(&params.HolderEmail, "email", "", "ticket holder email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func eventsCheckinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin [event-id] [code]",
		Short: "Check a ticket in at the door",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := api.Events.CheckInTicket(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Checked in %s (%s) at %s\n", t.HolderName, t.Code, formatWhenPtr(t.CheckedInAt))
			return nil
		},
	}
}
