package client

import (
	"context"
	"net/http"
	"net/url"
)

// EventsService manages events and their tickets.
type EventsService struct {
	c *Client
}

// EventParams is the create and update payload for an event.
type EventParams struct {
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartsAt    string `json:"starts_at"` // RFC 3339
	EndsAt      string `json:"ends_at"`   // RFC 3339
	Capacity    int    `json:"capacity,omitempty"`
	PriceCents  int64  `json:"price_cents,omitempty"`
	CampaignID  string `json:"campaign_id,omitempty"`
	Status      string `json:"status,omitempty"`
}

// TicketParams is the payload for issuing a ticket.
type TicketParams struct {
	HolderName  string `json:"holder_name"`
	HolderEmail string `json:"holder_email,omitempty"`
}

// EventListOptions filters the event collection.
type EventListOptions struct {
	ListOptions
	Status EventStatus
}

func (o EventListOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.Status != "" {
		v.Set("status", string(o.Status))
	}
	return v
}

func (s *EventsService) List(ctx context.Context, opts EventListOptions) (*Page[Event], error) {
	var page Page[Event]
	if err := s.c.doJSON(ctx, http.MethodGet, "/events", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *EventsService) Create(ctx context.Context, params EventParams) (*Event, error) {
	var e Event
	if err := s.c.doJSON(ctx, http.MethodPost, "/events", nil, params, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EventsService) Get(ctx context.Context, id string) (*Event, error) {
	var e Event
	if err := s.c.doJSON(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EventsService) Update(ctx context.Context, id string, params EventParams) (*Event, error) {
	var e Event
	if err := s.c.doJSON(ctx, http.MethodPut, "/events/"+url.PathEscape(id), nil, params, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EventsService) Delete(ctx context.Context, id string) error {
	return s.c.doJSON(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil, nil)
}

// Tickets lists the tickets issued for an event.
func (s *EventsService) Tickets(ctx context.Context, id string, opts ListOptions) (*Page[Ticket], error) {
	var page Page[Ticket]
	if err := s.c.doJSON(ctx, http.MethodGet, "/events/"+url.PathEscape(id)+"/tickets", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// IssueTicket issues one admission. A full event comes back as ErrConflict.
func (s *EventsService) IssueTicket(ctx context.Context, id string, params TicketParams) (*Ticket, error) {
	var t Ticket
	if err := s.c.doJSON(ctx, http.MethodPost, "/events/"+url.PathEscape(id)+"/tickets", nil, params, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CheckInTicket marks the ticket with the given code as used. A second
// check-in of the same code comes back as ErrConflict.
func (s *EventsService) CheckInTicket(ctx context.Context, eventID, code string) (*Ticket, error) {
	path := "/events/" + url.PathEscape(eventID) + "/tickets/" + url.PathEscape(code) + "/checkin"
	var t Ticket
	if err := s.c.doJSON(ctx, http.MethodPost, path, nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
