package client

import (
	"context"
	"net/http"
	"net/url"
)

// CampaignsService manages fundraising campaigns.
type CampaignsService struct {
	c *Client
}

// CampaignParams is the create and update payload for a campaign.
type CampaignParams struct {
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	GoalCents   int64  `json:"goal_cents,omitempty"`
	StartsAt    string `json:"starts_at,omitempty"` // RFC 3339; empty = now
	EndsAt      string `json:"ends_at,omitempty"`   // RFC 3339; empty = open-ended
}

// CampaignListOptions filters the campaign collection.
type CampaignListOptions struct {
	ListOptions
	Status CampaignStatus
}

func (o CampaignListOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.Status != "" {
		v.Set("status", string(o.Status))
	}
	return v
}

func (s *CampaignsService) List(ctx context.Context, opts CampaignListOptions) (*Page[Campaign], error) {
	var page Page[Campaign]
	if err := s.c.doJSON(ctx, http.MethodGet, "/campaigns", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *CampaignsService) Create(ctx context.Context, params CampaignParams) (*Campaign, error) {
	var c Campaign
	if err := s.c.doJSON(ctx, http.MethodPost, "/campaigns", nil, params, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CampaignsService) Get(ctx context.Context, id string) (*Campaign, error) {
	var c Campaign
	if err := s.c.doJSON(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id), nil, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CampaignsService) Update(ctx context.Context, id string, params CampaignParams) (*Campaign, error) {
	var c Campaign
	if err := s.c.doJSON(ctx, http.MethodPut, "/campaigns/"+url.PathEscape(id), nil, params, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CampaignsService) Delete(ctx context.Context, id string) error {
	return s.c.doJSON(ctx, http.MethodDelete, "/campaigns/"+url.PathEscape(id), nil, nil, nil)
}

// SetStatus moves a campaign through its lifecycle. Illegal transitions
// come back as ErrConflict.
func (s *CampaignsService) SetStatus(ctx context.Context, id string, status CampaignStatus) (*Campaign, error) {
	in := map[string]string{"status": string(status)}
	var c Campaign
	if err := s.c.doJSON(ctx, http.MethodPost, "/campaigns/"+url.PathEscape(id)+"/status", nil, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Stats returns the donation aggregates for one campaign.
func (s *CampaignsService) Stats(ctx context.Context, id string) (*CampaignStats, error) {
	var st CampaignStats
	if err := s.c.doJSON(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id)+"/stats", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
