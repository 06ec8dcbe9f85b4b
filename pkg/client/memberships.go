package client

import (
	"context"
	"net/http"
	"net/url"
)

// MembershipsService manages donor memberships.
type MembershipsService struct {
	c *Client
}

// MembershipParams is the create payload for a membership.
type MembershipParams struct {
	DonorID   string `json:"donor_id"`
	Tier      string `json:"tier"`
	AutoRenew bool   `json:"auto_renew,omitempty"`
}

// MembershipUpdateParams is a partial update; nil fields are left untouched.
// Status moves only through Renew and Cancel.
type MembershipUpdateParams struct {
	Tier      *string `json:"tier,omitempty"`
	AutoRenew *bool   `json:"auto_renew,omitempty"`
}

// MembershipListOptions filters the membership collection.
type MembershipListOptions struct {
	ListOptions
	DonorID string
	Status  MembershipStatus
	Tier    MembershipTier
}

func (o MembershipListOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.DonorID != "" {
		v.Set("donor_id", o.DonorID)
	}
	if o.Status != "" {
		v.Set("status", string(o.Status))
	}
	if o.Tier != "" {
		v.Set("tier", string(o.Tier))
	}
	return v
}

func (s *MembershipsService) List(ctx context.Context, opts MembershipListOptions) (*Page[Membership], error) {
	var page Page[Membership]
	if err := s.c.doJSON(ctx, http.MethodGet, "/memberships", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MembershipsService) Create(ctx context.Context, params MembershipParams) (*Membership, error) {
	var m Membership
	if err := s.c.doJSON(ctx, http.MethodPost, "/memberships", nil, params, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MembershipsService) Get(ctx context.Context, id string) (*Membership, error) {
	var m Membership
	if err := s.c.doJSON(ctx, http.MethodGet, "/memberships/"+url.PathEscape(id), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MembershipsService) Update(ctx context.Context, id string, params MembershipUpdateParams) (*Membership, error) {
	var m Membership
	if err := s.c.doJSON(ctx, http.MethodPatch, "/memberships/"+url.PathEscape(id), nil, params, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Renew extends the membership by one term from its current expiry, or from
// now when it already lapsed.
func (s *MembershipsService) Renew(ctx context.Context, id string) (*Membership, error) {
	var m Membership
	if err := s.c.doJSON(ctx, http.MethodPost, "/memberships/"+url.PathEscape(id)+"/renew", nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Cancel ends the membership. Cancelled memberships never renew.
func (s *MembershipsService) Cancel(ctx context.Context, id string) (*Membership, error) {
	var m Membership
	if err := s.c.doJSON(ctx, http.MethodPost, "/memberships/"+url.PathEscape(id)+"/cancel", nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
