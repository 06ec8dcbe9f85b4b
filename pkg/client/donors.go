package client

import (
	"context"
	"net/http"
	"net/url"
)

// DonorsService manages donor records.
type DonorsService struct {
	c *Client
}

// DonorParams is the create and update payload for a donor.
type DonorParams struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// DonorListOptions filters the donor collection.
type DonorListOptions struct {
	ListOptions
	// Search matches against name and email.
	Search string
}

func (o DonorListOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.Search != "" {
		v.Set("q", o.Search)
	}
	return v
}

func (s *DonorsService) List(ctx context.Context, opts DonorListOptions) (*Page[Donor], error) {
	var page Page[Donor]
	if err := s.c.doJSON(ctx, http.MethodGet, "/donors", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *DonorsService) Create(ctx context.Context, params DonorParams) (*Donor, error) {
	var d Donor
	if err := s.c.doJSON(ctx, http.MethodPost, "/donors", nil, params, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DonorsService) Get(ctx context.Context, id string) (*Donor, error) {
	var d Donor
	if err := s.c.doJSON(ctx, http.MethodGet, "/donors/"+url.PathEscape(id), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DonorsService) Update(ctx context.Context, id string, params DonorParams) (*Donor, error) {
	var d Donor
	if err := s.c.doJSON(ctx, http.MethodPut, "/donors/"+url.PathEscape(id), nil, params, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DonorsService) Delete(ctx context.Context, id string) error {
	return s.c.doJSON(ctx, http.MethodDelete, "/donors/"+url.PathEscape(id), nil, nil, nil)
}

// Donations lists the donation history of one donor.
func (s *DonorsService) Donations(ctx context.Context, id string, opts ListOptions) (*Page[Donation], error) {
	var page Page[Donation]
	if err := s.c.doJSON(ctx, http.MethodGet, "/donors/"+url.PathEscape(id)+"/donations", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
