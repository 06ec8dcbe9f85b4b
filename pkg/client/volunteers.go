package client

import (
	"context"
	"net/http"
	"net/url"
)

// VolunteersService manages the volunteer roster.
type VolunteersService struct {
	c *Client
}

// VolunteerParams is the create and update payload for a volunteer.
type VolunteerParams struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

// VolunteerListOptions filters the volunteer collection.
type VolunteerListOptions struct {
	ListOptions
	Status VolunteerStatus
}

func (o VolunteerListOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.Status != "" {
		v.Set("status", string(o.Status))
	}
	return v
}

func (s *VolunteersService) List(ctx context.Context, opts VolunteerListOptions) (*Page[Volunteer], error) {
	var page Page[Volunteer]
	if err := s.c.doJSON(ctx, http.MethodGet, "/volunteers", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *VolunteersService) Create(ctx context.Context, params VolunteerParams) (*Volunteer, error) {
	var v Volunteer
	if err := s.c.doJSON(ctx, http.MethodPost, "/volunteers", nil, params, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VolunteersService) Get(ctx context.Context, id string) (*Volunteer, error) {
	var v Volunteer
	if err := s.c.doJSON(ctx, http.MethodGet, "/volunteers/"+url.PathEscape(id), nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VolunteersService) Update(ctx context.Context, id string, params VolunteerParams) (*Volunteer, error) {
	var v Volunteer
	if err := s.c.doJSON(ctx, http.MethodPut, "/volunteers/"+url.PathEscape(id), nil, params, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VolunteersService) Delete(ctx context.Context, id string) error {
	return s.c.doJSON(ctx, http.MethodDelete, "/volunteers/"+url.PathEscape(id), nil, nil, nil)
}

// SetStatus moves a volunteer through the pending, active and inactive
// states. First activation stamps the joined_at time.
func (s *VolunteersService) SetStatus(ctx context.Context, id string, status VolunteerStatus) (*Volunteer, error) {
	in := map[string]string{"status": string(status)}
	var v Volunteer
	if err := s.c.doJSON(ctx, http.MethodPost, "/volunteers/"+url.PathEscape(id)+"/status", nil, in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
