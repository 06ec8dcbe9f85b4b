package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causewayhq/causeway/internal/domain"
)

func testEventRequest(title string, capacity int) eventRequest {
	starts := time.Now().UTC().Add(72 * time.Hour)
	return eventRequest{
		Title:      title,
		Location:   "Community Hall",
		StartsAt:   starts.Format(time.RFC3339),
		EndsAt:     starts.Add(3 * time.Hour).Format(time.RFC3339),
		Capacity:   capacity,
		PriceCents: 1500,
	}
}

func TestContract_EventLifecycle(t *testing.T) {
	ts := newTestServer(t)
	doc := loadOpenAPIDoc(t)
	_, token := ts.seedLogin(t, "staff@example.org", domain.RoleStaff)

	req, rr := ts.do(t, http.MethodPost, "/api/v1/events", token, testEventRequest("Charity Run", 100))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	event := decodeBody[domain.Event](t, rr)
	assert.Equal(t, domain.EventScheduled, event.Status)
	assert.Equal(t, "charity-run", event.Slug)
	assert.Equal(t, 0, event.TicketsIssued)

	// Bad timestamps are rejected before anything is written.
	bad := testEventRequest("Broken", 10)
	bad.StartsAt = "tomorrow"
	req, rr = ts.do(t, http.MethodPost, "/api/v1/events", token, bad)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)

	// Details update; the slug is fixed at creation.
	update := testEventRequest("Charity Run", 150)
	update.Description = "5k around the lake"
	req, rr = ts.do(t, http.MethodPut, "/api/v1/events/"+event.ID, token, update)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	updated := decodeBody[domain.Event](t, rr)
	assert.Equal(t, 150, updated.Capacity)
	assert.Equal(t, "charity-run", updated.Slug)

	// Status moves ride the same PUT and are gated by the lifecycle.
	update.Status = "completed"
	req, rr = ts.do(t, http.MethodPut, "/api/v1/events/"+event.ID, token, update)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	update.Status = "scheduled"
	req, rr = ts.do(t, http.MethodPut, "/api/v1/events/"+event.ID, token, update)
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	conflict := decodeBody[map[string]any](t, rr)
	assert.Contains(t, strings.ToLower(rr.Body.String()), "cannot move from completed to scheduled")
	assert.Equal(t, "CONFLICT", conflict["code"])
}

func TestContract_TicketIssueAndCheckIn(t *testing.T) {
	ts := newTestServer(t)
	doc := loadOpenAPIDoc(t)
	_, token := ts.seedLogin(t, "staff@example.org", domain.RoleStaff)

	_, rr := ts.do(t, http.MethodPost, "/api/v1/events", token, testEventRequest("Gala Dinner", 2))
	require.Equal(t, http.StatusCreated, rr.Code)
	event := decodeBody[domain.Event](t, rr)

	req, rr := ts.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/tickets", token, ticketRequest{
		HolderName:  "Ada Lovelace",
		HolderEmail: "ada@example.org",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	ticket := decodeBody[domain.Ticket](t, rr)
	require.Len(t, ticket.Code, 8)
	assert.Equal(t, domain.TicketIssued, ticket.Status)

	_, rr = ts.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/tickets", token, ticketRequest{
		HolderName: "Grace Hopper",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	// Capacity 2 is now exhausted.
	req, rr = ts.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/tickets", token, ticketRequest{
		HolderName: "Third Guest",
	})
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)
	assert.Contains(t, rr.Body.String(), "sold out")

	// Check-in accepts the code in any case.
	lower := strings.ToLower(ticket.Code)
	req, rr = ts.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/tickets/"+lower+"/checkin", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	redeemed := decodeBody[domain.Ticket](t, rr)
	assert.Equal(t, domain.TicketCheckedIn, redeemed.Status)
	require.NotNil(t, redeemed.CheckedInAt)

	// Double check-in is refused.
	req, rr = ts.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/tickets/"+ticket.Code+"/checkin", token, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)

	// Unknown codes are 404.
	req, rr = ts.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/tickets/XXXXXXXX/checkin", token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)

	// The event now reports both issued tickets.
	req, rr = ts.do(t, http.MethodGet, "/api/v1/events/"+event.ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)
	loaded := decodeBody[domain.Event](t, rr)
	assert.Equal(t, 2, loaded.TicketsIssued)

	req, rr = ts.do(t, http.MethodGet, "/api/v1/events/"+event.ID+"/tickets", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)

	page := decodeBody[listResponse[domain.Ticket]](t, rr)
	assert.Equal(t, 2, page.Total)

	// Events with issued tickets cannot be deleted.
	req, rr = ts.do(t, http.MethodDelete, "/api/v1/events/"+event.ID, token, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)
}

func TestContract_TicketListMissingEventIs404(t *testing.T) {
	ts := newTestServer(t)
	doc := loadOpenAPIDoc(t)
	_, token := ts.seedLogin(t, "viewer@example.org", domain.RoleViewer)

	req, rr := ts.do(t, http.MethodGet, "/api/v1/events/no-such-event/tickets", token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)
}

func TestContract_MembershipLifecycle(t *testing.T) {
	ts := newTestServer(t)
	doc := loadOpenAPIDoc(t)
	_, token := ts.seedLogin(t, "staff@example.org", domain.RoleStaff)

	_, rr := ts.do(t, http.MethodPost, "/api/v1/donors", token, donorRequest{
		Email: "member@example.org", Name: "Member",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	donor := decodeBody[domain.Donor](t, rr)

	req, rr := ts.do(t, http.MethodPost, "/api/v1/memberships", token, membershipCreateRequest{
		DonorID:   donor.ID,
		Tier:      "silver",
		AutoRenew: true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	membership := decodeBody[domain.Membership](t, rr)
	assert.Equal(t, domain.MembershipActive, membership.Status)
	assert.Equal(t, domain.TierSilver, membership.Tier)
	wantExpiry := membership.StartedAt.Add(domain.MembershipPeriod)
	assert.WithinDuration(t, wantExpiry, membership.ExpiresAt, time.Second)

	// Unknown tiers never reach the store.
	req, rr = ts.do(t, http.MethodPost, "/api/v1/memberships", token, membershipCreateRequest{
		DonorID: donor.ID,
		Tier:    "platinum",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)

	// Tier upgrades keep the expiry; only renew extends it.
	newTier := "gold"
	req, rr = ts.do(t, http.MethodPatch, "/api/v1/memberships/"+membership.ID, token, membershipUpdateRequest{
		Tier: &newTier,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	patched := decodeBody[domain.Membership](t, rr)
	assert.Equal(t, domain.TierGold, patched.Tier)
	assert.WithinDuration(t, membership.ExpiresAt, patched.ExpiresAt, time.Second)

	req, rr = ts.do(t, http.MethodPost, "/api/v1/memberships/"+membership.ID+"/renew", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	renewed := decodeBody[domain.Membership](t, rr)
	assert.True(t, renewed.ExpiresAt.After(membership.ExpiresAt), "renew must push the expiry out")

	req, rr = ts.do(t, http.MethodPost, "/api/v1/memberships/"+membership.ID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, doc, req, rr, nil)

	cancelled := decodeBody[domain.Membership](t, rr)
	assert.Equal(t, domain.MembershipCancelled, cancelled.Status)

	// Cancelled memberships stay cancelled.
	req, rr = ts.do(t, http.MethodPost, "/api/v1/memberships/"+membership.ID+"/renew", token, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)
}

func TestContract_MembershipListFilters(t *testing.T) {
	ts := newTestServer(t)
	doc := loadOpenAPIDoc(t)
	_, token := ts.seedLogin(t, "staff@example.org", domain.RoleStaff)

	_, rr := ts.do(t, http.MethodPost, "/api/v1/donors", token, donorRequest{
		Email: "member@example.org", Name: "Member",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	donor := decodeBody[domain.Donor](t, rr)

	for _, tier := range []string{"basic", "gold"} {
		_, rr = ts.do(t, http.MethodPost, "/api/v1/memberships", token, membershipCreateRequest{
			DonorID: donor.ID,
			Tier:    tier,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	req, rr := ts.do(t, http.MethodGet, "/api/v1/memberships?tier=gold", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)

	page := decodeBody[listResponse[domain.Membership]](t, rr)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.TierGold, page.Items[0].Tier)

	req, rr = ts.do(t, http.MethodGet, "/api/v1/memberships?tier=diamond", token, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	validateOpenAPIResponse(t, doc, req, rr, nil)
}
