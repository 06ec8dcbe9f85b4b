package store

import (
	"context"
	"errors"
	"testing"

	"github.com/causewayhq/causeway/internal/domain"
)

func TestIssueTicketEnforcesCapacity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Small Venue", 2)

	seedTicket(t, s, e.ID)
	seedTicket(t, s, e.ID)

	code, err := domain.NewTicketCode()
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	overflow := &domain.Ticket{
		ID: domain.NewID(), EventID: e.ID, Code: code,
		HolderName: "Too Late", Status: domain.TicketIssued,
		IssuedAt: testTime(t, "2026-05-01T10:00:00Z"),
	}
	if err := s.IssueTicket(ctx, overflow); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for sold out event, got: %v", err)
	}

	got, err := s.GetEventByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.TicketsIssued != 2 {
		t.Errorf("tickets issued = %d, want 2", got.TicketsIssued)
	}
}

func TestIssueTicketUnlimitedCapacity(t *testing.T) {
	s := newTestStore(t)
	e := seedEvent(t, s, "Open Air", 0)
	for i := 0; i < 5; i++ {
		seedTicket(t, s, e.ID)
	}
	got, err := s.GetEventByID(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.TicketsIssued != 5 {
		t.Errorf("tickets issued = %d, want 5", got.TicketsIssued)
	}
}

func TestIssueTicketCancelledEventConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Doomed Event", 10)

	e.Status = domain.EventCancelled
	if err := s.UpdateEvent(ctx, e); err != nil {
		t.Fatalf("cancel event: %v", err)
	}

	code, _ := domain.NewTicketCode()
	err := s.IssueTicket(ctx, &domain.Ticket{
		ID: domain.NewID(), EventID: e.ID, Code: code,
		HolderName: "Hopeful", Status: domain.TicketIssued,
		IssuedAt: testTime(t, "2026-05-01T10:00:00Z"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for cancelled event, got: %v", err)
	}
}

func TestCheckInTicket(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Check In Night", 10)
	tk := seedTicket(t, s, e.ID)

	checked, err := s.CheckInTicket(ctx, e.ID, tk.Code)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if checked.Status != domain.TicketCheckedIn {
		t.Errorf("status = %s, want checked_in", checked.Status)
	}
	if checked.CheckedInAt == nil {
		t.Error("checked_in_at not set")
	}

	// Double check-in is rejected.
	if _, err := s.CheckInTicket(ctx, e.ID, tk.Code); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on double check-in, got: %v", err)
	}

	// Unknown code is not found.
	if _, err := s.CheckInTicket(ctx, e.ID, "NOSUCH88"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got: %v", err)
	}
}

func TestTicketCodeScopedPerEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e1 := seedEvent(t, s, "Night One", 10)
	e2 := seedEvent(t, s, "Night Two", 10)
	tk := seedTicket(t, s, e1.ID)

	// The same code can exist on another event.
	other := &domain.Ticket{
		ID: domain.NewID(), EventID: e2.ID, Code: tk.Code,
		HolderName: "Other Night", Status: domain.TicketIssued,
		IssuedAt: testTime(t, "2026-05-01T10:00:00Z"),
	}
	if err := s.IssueTicket(ctx, other); err != nil {
		t.Fatalf("issue same code on other event: %v", err)
	}

	// But not twice on the same event.
	dup := &domain.Ticket{
		ID: domain.NewID(), EventID: e1.ID, Code: tk.Code,
		HolderName: "Duplicate", Status: domain.TicketIssued,
		IssuedAt: testTime(t, "2026-05-01T10:00:00Z"),
	}
	if err := s.IssueTicket(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate code, got: %v", err)
	}
}

func TestDeleteEventWithTicketsConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Sticky Event", 10)
	seedTicket(t, s, e.ID)

	if err := s.DeleteEvent(ctx, e.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got: %v", err)
	}

	empty := seedEvent(t, s, "Empty Event", 10)
	if err := s.DeleteEvent(ctx, empty.ID); err != nil {
		t.Fatalf("delete empty event: %v", err)
	}
}

func TestListTickets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "List Night", 10)
	for i := 0; i < 3; i++ {
		seedTicket(t, s, e.ID)
	}

	tickets, total, err := s.ListTickets(ctx, e.ID, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(tickets) != 2 {
		t.Errorf("page = %d, want 2", len(tickets))
	}
}
