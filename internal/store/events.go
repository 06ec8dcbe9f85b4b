package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

// eventColumns includes the live count of non-cancelled tickets so capacity
// checks read consistent numbers.
const eventColumns = `
	e.id, e.title, e.slug, e.description, e.location, e.starts_at, e.ends_at,
	e.capacity, e.price_cents, e.status, e.campaign_id, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM tickets WHERE event_id = e.id AND status != 'cancelled')`

func scanEvent(row rowScanner) (*domain.Event, error) {
	var (
		e        domain.Event
		starts   string
		ends     string
		status   string
		campaign sql.NullString
		created  string
		updated  string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Description, &e.Location, &starts, &ends,
		&e.Capacity, &e.PriceCents, &status, &campaign, &created, &updated, &e.TicketsIssued)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.StartsAt = parseTime(starts)
	e.EndsAt = parseTime(ends)
	e.Status = domain.EventStatus(status)
	e.CampaignID = campaign.String
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *domain.Event) error {
	if e.Slug == "" {
		slug, err := s.uniqueSlug(ctx, "events", domain.Slugify(e.Title))
		if err != nil {
			return err
		}
		e.Slug = slug
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, slug, description, location, starts_at, ends_at,
			capacity, price_cents, status, campaign_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Slug, e.Description, e.Location,
		formatTime(e.StartsAt), formatTime(e.EndsAt),
		e.Capacity, e.PriceCents, string(e.Status), nullableString(e.CampaignID),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: event slug already exists", ErrConflict)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: campaign", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = ?`, id)
	return scanEvent(row)
}

// ListEvents pages events soonest first, optionally filtered by status.
func (s *Store) ListEvents(ctx context.Context, status domain.EventStatus, limit, offset int) ([]domain.Event, int, error) {
	limit, offset = clampLimit(limit, offset)

	where := ``
	args := []any{}
	if status != "" {
		where = ` WHERE e.status = ?`
		args = append(args, string(status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events e`+where+`
		ORDER BY e.starts_at ASC, e.id ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events: %w", err)
	}
	return events, total, nil
}

func (s *Store) UpdateEvent(ctx context.Context, e *domain.Event) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, description = ?, location = ?, starts_at = ?, ends_at = ?,
			capacity = ?, price_cents = ?, status = ?, campaign_id = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Description, e.Location, formatTime(e.StartsAt), formatTime(e.EndsAt),
		e.Capacity, e.PriceCents, string(e.Status), nullableString(e.CampaignID),
		formatTime(e.UpdatedAt), e.ID,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: campaign", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireRowChange(res, "event")
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: event has issued tickets", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireRowChange(res, "event")
}

const ticketColumns = `id, event_id, code, holder_name, holder_email, status, issued_at, checked_in_at`

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		t       domain.Ticket
		status  string
		issued  string
		checked sql.NullString
	)
	err := row.Scan(&t.ID, &t.EventID, &t.Code, &t.HolderName, &t.HolderEmail, &status, &issued, &checked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	t.Status = domain.TicketStatus(status)
	t.IssuedAt = parseTime(issued)
	t.CheckedInAt = parseNullableTime(checked)
	return &t, nil
}

// IssueTicket writes a ticket for a scheduled event, enforcing capacity and
// per-event code uniqueness inside one transaction.
func (s *Store) IssueTicket(ctx context.Context, t *domain.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin issue ticket: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = ?`, t.EventID)
	e, err := scanEvent(row)
	if err != nil {
		return err
	}
	if e.Status != domain.EventScheduled {
		return fmt.Errorf("%w: event is %s", ErrConflict, e.Status)
	}
	if !e.HasCapacityFor(1) {
		return fmt.Errorf("%w: event is sold out", ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tickets (id, event_id, code, holder_name, holder_email, status, issued_at, checked_in_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.EventID, t.Code, t.HolderName, t.HolderEmail, string(t.Status),
		formatTime(t.IssuedAt), formatNullableTime(t.CheckedInAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: ticket code collision", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return tx.Commit()
}

// ListTickets pages tickets for one event in issue order.
func (s *Store) ListTickets(ctx context.Context, eventID string, limit, offset int) ([]domain.Ticket, int, error) {
	limit, offset = clampLimit(limit, offset)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = ?`, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets
		WHERE event_id = ?
		ORDER BY issued_at ASC, id ASC
		LIMIT ? OFFSET ?`, eventID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0, limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tickets: %w", err)
	}
	return tickets, total, nil
}

func (s *Store) GetTicketByCode(ctx context.Context, eventID, code string) (*domain.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets
		WHERE event_id = ? AND code = ?`, eventID, code)
	return scanTicket(row)
}

// CheckInTicket redeems a ticket by code. Double check-ins and cancelled
// tickets return ErrConflict.
func (s *Store) CheckInTicket(ctx context.Context, eventID, code string) (*domain.Ticket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin check-in: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets
		WHERE event_id = ? AND code = ?`, eventID, code)
	t, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(domain.TicketCheckedIn) {
		return nil, fmt.Errorf("%w: ticket is %s", ErrConflict, t.Status)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE tickets SET status = ?, checked_in_at = ? WHERE id = ?`,
		string(domain.TicketCheckedIn), formatTime(now), t.ID); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit check-in: %w", err)
	}

	t.Status = domain.TicketCheckedIn
	t.CheckedInAt = &now
	return t, nil
}
