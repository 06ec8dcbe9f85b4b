package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

const donationColumns = `id, donor_id, campaign_id, amount_cents, currency, method, status,
	message, receipt_sent_at, received_at, created_at`

func scanDonation(row rowScanner) (*domain.Donation, error) {
	var (
		d        domain.Donation
		campaign sql.NullString
		method   string
		status   string
		receipt  sql.NullString
		received string
		created  string
	)
	err := row.Scan(&d.ID, &d.DonorID, &campaign, &d.AmountCents, &d.Currency,
		&method, &status, &d.Message, &receipt, &received, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	d.CampaignID = campaign.String
	d.Method = domain.DonationMethod(method)
	d.Status = domain.DonationStatus(status)
	d.ReceiptSentAt = parseNullableTime(receipt)
	d.ReceivedAt = parseTime(received)
	d.CreatedAt = parseTime(created)
	return &d, nil
}

func (s *Store) CreateDonation(ctx context.Context, d *domain.Donation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donations (id, donor_id, campaign_id, amount_cents, currency, method, status,
			message, receipt_sent_at, received_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.DonorID, nullableString(d.CampaignID), d.AmountCents, d.Currency,
		string(d.Method), string(d.Status), d.Message,
		formatNullableTime(d.ReceiptSentAt), formatTime(d.ReceivedAt), formatTime(d.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: donor or campaign", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *Store) GetDonationByID(ctx context.Context, id string) (*domain.Donation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = ?`, id)
	return scanDonation(row)
}

// DonationFilter narrows ListDonations. Zero values mean no filter.
type DonationFilter struct {
	DonorID    string
	CampaignID string
	Status     domain.DonationStatus
}

// ListDonations pages donations newest first with the given filter applied,
// returning the filtered total alongside the page.
func (s *Store) ListDonations(ctx context.Context, f DonationFilter, limit, offset int) ([]domain.Donation, int, error) {
	limit, offset = clampLimit(limit, offset)

	where := ` WHERE 1=1`
	args := []any{}
	if f.DonorID != "" {
		where += ` AND donor_id = ?`
		args = append(args, f.DonorID)
	}
	if f.CampaignID != "" {
		where += ` AND campaign_id = ?`
		args = append(args, f.CampaignID)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(f.Status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM donations`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count donations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+donationColumns+` FROM donations`+where+`
		ORDER BY received_at DESC, id ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	donations := make([]domain.Donation, 0, limit)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, 0, err
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate donations: %w", err)
	}
	return donations, total, nil
}

// UpdateDonationStatus moves a donation through its settlement lifecycle.
// Illegal transitions return ErrConflict with the attempted move.
func (s *Store) UpdateDonationStatus(ctx context.Context, id string, next domain.DonationStatus) (*domain.Donation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = ?`, id)
	d, err := scanDonation(row)
	if err != nil {
		return nil, err
	}
	if !d.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: donation cannot move from %s to %s", ErrConflict, d.Status, next)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE donations SET status = ? WHERE id = ?`, string(next), id); err != nil {
		return nil, fmt.Errorf("update donation status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	d.Status = next
	return d, nil
}

func (s *Store) MarkDonationReceiptSent(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE donations SET receipt_sent_at = ? WHERE id = ?`,
		formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark receipt sent: %w", err)
	}
	return requireRowChange(res, "donation")
}
