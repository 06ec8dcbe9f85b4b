package mailer

import (
	"fmt"
	"strings"

	"github.com/causewayhq/causeway/internal/domain"
)

// Template names used as mail metric labels.
const (
	TemplateDonationReceipt   = "donation_receipt"
	TemplateMembershipRenewal = "membership_renewal"
)

// DonationReceipt builds the receipt mail for a completed donation.
func DonationReceipt(donor *domain.Donor, donation *domain.Donation, campaignTitle string) Message {
	amount := FormatAmount(donation.AmountCents, donation.Currency)

	var plain strings.Builder
	fmt.Fprintf(&plain, "Dear %s,\n\n", donor.Name)
	fmt.Fprintf(&plain, "Thank you for your donation of %s received on %s.\n", amount, donation.ReceivedAt.Format("January 2, 2006"))
	if campaignTitle != "" {
		fmt.Fprintf(&plain, "Your gift supports: %s.\n", campaignTitle)
	}
	fmt.Fprintf(&plain, "\nDonation reference: %s\n", donation.ID)
	plain.WriteString("\nPlease keep this receipt for your records.\n")

	var html strings.Builder
	fmt.Fprintf(&html, "<p>Dear %s,</p>", donor.Name)
	fmt.Fprintf(&html, "<p>Thank you for your donation of <strong>%s</strong> received on %s.</p>", amount, donation.ReceivedAt.Format("January 2, 2006"))
	if campaignTitle != "" {
		fmt.Fprintf(&html, "<p>Your gift supports: <em>%s</em>.</p>", campaignTitle)
	}
	fmt.Fprintf(&html, "<p>Donation reference: <code>%s</code></p>", donation.ID)
	html.WriteString("<p>Please keep this receipt for your records.</p>")

	return Message{
		To:       donor.Email,
		ToName:   donor.Name,
		Subject:  "Your donation receipt",
		Template: TemplateDonationReceipt,
		Plain:    plain.String(),
		HTML:     html.String(),
	}
}

// MembershipRenewalNotice builds the renewal confirmation mail.
func MembershipRenewalNotice(donor *domain.Donor, membership *domain.Membership) Message {
	expires := membership.ExpiresAt.Format("January 2, 2006")

	plain := fmt.Sprintf(
		"Dear %s,\n\nYour %s membership has been renewed and is now valid through %s.\n\nThank you for your continued support.\n",
		donor.Name, membership.Tier, expires,
	)
	html := fmt.Sprintf(
		"<p>Dear %s,</p><p>Your <strong>%s</strong> membership has been renewed and is now valid through %s.</p><p>Thank you for your continued support.</p>",
		donor.Name, membership.Tier, expires,
	)

	return Message{
		To:       donor.Email,
		ToName:   donor.Name,
		Subject:  "Your membership has been renewed",
		Template: TemplateMembershipRenewal,
		Plain:    plain,
		HTML:     html,
	}
}

// FormatAmount renders cents as a currency string, e.g. "USD 25.00".
func FormatAmount(cents int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", strings.ToUpper(currency), sign, cents/100, cents%100)
}
