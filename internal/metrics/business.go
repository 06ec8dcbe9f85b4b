package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Donations
	donationsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_donations_recorded_total",
		Help: "Total number of donations recorded by method",
	}, []string{"method"})

	donationAmountCents = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "causeway_donation_amount_cents",
		Help:    "Distribution of recorded donation amounts in cents",
		Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 500000},
	}, []string{"method"})

	donationStatusTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_donation_status_transitions_total",
		Help: "Donation status transitions by target status",
	}, []string{"status"}) // status=completed|failed|refunded

	receiptsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_donation_receipts_sent_total",
		Help: "Total number of donation receipts sent",
	})

	// Campaigns
	campaignsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_campaigns_completed_total",
		Help: "Total number of campaigns moved to completed",
	})

	// Events and tickets
	ticketsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_tickets_issued_total",
		Help: "Total number of event tickets issued",
	})

	ticketsCheckedInTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_tickets_checked_in_total",
		Help: "Total number of event tickets checked in",
	})

	// Memberships
	membershipsRenewedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_memberships_renewed_total",
		Help: "Total number of membership renewals by tier",
	}, []string{"tier"})

	membershipsLapsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_memberships_lapsed_total",
		Help: "Total number of memberships lapsed by the expiry sweep",
	})

	// Content
	postsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_posts_published_total",
		Help: "Total number of posts published",
	})

	uploadsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_uploads_stored_total",
		Help: "Total number of files stored",
	})

	uploadBytesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "causeway_upload_bytes_stored_total",
		Help: "Total bytes written to the upload store",
	})

	// Mail
	mailSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_mail_sent_total",
		Help: "Outbound mail attempts by template and outcome",
	}, []string{"template", "outcome"}) // outcome=success|failure
)

func RecordDonation(method string, amountCents int64) {
	m := normalizeMethod(method)
	donationsRecordedTotal.WithLabelValues(m).Inc()
	donationAmountCents.WithLabelValues(m).Observe(float64(amountCents))
}

func RecordDonationStatus(status string) {
	donationStatusTotal.WithLabelValues(status).Inc()
}

func IncReceiptSent() { receiptsSentTotal.Inc() }

func IncCampaignCompleted() { campaignsCompletedTotal.Inc() }

func IncTicketIssued() { ticketsIssuedTotal.Inc() }

func IncTicketCheckedIn() { ticketsCheckedInTotal.Inc() }

func IncMembershipLapsed() { membershipsLapsedTotal.Inc() }

func IncPostPublished() { postsPublishedTotal.Inc() }

func IncMembershipRenewed(tier string) {
	membershipsRenewedTotal.WithLabelValues(tier).Inc()
}

func RecordUploadStored(sizeBytes int64) {
	uploadsStoredTotal.Inc()
	uploadBytesStored.Add(float64(sizeBytes))
}

func RecordMailSent(template string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	mailSentTotal.WithLabelValues(template, outcome).Inc()
}

func normalizeMethod(method string) string {
	switch method {
	case "card", "bank", "cash", "other":
		return method
	default:
		return "unknown"
	}
}
