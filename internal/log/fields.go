package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID     = "session_id"
	FieldCorrelationID = "correlation_id"
	FieldRequestID     = "request_id"
	FieldJobID         = "job_id"
	FieldUserID        = "user_id"
	FieldDonorID       = "donor_id"
	FieldCampaignID    = "campaign_id"
	FieldEventID       = "event_id"
	FieldMembershipID  = "membership_id"
	FieldVolunteerID   = "volunteer_id"
	FieldPostID        = "post_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Domain fields
	FieldAmountCents = "amount_cents"
	FieldCurrency    = "currency"
	FieldRole        = "role"
	FieldStatus      = "status"
	FieldSlug        = "slug"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
