package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared across instrumented call sites.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Donation attributes
	DonationIDKey     = "donation.id"
	DonationMethodKey = "donation.method"
	DonationAmountKey = "donation.amount_cents"

	// Campaign attributes
	CampaignIDKey     = "campaign.id"
	CampaignSlugKey   = "campaign.slug"
	CampaignStatusKey = "campaign.status"

	// Job attributes
	JobNameKey     = "job.name"
	JobStatusKey   = "job.status"
	JobDurationKey = "job.duration_ms"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// DonationAttributes creates donation-related span attributes.
func DonationAttributes(id, method string, amountCents int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(DonationIDKey, id),
		attribute.String(DonationMethodKey, method),
		attribute.Int64(DonationAmountKey, amountCents),
	}
}

// CampaignAttributes creates campaign-related span attributes. Empty fields
// are omitted.
func CampaignAttributes(id, slug, status string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if id != "" {
		attrs = append(attrs, attribute.String(CampaignIDKey, id))
	}
	if slug != "" {
		attrs = append(attrs, attribute.String(CampaignSlugKey, slug))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(CampaignStatusKey, status))
	}
	return attrs
}

// JobAttributes creates background-job span attributes.
func JobAttributes(name, status string, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(JobNameKey, name),
		attribute.String(JobStatusKey, status),
		attribute.Int64(JobDurationKey, durationMS),
	}
}

// ErrorAttributes creates error span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
