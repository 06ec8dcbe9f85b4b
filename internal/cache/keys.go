package cache

// Key families. Invalidation works on the family prefix, so every key a
// write can stale must share the prefix of its family.
const (
	// StatsPrefix covers the dashboard summary and campaign stats.
	StatsPrefix = "stats:"

	// KeySummary is the dashboard summary response.
	KeySummary = StatsPrefix + "summary"
)

// CampaignStatsKey is the cached stats response for one campaign.
func CampaignStatsKey(campaignID string) string {
	return StatsPrefix + "campaign:" + campaignID
}
