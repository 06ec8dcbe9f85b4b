package client

import "time"

// The models below mirror the API's wire format. They are declared here
// rather than shared with the server so that importing the SDK never pulls
// in server internals.

// Role controls what a user may do through the API.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleViewer Role = "viewer"
)

// User is a staff account able to sign in to the platform.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenPair is the credential set issued by login, register and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Session is the signed-in user together with the issued token pair.
type Session struct {
	User *User `json:"user"`
	TokenPair
}

// Donor is a supporter who has given, or may give, to the organization.
type Donor struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TotalDonatedCents int64      `json:"total_donated_cents"`
	DonationCount     int        `json:"donation_count"`
	LastDonationAt    *time.Time `json:"last_donation_at,omitempty"`
}

// DonationMethod is how a donation arrived.
type DonationMethod string

const (
	MethodCard  DonationMethod = "card"
	MethodBank  DonationMethod = "bank"
	MethodCash  DonationMethod = "cash"
	MethodOther DonationMethod = "other"
)

// DonationStatus is the settlement state of a donation.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationRefunded  DonationStatus = "refunded"
)

// Donation records a single contribution in integer cents.
type Donation struct {
	ID            string         `json:"id"`
	DonorID       string         `json:"donor_id"`
	CampaignID    string         `json:"campaign_id,omitempty"`
	AmountCents   int64          `json:"amount_cents"`
	Currency      string         `json:"currency"`
	Method        DonationMethod `json:"method"`
	Status        DonationStatus `json:"status"`
	Message       string         `json:"message,omitempty"`
	ReceiptSentAt *time.Time     `json:"receipt_sent_at,omitempty"`
	ReceivedAt    time.Time      `json:"received_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CampaignStatus is the lifecycle state of a fundraising campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignArchived  CampaignStatus = "archived"
)

// Campaign is a fundraising drive that donations can be attributed to.
type Campaign struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	GoalCents   int64          `json:"goal_cents"` // 0 = open-ended
	Status      CampaignStatus `json:"status"`
	StartsAt    time.Time      `json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	RaisedCents int64 `json:"raised_cents"`
	DonorCount  int   `json:"donor_count"`
}

// CampaignStats is the aggregate block behind the campaign stats endpoint.
type CampaignStats struct {
	CampaignID       string  `json:"campaign_id"`
	RaisedCents      int64   `json:"raised_cents"`
	GoalCents        int64   `json:"goal_cents"`
	Progress         float64 `json:"progress"`
	DonationCount    int     `json:"donation_count"`
	DonorCount       int     `json:"donor_count"`
	AverageCents     int64   `json:"average_cents"`
	LargestCents     int64   `json:"largest_cents"`
	RefundedCents    int64   `json:"refunded_cents"`
	PendingDonations int     `json:"pending_donations"`
}

// VolunteerStatus is the lifecycle state of a volunteer.
type VolunteerStatus string

const (
	VolunteerPending  VolunteerStatus = "pending"
	VolunteerActive   VolunteerStatus = "active"
	VolunteerInactive VolunteerStatus = "inactive"
)

// Volunteer is a registered helper.
type Volunteer struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Skills    []string        `json:"skills,omitempty"`
	Status    VolunteerStatus `json:"status"`
	JoinedAt  *time.Time      `json:"joined_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// Event is a scheduled gathering that tickets can be issued for.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	Capacity    int         `json:"capacity"` // 0 = unlimited
	PriceCents  int64       `json:"price_cents"`
	Status      EventStatus `json:"status"`
	CampaignID  string      `json:"campaign_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	TicketsIssued int `json:"tickets_issued"`
}

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketIssued    TicketStatus = "issued"
	TicketCheckedIn TicketStatus = "checked_in"
	TicketCancelled TicketStatus = "cancelled"
)

// Ticket is one admission to an event.
type Ticket struct {
	ID          string       `json:"id"`
	EventID     string       `json:"event_id"`
	Code        string       `json:"code"`
	HolderName  string       `json:"holder_name"`
	HolderEmail string       `json:"holder_email,omitempty"`
	Status      TicketStatus `json:"status"`
	IssuedAt    time.Time    `json:"issued_at"`
	CheckedInAt *time.Time   `json:"checked_in_at,omitempty"`
}

// MembershipTier is a paid membership level.
type MembershipTier string

const (
	TierBasic  MembershipTier = "basic"
	TierSilver MembershipTier = "silver"
	TierGold   MembershipTier = "gold"
	TierPatron MembershipTier = "patron"
)

// MembershipStatus is the lifecycle state of a membership.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipLapsed    MembershipStatus = "lapsed"
	MembershipCancelled MembershipStatus = "cancelled"
)

// Membership ties a donor to a recurring membership tier.
type Membership struct {
	ID        string           `json:"id"`
	DonorID   string           `json:"donor_id"`
	Tier      MembershipTier   `json:"tier"`
	Status    MembershipStatus `json:"status"`
	AutoRenew bool             `json:"auto_renew"`
	StartedAt time.Time        `json:"started_at"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

// Post is a news or update article.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Excerpt     string     `json:"excerpt,omitempty"`
	AuthorID    string     `json:"author_id"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Upload is the stored metadata of an uploaded file.
type Upload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StoredName  string    `json:"stored_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardSummary is the organization-wide aggregate block.
type DashboardSummary struct {
	TotalRaisedCents   int64 `json:"total_raised_cents"`
	DonationCount      int   `json:"donation_count"`
	DonorCount         int   `json:"donor_count"`
	RaisedLast30dCents int64 `json:"raised_last_30d_cents"`
	ActiveCampaigns    int   `json:"active_campaigns"`
	ActiveVolunteers   int   `json:"active_volunteers"`
	ActiveMemberships  int   `json:"active_memberships"`
	UpcomingEvents     int   `json:"upcoming_events"`
	PublishedPosts     int   `json:"published_posts"`
}

// Page is one page of a collection plus the total match count.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
