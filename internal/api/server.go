// Package api exposes the REST surface of the causeway service: versioned
// JSON endpoints under /api/v1, system probes, and the embedded admin SPA.
package api

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/cache"
	"github.com/causewayhq/causeway/internal/config"
	"github.com/causewayhq/causeway/internal/health"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/mailer"
	"github.com/causewayhq/causeway/internal/ratelimit"
	"github.com/causewayhq/causeway/internal/store"
	"github.com/causewayhq/causeway/internal/uploads"
)

// serviceName labels traces and spans emitted by this server.
const serviceName = "causeway"

// Deps carries the wired services the API serves. Health may be nil in
// tests; every other field is required.
type Deps struct {
	Store   *store.Store
	Auth    *auth.Service
	Cache   cache.Cache
	Uploads *uploads.Store
	Mailer  mailer.Mailer
	Health  *health.Manager
	Version string
}

// Server holds the handler state. It is safe for concurrent use.
type Server struct {
	cfg     config.AppConfig
	store   *store.Store
	auth    *auth.Service
	cache   cache.Cache
	uploads *uploads.Store
	mail    mailer.Mailer
	health  *health.Manager
	version string

	cacheTTL       time.Duration
	trustedProxies []*net.IPNet
	loginLimiter   *ratelimit.Keyed
	trustProxy     bool
}

// NewServer assembles the API server from its dependencies.
func NewServer(cfg config.AppConfig, deps Deps) *Server {
	loginPerMinute := cfg.RateLimit.LoginPerMinute
	if loginPerMinute <= 0 {
		loginPerMinute = 10
	}

	trusted := ParseCIDRs(cfg.Server.TrustedProxies)

	return &Server{
		cfg:            cfg,
		store:          deps.Store,
		auth:           deps.Auth,
		cache:          deps.Cache,
		uploads:        deps.Uploads,
		mail:           deps.Mailer,
		health:         deps.Health,
		version:        deps.Version,
		cacheTTL:       cfg.Cache.TTL,
		trustedProxies: trusted,
		trustProxy:     len(trusted) > 0,
		loginLimiter: ratelimit.NewKeyed("login", ratelimit.Config{
			Rate:  ratelimit.PerMinute(loginPerMinute),
			Burst: loginPerMinute,
		}),
	}
}

// Router builds the full HTTP handler: middleware stack, system probes,
// the versioned API, and the SPA fallback.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Canonical middleware order. Recovery wraps everything; correlation
	// comes before anything that logs; limits run last so rejected
	// requests still carry headers and metrics.
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(CORS(s.cfg.Server.AllowedOrigins))
	r.Use(SecurityHeaders(DefaultCSP, s.trustedProxies))
	r.Use(Metrics())
	if s.cfg.Telemetry.Endpoint != "" {
		r.Use(Tracing(serviceName))
	}
	r.Use(log.Middleware())
	if s.cfg.RateLimit.Enabled {
		r.Use(RateLimit(s.cfg.RateLimit.PerIP, s.cfg.RateLimit.Burst))
	}

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.NotFound(s.apiNotFound)
		r.MethodNotAllowed(s.apiMethodNotAllowed)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
			r.With(s.authenticate).Get("/me", s.handleMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/users", func(r chi.Router) {
				r.With(s.requireAdmin).Get("/", s.handleListUsers)
				r.With(s.requireAdmin).Post("/", s.handleCreateUser)
				r.Get("/{id}", s.handleGetUser) // self-view allowed
				r.With(s.requireAdmin).Patch("/{id}", s.handleUpdateUser)
				r.With(s.requireAdmin).Delete("/{id}", s.handleDeleteUser)
			})

			r.Route("/donors", func(r chi.Router) {
				r.Get("/", s.handleListDonors)
				r.With(s.requireWrite).Post("/", s.handleCreateDonor)
				r.Get("/{id}", s.handleGetDonor)
				r.With(s.requireWrite).Put("/{id}", s.handleUpdateDonor)
				r.With(s.requireWrite).Delete("/{id}", s.handleDeleteDonor)
				r.Get("/{id}/donations", s.handleListDonorDonations)
			})

			r.Route("/donations", func(r chi.Router) {
				r.Get("/", s.handleListDonations)
				r.With(s.requireWrite).Post("/", s.handleCreateDonation)
				r.Get("/{id}", s.handleGetDonation)
				r.With(s.requireWrite).Post("/{id}/complete", s.handleCompleteDonation)
				r.With(s.requireWrite).Post("/{id}/refund", s.handleRefundDonation)
				r.With(s.requireWrite).Post("/{id}/receipt", s.handleSendReceipt)
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", s.handleListCampaigns)
				r.With(s.requireWrite).Post("/", s.handleCreateCampaign)
				r.Get("/{id}", s.handleGetCampaign)
				r.With(s.requireWrite).Put("/{id}", s.handleUpdateCampaign)
				r.With(s.requireWrite).Delete("/{id}", s.handleDeleteCampaign)
				r.With(s.requireWrite).Post("/{id}/status", s.handleCampaignStatus)
				r.Get("/{id}/stats", s.handleCampaignStats)
			})

			r.Route("/volunteers", func(r chi.Router) {
				r.Get("/", s.handleListVolunteers)
				r.With(s.requireWrite).Post("/", s.handleCreateVolunteer)
				r.Get("/{id}", s.handleGetVolunteer)
				r.With(s.requireWrite).Put("/{id}", s.handleUpdateVolunteer)
				r.With(s.requireWrite).Delete("/{id}", s.handleDeleteVolunteer)
				r.With(s.requireWrite).Post("/{id}/status", s.handleVolunteerStatus)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", s.handleListEvents)
				r.With(s.requireWrite).Post("/", s.handleCreateEvent)
				r.Get("/{id}", s.handleGetEvent)
				r.With(s.requireWrite).Put("/{id}", s.handleUpdateEvent)
				r.With(s.requireWrite).Delete("/{id}", s.handleDeleteEvent)
				r.Get("/{id}/tickets", s.handleListTickets)
				r.With(s.requireWrite).Post("/{id}/tickets", s.handleIssueTicket)
				r.With(s.requireWrite).Post("/{id}/tickets/{code}/checkin", s.handleCheckInTicket)
			})

			r.Route("/memberships", func(r chi.Router) {
				r.Get("/", s.handleListMemberships)
				r.With(s.requireWrite).Post("/", s.handleCreateMembership)
				r.Get("/{id}", s.handleGetMembership)
				r.With(s.requireWrite).Patch("/{id}", s.handleUpdateMembership)
				r.With(s.requireWrite).Post("/{id}/renew", s.handleRenewMembership)
				r.With(s.requireWrite).Post("/{id}/cancel", s.handleCancelMembership)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", s.handleListPosts)
				r.With(s.requireWrite).Post("/", s.handleCreatePost)
				r.Get("/{id}", s.handleGetPost)
				r.With(s.requireWrite).Put("/{id}", s.handleUpdatePost)
				r.With(s.requireWrite).Delete("/{id}", s.handleDeletePost)
				r.With(s.requireWrite).Post("/{id}/publish", s.handlePublishPost)
			})

			r.Route("/uploads", func(r chi.Router) {
				r.Get("/", s.handleListUploads)
				r.With(s.requireWrite).Post("/", s.handleCreateUpload)
				r.Get("/{name}", s.handleServeUpload)
				r.With(s.requireAdmin).Delete("/{name}", s.handleDeleteUpload)
			})

			r.Get("/stats/summary", s.handleStatsSummary)
		})
	})

	r.Handle("/*", s.spaHandler())

	return r
}

func (s *Server) apiNotFound(w http.ResponseWriter, r *http.Request) {
	RespondError(w, r, http.StatusNotFound, ErrNotFound)
}

func (s *Server) apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RespondError(w, r, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"version": s.version})
}
