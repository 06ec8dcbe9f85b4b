package config

import (
	"time"
)

// Registration policies controlling who may self-register.
const (
	RegistrationOpen   = "open"
	RegistrationClosed = "closed"
)

// FileConfig represents the YAML configuration structure.
// Pointer fields distinguish "not set" from explicit zero values.
type FileConfig struct {
	Version  string `yaml:"version,omitempty"`
	DataDir  string `yaml:"dataDir,omitempty"`
	LogLevel string `yaml:"logLevel,omitempty"`
	Dev      *bool  `yaml:"dev,omitempty"`

	Server    ServerFileConfig     `yaml:"server,omitempty"`
	Database  DatabaseFileConfig   `yaml:"database,omitempty"`
	Auth      AuthFileConfig       `yaml:"auth,omitempty"`
	Sessions  SessionsFileConfig   `yaml:"sessions,omitempty"`
	Redis     RedisFileConfig      `yaml:"redis,omitempty"`
	Cache     CacheFileConfig      `yaml:"cache,omitempty"`
	Uploads   UploadsFileConfig    `yaml:"uploads,omitempty"`
	Mail      MailFileConfig       `yaml:"mail,omitempty"`
	Telemetry TelemetryFileConfig  `yaml:"telemetry,omitempty"`
	Jobs      JobsFileConfig       `yaml:"jobs,omitempty"`
	RateLimit *RateLimitFileConfig `yaml:"rateLimit,omitempty"`
}

// ServerFileConfig holds HTTP server settings as written in YAML.
type ServerFileConfig struct {
	ListenAddr      string   `yaml:"listenAddr,omitempty"`
	MetricsAddr     string   `yaml:"metricsAddr,omitempty"`
	BaseURL         string   `yaml:"baseUrl,omitempty"`
	TrustedProxies  string   `yaml:"trustedProxies,omitempty"`
	AllowedOrigins  []string `yaml:"allowedOrigins,omitempty"`
	ReadTimeout     string   `yaml:"readTimeout,omitempty"`     // e.g. "10s"
	WriteTimeout    string   `yaml:"writeTimeout,omitempty"`    // e.g. "30s"
	IdleTimeout     string   `yaml:"idleTimeout,omitempty"`     // e.g. "120s"
	ShutdownTimeout string   `yaml:"shutdownTimeout,omitempty"` // e.g. "15s"
	MaxHeaderBytes  *int     `yaml:"maxHeaderBytes,omitempty"`
	MaxConns        *int     `yaml:"maxConns,omitempty"`
}

// DatabaseFileConfig holds SQLite settings.
type DatabaseFileConfig struct {
	Path        string `yaml:"path,omitempty"`
	BusyTimeout string `yaml:"busyTimeout,omitempty"` // e.g. "5s"
}

// AuthFileConfig holds token and password settings.
type AuthFileConfig struct {
	JWTSecret       string `yaml:"jwtSecret,omitempty"`
	AccessTokenTTL  string `yaml:"accessTokenTtl,omitempty"`  // e.g. "15m"
	RefreshTokenTTL string `yaml:"refreshTokenTtl,omitempty"` // e.g. "720h"
	BcryptCost      *int   `yaml:"bcryptCost,omitempty"`
	Registration    string `yaml:"registration,omitempty"` // "open" or "closed"
}

// SessionsFileConfig holds refresh session store settings.
type SessionsFileConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// RedisFileConfig holds optional Redis settings. An empty Addr selects the
// in-process cache.
type RedisFileConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       *int   `yaml:"db,omitempty"`
}

// CacheFileConfig holds cache TTL settings.
type CacheFileConfig struct {
	TTL string `yaml:"ttl,omitempty"` // e.g. "60s"
}

// UploadsFileConfig holds file upload settings.
type UploadsFileConfig struct {
	Dir      string `yaml:"dir,omitempty"`
	MaxBytes *int64 `yaml:"maxBytes,omitempty"`
}

// MailFileConfig holds outbound mail settings.
type MailFileConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	APIKey   string `yaml:"apiKey,omitempty"`
	From     string `yaml:"from,omitempty"`
	FromName string `yaml:"fromName,omitempty"`
}

// TelemetryFileConfig holds OTLP trace export settings.
type TelemetryFileConfig struct {
	Endpoint    string   `yaml:"endpoint,omitempty"`
	Protocol    string   `yaml:"protocol,omitempty"` // "http" or "grpc"
	Insecure    *bool    `yaml:"insecure,omitempty"`
	SampleRatio *float64 `yaml:"sampleRatio,omitempty"`
}

// JobsFileConfig holds background job schedules (cron syntax).
type JobsFileConfig struct {
	Enabled         *bool  `yaml:"enabled,omitempty"`
	MembershipSweep string `yaml:"membershipSweep,omitempty"` // e.g. "0 3 * * *"
	CampaignSweep   string `yaml:"campaignSweep,omitempty"`   // e.g. "0 * * * *"
	SessionSweep    string `yaml:"sessionSweep,omitempty"`    // e.g. "30 3 * * *"
	StatsRefresh    string `yaml:"statsRefresh,omitempty"`    // e.g. "*/15 * * * *"
}

// RateLimitFileConfig holds rate limiting settings.
type RateLimitFileConfig struct {
	Enabled        *bool `yaml:"enabled,omitempty"`
	PerIP          *int  `yaml:"perIp,omitempty"` // requests per second per client
	Burst          *int  `yaml:"burst,omitempty"` // burst allowance
	LoginPerMinute *int  `yaml:"loginPerMinute,omitempty"`
}

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version  string
	DataDir  string
	LogLevel string
	Dev      bool

	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Sessions  SessionsConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Uploads   UploadsConfig
	Mail      MailConfig
	Telemetry TelemetryConfig
	Jobs      JobsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds resolved HTTP server settings. An empty MetricsAddr
// disables the separate metrics listener; MaxConns of zero means no
// connection cap.
type ServerConfig struct {
	ListenAddr      string
	MetricsAddr     string
	BaseURL         string
	TrustedProxies  []string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxConns        int
}

// DatabaseConfig holds resolved SQLite settings.
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// AuthConfig holds resolved token and password settings.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
	Registration    string
}

// SessionsConfig holds the refresh session store location.
type SessionsConfig struct {
	Dir string
}

// RedisConfig holds resolved Redis settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds resolved cache settings.
type CacheConfig struct {
	TTL time.Duration
}

// UploadsConfig holds resolved upload settings.
type UploadsConfig struct {
	Dir      string
	MaxBytes int64
}

// MailConfig holds resolved mail settings.
type MailConfig struct {
	Enabled  bool
	APIKey   string
	From     string
	FromName string
}

// TelemetryConfig holds resolved trace export settings.
type TelemetryConfig struct {
	Endpoint    string
	Protocol    string
	Insecure    bool
	SampleRatio float64
}

// JobsConfig holds resolved background job schedules.
type JobsConfig struct {
	Enabled         bool
	MembershipSweep string
	CampaignSweep   string
	SessionSweep    string
	StatsRefresh    string
}

// RateLimitConfig holds resolved rate limiting settings.
type RateLimitConfig struct {
	Enabled        bool
	PerIP          int
	Burst          int
	LoginPerMinute int
}
