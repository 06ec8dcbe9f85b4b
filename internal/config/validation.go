// Package config provides configuration management for causeway.
package config

import (
	"net"
	"strings"

	"github.com/causewayhq/causeway/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("ListenAddr", cfg.Server.ListenAddr)
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddr); err != nil {
		v.AddError("ListenAddr", "must be host:port or :port", cfg.Server.ListenAddr)
	}
	if cfg.Server.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.MetricsAddr); err != nil {
			v.AddError("MetricsAddr", "must be host:port or :port", cfg.Server.MetricsAddr)
		}
	}
	if cfg.Server.MaxConns < 0 {
		v.AddError("MaxConns", "must be >= 0", cfg.Server.MaxConns)
	}

	if strings.TrimSpace(cfg.Server.BaseURL) != "" {
		v.URL("BaseURL", cfg.Server.BaseURL, []string{"http", "https"})
	}

	// Data directory
	v.Directory("DataDir", cfg.DataDir, false)

	if cfg.LogLevel != "" {
		if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
			v.AddError("LogLevel", err.Error(), cfg.LogLevel)
		}
	}

	// Trusted proxies must be valid IPs or CIDRs
	for _, entry := range cfg.Server.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if net.ParseIP(entry) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(entry); err == nil {
			continue
		}
		v.AddError("TrustedProxies", "must be a valid IP or CIDR", entry)
	}

	// Auth settings. The signing secret may only be absent in dev mode, where
	// an ephemeral secret is generated at startup.
	if !cfg.Dev && len(cfg.Auth.JWTSecret) < 32 {
		v.AddError("JWTSecret", "must be at least 32 bytes outside dev mode", "")
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		v.AddError("AccessTokenTTL", "must be positive", cfg.Auth.AccessTokenTTL.String())
	}
	if cfg.Auth.RefreshTokenTTL <= cfg.Auth.AccessTokenTTL {
		v.AddError("RefreshTokenTTL", "must exceed access token TTL", cfg.Auth.RefreshTokenTTL.String())
	}
	v.Range("BcryptCost", cfg.Auth.BcryptCost, 4, 31)
	v.OneOf("Registration", cfg.Auth.Registration, []string{RegistrationOpen, RegistrationClosed})

	if cfg.Database.BusyTimeout < 0 {
		v.AddError("DBBusyTimeout", "must be >= 0", cfg.Database.BusyTimeout.String())
	}

	if cfg.Cache.TTL <= 0 {
		v.AddError("CacheTTL", "must be positive", cfg.Cache.TTL.String())
	}

	if cfg.Uploads.MaxBytes <= 0 {
		v.AddError("UploadMaxBytes", "must be positive", cfg.Uploads.MaxBytes)
	}

	// Mail requires sender identity once enabled
	if cfg.Mail.Enabled {
		v.NotEmpty("SendgridKey", cfg.Mail.APIKey)
		v.Email("MailFrom", cfg.Mail.From)
	}

	if cfg.Telemetry.Endpoint != "" {
		v.OneOf("OTELProtocol", cfg.Telemetry.Protocol, []string{"http", "grpc"})
	}
	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		v.AddError("OTELSampleRatio", "must be between 0 and 1", cfg.Telemetry.SampleRatio)
	}

	if cfg.RateLimit.Enabled {
		v.Positive("RateLimitPerIP", cfg.RateLimit.PerIP)
		v.Positive("RateLimitBurst", cfg.RateLimit.Burst)
		v.Positive("RateLimitLoginPerMinute", cfg.RateLimit.LoginPerMinute)
	}

	return v.Err()
}
