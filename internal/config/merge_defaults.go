package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// setDefaults sets default values for configuration.
func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.DataDir = "./data"
	cfg.LogLevel = "info"
	cfg.Dev = false

	cfg.Server = ServerConfig{
		ListenAddr:      ":8080",
		BaseURL:         "http://localhost:8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		MaxHeaderBytes:  1 << 20,
	}

	cfg.Database = DatabaseConfig{
		BusyTimeout: 5 * time.Second,
	}

	cfg.Auth = AuthConfig{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
		Registration:    RegistrationOpen,
	}

	cfg.Cache = CacheConfig{
		TTL: 60 * time.Second,
	}

	cfg.Uploads = UploadsConfig{
		MaxBytes: 10 << 20, // 10 MiB
	}

	cfg.Mail = MailConfig{
		FromName: "Causeway",
	}

	cfg.Telemetry = TelemetryConfig{
		Protocol:    "http",
		SampleRatio: 1.0,
	}

	cfg.Jobs = JobsConfig{
		Enabled:         true,
		MembershipSweep: "0 3 * * *",
		CampaignSweep:   "0 * * * *",
		SessionSweep:    "30 3 * * *",
		StatsRefresh:    "*/15 * * * *",
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:        true,
		PerIP:          20,
		Burst:          40,
		LoginPerMinute: 10,
	}
}
