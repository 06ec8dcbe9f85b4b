package config

import "strings"

// Environment variable names consumed by the loader. All runtime settings can
// be driven from the environment; ENV beats file and defaults.
const (
	EnvDataDir  = "CAUSEWAY_DATA_DIR"
	EnvLogLevel = "CAUSEWAY_LOG_LEVEL"
	EnvDev      = "CAUSEWAY_DEV"

	EnvListenAddr      = "CAUSEWAY_LISTEN_ADDR"
	EnvMetricsAddr     = "CAUSEWAY_METRICS_ADDR"
	EnvBaseURL         = "CAUSEWAY_BASE_URL"
	EnvTrustedProxies  = "CAUSEWAY_TRUSTED_PROXIES"
	EnvAllowedOrigins  = "CAUSEWAY_ALLOWED_ORIGINS"
	EnvReadTimeout     = "CAUSEWAY_READ_TIMEOUT"
	EnvWriteTimeout    = "CAUSEWAY_WRITE_TIMEOUT"
	EnvIdleTimeout     = "CAUSEWAY_IDLE_TIMEOUT"
	EnvShutdownTimeout = "CAUSEWAY_SHUTDOWN_TIMEOUT"
	EnvMaxHeaderBytes  = "CAUSEWAY_MAX_HEADER_BYTES"
	EnvMaxConns        = "CAUSEWAY_MAX_CONNS"

	EnvDBPath        = "CAUSEWAY_DB_PATH"
	EnvDBBusyTimeout = "CAUSEWAY_DB_BUSY_TIMEOUT"

	EnvJWTSecret       = "CAUSEWAY_JWT_SECRET"
	EnvAccessTokenTTL  = "CAUSEWAY_ACCESS_TOKEN_TTL"
	EnvRefreshTokenTTL = "CAUSEWAY_REFRESH_TOKEN_TTL"
	EnvBcryptCost      = "CAUSEWAY_BCRYPT_COST"
	EnvRegistration    = "CAUSEWAY_REGISTRATION"

	EnvSessionsDir = "CAUSEWAY_SESSIONS_DIR"

	EnvRedisAddr     = "CAUSEWAY_REDIS_ADDR"
	EnvRedisPassword = "CAUSEWAY_REDIS_PASSWORD"
	EnvRedisDB       = "CAUSEWAY_REDIS_DB"
	EnvCacheTTL      = "CAUSEWAY_CACHE_TTL"

	EnvUploadsDir     = "CAUSEWAY_UPLOADS_DIR"
	EnvUploadMaxBytes = "CAUSEWAY_UPLOAD_MAX_BYTES"

	EnvMailEnabled  = "CAUSEWAY_MAIL_ENABLED"
	EnvSendgridKey  = "CAUSEWAY_SENDGRID_KEY"
	EnvMailFrom     = "CAUSEWAY_MAIL_FROM"
	EnvMailFromName = "CAUSEWAY_MAIL_FROM_NAME"

	EnvOTELEndpoint    = "CAUSEWAY_OTEL_ENDPOINT"
	EnvOTELProtocol    = "CAUSEWAY_OTEL_PROTOCOL"
	EnvOTELInsecure    = "CAUSEWAY_OTEL_INSECURE"
	EnvOTELSampleRatio = "CAUSEWAY_OTEL_SAMPLE_RATIO"

	EnvJobsEnabled         = "CAUSEWAY_JOBS_ENABLED"
	EnvJobsMembershipSweep = "CAUSEWAY_JOBS_MEMBERSHIP_SWEEP"
	EnvJobsCampaignSweep   = "CAUSEWAY_JOBS_CAMPAIGN_SWEEP"
	EnvJobsSessionSweep    = "CAUSEWAY_JOBS_SESSION_SWEEP"
	EnvJobsStatsRefresh    = "CAUSEWAY_JOBS_STATS_REFRESH"

	EnvRateLimitEnabled = "CAUSEWAY_RATE_LIMIT_ENABLED"
	EnvRateLimitPerIP   = "CAUSEWAY_RATE_LIMIT_PER_IP"
	EnvRateLimitBurst   = "CAUSEWAY_RATE_LIMIT_BURST"
	EnvLoginPerMinute   = "CAUSEWAY_RATE_LIMIT_LOGIN_PER_MIN"
)

// mergeEnvConfig applies environment variable overrides on top of whatever
// defaults and file values are already in cfg.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Dev = l.envBool(EnvDev, cfg.Dev)

	cfg.Server.ListenAddr = l.envString(EnvListenAddr, cfg.Server.ListenAddr)
	cfg.Server.MetricsAddr = l.envString(EnvMetricsAddr, cfg.Server.MetricsAddr)
	cfg.Server.BaseURL = l.envString(EnvBaseURL, cfg.Server.BaseURL)
	if raw := l.envString(EnvTrustedProxies, ""); raw != "" {
		cfg.Server.TrustedProxies = splitCSV(raw)
	}
	cfg.Server.AllowedOrigins = l.envSlice(EnvAllowedOrigins, cfg.Server.AllowedOrigins)
	cfg.Server.ReadTimeout = l.envDuration(EnvReadTimeout, cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration(EnvWriteTimeout, cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration(EnvIdleTimeout, cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.Server.ShutdownTimeout)
	cfg.Server.MaxHeaderBytes = l.envInt(EnvMaxHeaderBytes, cfg.Server.MaxHeaderBytes)
	cfg.Server.MaxConns = l.envInt(EnvMaxConns, cfg.Server.MaxConns)

	cfg.Database.Path = l.envString(EnvDBPath, cfg.Database.Path)
	cfg.Database.BusyTimeout = l.envDuration(EnvDBBusyTimeout, cfg.Database.BusyTimeout)

	cfg.Auth.JWTSecret = l.envString(EnvJWTSecret, cfg.Auth.JWTSecret)
	cfg.Auth.AccessTokenTTL = l.envDuration(EnvAccessTokenTTL, cfg.Auth.AccessTokenTTL)
	cfg.Auth.RefreshTokenTTL = l.envDuration(EnvRefreshTokenTTL, cfg.Auth.RefreshTokenTTL)
	cfg.Auth.BcryptCost = l.envInt(EnvBcryptCost, cfg.Auth.BcryptCost)
	cfg.Auth.Registration = strings.ToLower(l.envString(EnvRegistration, cfg.Auth.Registration))

	cfg.Sessions.Dir = l.envString(EnvSessionsDir, cfg.Sessions.Dir)

	cfg.Redis.Addr = l.envString(EnvRedisAddr, cfg.Redis.Addr)
	cfg.Redis.Password = l.envString(EnvRedisPassword, cfg.Redis.Password)
	cfg.Redis.DB = l.envInt(EnvRedisDB, cfg.Redis.DB)
	cfg.Cache.TTL = l.envDuration(EnvCacheTTL, cfg.Cache.TTL)

	cfg.Uploads.Dir = l.envString(EnvUploadsDir, cfg.Uploads.Dir)
	cfg.Uploads.MaxBytes = l.envInt64(EnvUploadMaxBytes, cfg.Uploads.MaxBytes)

	cfg.Mail.Enabled = l.envBool(EnvMailEnabled, cfg.Mail.Enabled)
	cfg.Mail.APIKey = l.envString(EnvSendgridKey, cfg.Mail.APIKey)
	cfg.Mail.From = l.envString(EnvMailFrom, cfg.Mail.From)
	cfg.Mail.FromName = l.envString(EnvMailFromName, cfg.Mail.FromName)

	cfg.Telemetry.Endpoint = l.envString(EnvOTELEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.Protocol = l.envString(EnvOTELProtocol, cfg.Telemetry.Protocol)
	cfg.Telemetry.Insecure = l.envBool(EnvOTELInsecure, cfg.Telemetry.Insecure)
	cfg.Telemetry.SampleRatio = l.envFloat(EnvOTELSampleRatio, cfg.Telemetry.SampleRatio)

	cfg.Jobs.Enabled = l.envBool(EnvJobsEnabled, cfg.Jobs.Enabled)
	cfg.Jobs.MembershipSweep = l.envString(EnvJobsMembershipSweep, cfg.Jobs.MembershipSweep)
	cfg.Jobs.CampaignSweep = l.envString(EnvJobsCampaignSweep, cfg.Jobs.CampaignSweep)
	cfg.Jobs.SessionSweep = l.envString(EnvJobsSessionSweep, cfg.Jobs.SessionSweep)
	cfg.Jobs.StatsRefresh = l.envString(EnvJobsStatsRefresh, cfg.Jobs.StatsRefresh)

	cfg.RateLimit.Enabled = l.envBool(EnvRateLimitEnabled, cfg.RateLimit.Enabled)
	cfg.RateLimit.PerIP = l.envInt(EnvRateLimitPerIP, cfg.RateLimit.PerIP)
	cfg.RateLimit.Burst = l.envInt(EnvRateLimitBurst, cfg.RateLimit.Burst)
	cfg.RateLimit.LoginPerMinute = l.envInt(EnvLoginPerMinute, cfg.RateLimit.LoginPerMinute)
}

// splitCSV splits a comma-separated string, trimming whitespace and dropping
// empty entries.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
