package config

import (
	"fmt"
	"os"
	"time"
)

// mergeFileConfig merges file configuration into the runtime config.
func (l *Loader) mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	l.mergeFileCore(dst, src)
	if err := l.mergeFileServer(dst, src); err != nil {
		return err
	}
	if err := l.mergeFileDatabase(dst, src); err != nil {
		return err
	}
	if err := l.mergeFileAuth(dst, src); err != nil {
		return err
	}
	l.mergeFileSessions(dst, src)
	l.mergeFileRedis(dst, src)
	if err := l.mergeFileCache(dst, src); err != nil {
		return err
	}
	l.mergeFileUploads(dst, src)
	l.mergeFileMail(dst, src)
	l.mergeFileTelemetry(dst, src)
	l.mergeFileJobs(dst, src)
	l.mergeFileRateLimit(dst, src)
	return nil
}

func (l *Loader) mergeFileCore(dst *AppConfig, src *FileConfig) {
	if src.DataDir != "" {
		dst.DataDir = os.ExpandEnv(src.DataDir)
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Dev != nil {
		dst.Dev = *src.Dev
	}
}

func (l *Loader) mergeFileServer(dst *AppConfig, src *FileConfig) error {
	if src.Server.ListenAddr != "" {
		dst.Server.ListenAddr = src.Server.ListenAddr
	}
	if src.Server.MetricsAddr != "" {
		dst.Server.MetricsAddr = src.Server.MetricsAddr
	}
	if src.Server.BaseURL != "" {
		dst.Server.BaseURL = src.Server.BaseURL
	}
	if src.Server.TrustedProxies != "" {
		dst.Server.TrustedProxies = splitCSV(src.Server.TrustedProxies)
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	for _, f := range []struct {
		raw  string
		into *time.Duration
		name string
	}{
		{src.Server.ReadTimeout, &dst.Server.ReadTimeout, "server.readTimeout"},
		{src.Server.WriteTimeout, &dst.Server.WriteTimeout, "server.writeTimeout"},
		{src.Server.IdleTimeout, &dst.Server.IdleTimeout, "server.idleTimeout"},
		{src.Server.ShutdownTimeout, &dst.Server.ShutdownTimeout, "server.shutdownTimeout"},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		*f.into = d
	}
	if src.Server.MaxHeaderBytes != nil {
		dst.Server.MaxHeaderBytes = *src.Server.MaxHeaderBytes
	}
	if src.Server.MaxConns != nil {
		dst.Server.MaxConns = *src.Server.MaxConns
	}
	return nil
}

func (l *Loader) mergeFileDatabase(dst *AppConfig, src *FileConfig) error {
	if src.Database.Path != "" {
		dst.Database.Path = os.ExpandEnv(src.Database.Path)
	}
	if src.Database.BusyTimeout != "" {
		d, err := time.ParseDuration(src.Database.BusyTimeout)
		if err != nil {
			return fmt.Errorf("invalid database.busyTimeout %q: %w", src.Database.BusyTimeout, err)
		}
		dst.Database.BusyTimeout = d
	}
	return nil
}

func (l *Loader) mergeFileAuth(dst *AppConfig, src *FileConfig) error {
	if src.Auth.JWTSecret != "" {
		dst.Auth.JWTSecret = os.ExpandEnv(src.Auth.JWTSecret)
	}
	if src.Auth.AccessTokenTTL != "" {
		d, err := time.ParseDuration(src.Auth.AccessTokenTTL)
		if err != nil {
			return fmt.Errorf("invalid auth.accessTokenTtl %q: %w", src.Auth.AccessTokenTTL, err)
		}
		dst.Auth.AccessTokenTTL = d
	}
	if src.Auth.RefreshTokenTTL != "" {
		d, err := time.ParseDuration(src.Auth.RefreshTokenTTL)
		if err != nil {
			return fmt.Errorf("invalid auth.refreshTokenTtl %q: %w", src.Auth.RefreshTokenTTL, err)
		}
		dst.Auth.RefreshTokenTTL = d
	}
	if src.Auth.BcryptCost != nil {
		dst.Auth.BcryptCost = *src.Auth.BcryptCost
	}
	if src.Auth.Registration != "" {
		dst.Auth.Registration = src.Auth.Registration
	}
	return nil
}

func (l *Loader) mergeFileSessions(dst *AppConfig, src *FileConfig) {
	if src.Sessions.Dir != "" {
		dst.Sessions.Dir = os.ExpandEnv(src.Sessions.Dir)
	}
}

func (l *Loader) mergeFileRedis(dst *AppConfig, src *FileConfig) {
	if src.Redis.Addr != "" {
		dst.Redis.Addr = src.Redis.Addr
	}
	if src.Redis.Password != "" {
		dst.Redis.Password = src.Redis.Password
	}
	if src.Redis.DB != nil {
		dst.Redis.DB = *src.Redis.DB
	}
}

func (l *Loader) mergeFileCache(dst *AppConfig, src *FileConfig) error {
	if src.Cache.TTL != "" {
		d, err := time.ParseDuration(src.Cache.TTL)
		if err != nil {
			return fmt.Errorf("invalid cache.ttl %q: %w", src.Cache.TTL, err)
		}
		dst.Cache.TTL = d
	}
	return nil
}

func (l *Loader) mergeFileUploads(dst *AppConfig, src *FileConfig) {
	if src.Uploads.Dir != "" {
		dst.Uploads.Dir = os.ExpandEnv(src.Uploads.Dir)
	}
	if src.Uploads.MaxBytes != nil {
		dst.Uploads.MaxBytes = *src.Uploads.MaxBytes
	}
}

func (l *Loader) mergeFileMail(dst *AppConfig, src *FileConfig) {
	if src.Mail.Enabled != nil {
		dst.Mail.Enabled = *src.Mail.Enabled
	}
	if src.Mail.APIKey != "" {
		dst.Mail.APIKey = os.ExpandEnv(src.Mail.APIKey)
	}
	if src.Mail.From != "" {
		dst.Mail.From = src.Mail.From
	}
	if src.Mail.FromName != "" {
		dst.Mail.FromName = src.Mail.FromName
	}
}

func (l *Loader) mergeFileTelemetry(dst *AppConfig, src *FileConfig) {
	if src.Telemetry.Endpoint != "" {
		dst.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
	if src.Telemetry.Protocol != "" {
		dst.Telemetry.Protocol = src.Telemetry.Protocol
	}
	if src.Telemetry.Insecure != nil {
		dst.Telemetry.Insecure = *src.Telemetry.Insecure
	}
	if src.Telemetry.SampleRatio != nil {
		dst.Telemetry.SampleRatio = *src.Telemetry.SampleRatio
	}
}

func (l *Loader) mergeFileJobs(dst *AppConfig, src *FileConfig) {
	if src.Jobs.Enabled != nil {
		dst.Jobs.Enabled = *src.Jobs.Enabled
	}
	if src.Jobs.MembershipSweep != "" {
		dst.Jobs.MembershipSweep = src.Jobs.MembershipSweep
	}
	if src.Jobs.CampaignSweep != "" {
		dst.Jobs.CampaignSweep = src.Jobs.CampaignSweep
	}
	if src.Jobs.SessionSweep != "" {
		dst.Jobs.SessionSweep = src.Jobs.SessionSweep
	}
	if src.Jobs.StatsRefresh != "" {
		dst.Jobs.StatsRefresh = src.Jobs.StatsRefresh
	}
}

func (l *Loader) mergeFileRateLimit(dst *AppConfig, src *FileConfig) {
	if src.RateLimit == nil {
		return
	}
	if src.RateLimit.Enabled != nil {
		dst.RateLimit.Enabled = *src.RateLimit.Enabled
	}
	if src.RateLimit.PerIP != nil {
		dst.RateLimit.PerIP = *src.RateLimit.PerIP
	}
	if src.RateLimit.Burst != nil {
		dst.RateLimit.Burst = *src.RateLimit.Burst
	}
	if src.RateLimit.LoginPerMinute != nil {
		dst.RateLimit.LoginPerMinute = *src.RateLimit.LoginPerMinute
	}
}
