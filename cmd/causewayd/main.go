package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/causewayhq/causeway/internal/api"
	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/cache"
	"github.com/causewayhq/causeway/internal/config"
	"github.com/causewayhq/causeway/internal/daemon"
	"github.com/causewayhq/causeway/internal/health"
	"github.com/causewayhq/causeway/internal/jobs"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/mailer"
	"github.com/causewayhq/causeway/internal/store"
	"github.com/causewayhq/causeway/internal/telemetry"
	"github.com/causewayhq/causeway/internal/uploads"
)

// Overridden at build time via -ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	// Configure logger with safe defaults until config is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: "causeway",
	})

	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config path: explicit via --config, otherwise auto-load
	// ${CAUSEWAY_DATA_DIR}/config.yaml if it exists.
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		effectiveConfigPath = resolveDefaultConfigPath()
	}

	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Apply the configured level now that config is loaded.
	log.SetLevel(cfg.LogLevel)

	switch {
	case explicitConfigPath != "":
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", explicitConfigPath).
			Msg("loaded configuration from file")
	case effectiveConfigPath != "":
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file(auto)").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	default:
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	// Validation requires a secret outside dev mode, so an empty one here
	// means dev. Generate an ephemeral secret; sessions die with the process.
	jwtSecret := []byte(cfg.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "auth.secret_generation_failed").
				Msg("failed to generate ephemeral JWT secret")
		}
		logger.Warn().
			Str("event", "auth.ephemeral_secret").
			Msg("no JWT secret configured; using an ephemeral one, tokens will not survive restarts")
	}

	if err := ensureDataDirs(cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.data_dir_failed").
			Str("data_dir", cfg.DataDir).
			Msg("failed to prepare data directories")
	}

	st, err := store.Open(cfg.Database.Path, storeConfig(cfg))
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "store.open_failed").
			Str("path", cfg.Database.Path).
			Msg("failed to open database")
	}

	sessions, err := auth.OpenSessionStore(cfg.Sessions.Dir, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "sessions.open_failed").
			Str("dir", cfg.Sessions.Dir).
			Msg("failed to open session store")
	}

	authSvc, err := auth.NewService(st, sessions, auth.Config{
		JWTSecret:        jwtSecret,
		Issuer:           "causeway",
		AccessTokenTTL:   cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL:  cfg.Auth.RefreshTokenTTL,
		BcryptCost:       cfg.Auth.BcryptCost,
		RegistrationOpen: cfg.Auth.Registration == config.RegistrationOpen,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "auth.init_failed").
			Msg("failed to initialise auth service")
	}

	respCache, cacheName, err := buildCache(cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "cache.init_failed").
			Str("addr", cfg.Redis.Addr).
			Msg("failed to connect to redis")
	}

	uploadStore, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "uploads.init_failed").
			Str("dir", cfg.Uploads.Dir).
			Msg("failed to initialise upload store")
	}

	mail := buildMailer(cfg, logger)

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Endpoint != "",
		ServiceName:    "causeway",
		ServiceVersion: version,
		Environment:    environmentName(cfg.Dev),
		ExporterType:   cfg.Telemetry.Protocol,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SamplingRate:   cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Str("endpoint", cfg.Telemetry.Endpoint).
			Msg("failed to initialise trace exporter")
	}

	hm := health.NewManager(version)
	hm.RegisterChecker(health.NewPingChecker("database", st.Ping))
	hm.RegisterChecker(health.NewSessionChecker(func() (int, error) {
		return sessions.Count(context.Background())
	}))
	hm.RegisterChecker(health.NewDirChecker("uploads", cfg.Uploads.Dir))
	hm.RegisterChecker(health.NewPingChecker("redis", redisPing(respCache)))

	server := api.NewServer(cfg, api.Deps{
		Store:   st,
		Auth:    authSvc,
		Cache:   respCache,
		Uploads: uploadStore,
		Mailer:  mail,
		Health:  hm,
		Version: version,
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(st, sessions, respCache, cacheName, cfg.Cache.TTL, mail)
		if err := scheduler.Register(jobs.Config{
			MembershipSweep: cfg.Jobs.MembershipSweep,
			CampaignSweep:   cfg.Jobs.CampaignSweep,
			SessionSweep:    cfg.Jobs.SessionSweep,
			StatsRefresh:    cfg.Jobs.StatsRefresh,
		}); err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "jobs.register_failed").
				Msg("failed to register background jobs")
		}
	}

	mgr, err := daemon.NewManager(cfg.Server, daemon.Deps{
		Logger:         logger,
		APIHandler:     server.Router(),
		MetricsHandler: promhttp.Handler(),
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.creation_failed").
			Msg("failed to create daemon manager")
	}

	// Hooks run in reverse registration order on shutdown: the scheduler
	// stops first so no job races a closing store, the store closes last.
	mgr.RegisterShutdownHook("store", func(context.Context) error { return st.Close() })
	mgr.RegisterShutdownHook("sessions", func(context.Context) error { return sessions.Close() })
	mgr.RegisterShutdownHook("cache", closeCache(respCache))
	mgr.RegisterShutdownHook("telemetry", tracing.Shutdown)
	if scheduler != nil {
		mgr.RegisterShutdownHook("scheduler", scheduler.Stop)
	}

	holder := config.NewHolder(cfg, loader, effectiveConfigPath)

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.Server.ListenAddr).
		Msg("starting causeway")

	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)
	logger.Info().Msgf("→ Database: %s", cfg.Database.Path)
	logger.Info().Msgf("→ Cache: %s (ttl: %s)", cacheName, cfg.Cache.TTL)
	logger.Info().Msgf("→ Registration: %s", cfg.Auth.Registration)
	if cfg.Mail.Enabled && cfg.Mail.APIKey != "" {
		logger.Info().Msgf("→ Mail: sendgrid (from: %s)", cfg.Mail.From)
	} else {
		logger.Info().Msg("→ Mail: disabled (receipts and notices are logged only)")
	}
	if cfg.Server.MetricsAddr != "" {
		logger.Info().Msgf("→ Metrics: %s/metrics", cfg.Server.MetricsAddr)
	}
	if cfg.Telemetry.Endpoint != "" {
		logger.Info().Msgf("→ Tracing: %s (%s)", cfg.Telemetry.Endpoint, cfg.Telemetry.Protocol)
	}
	if cfg.Jobs.Enabled {
		logger.Info().Msg("→ Jobs: enabled")
	}

	app := daemon.NewApp(logger, mgr, holder, scheduler)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon failed")
	}

	logger.Info().Msg("server exiting")
}

// resolveDefaultConfigPath returns ${CAUSEWAY_DATA_DIR}/config.yaml when the
// file exists, so a config written next to the data survives restarts without
// a flag.
func resolveDefaultConfigPath() string {
	dataDir := strings.TrimSpace(config.ParseString(config.EnvDataDir, "./data"))
	if dataDir == "" {
		return ""
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

// ensureDataDirs creates the directories the stores expect before anything
// opens them.
func ensureDataDirs(cfg config.AppConfig) error {
	dirs := []string{
		cfg.DataDir,
		filepath.Dir(cfg.Database.Path),
		cfg.Sessions.Dir,
		cfg.Uploads.Dir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func storeConfig(cfg config.AppConfig) store.Config {
	sc := store.DefaultConfig()
	if cfg.Database.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.Database.BusyTimeout
	}
	return sc
}

// buildCache selects the response cache backend: Redis when an address is
// configured, otherwise the in-process cache with a cleanup janitor.
func buildCache(cfg config.AppConfig) (cache.Cache, string, error) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemory(5 * time.Minute), "memory", nil
	}
	rc, err := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, "", err
	}
	return rc, "redis", nil
}

// redisPing returns the backend's ping function, or nil for the in-process
// cache so the checker reports "not configured".
func redisPing(c cache.Cache) func(ctx context.Context) error {
	if rc, ok := c.(*cache.RedisCache); ok {
		return rc.Ping
	}
	return nil
}

func closeCache(c cache.Cache) daemon.ShutdownHook {
	return func(context.Context) error {
		switch backend := c.(type) {
		case *cache.RedisCache:
			return backend.Close()
		case interface{ Stop() }:
			backend.Stop()
		}
		return nil
	}
}

func buildMailer(cfg config.AppConfig, logger zerolog.Logger) mailer.Mailer {
	if cfg.Mail.Enabled && cfg.Mail.APIKey != "" {
		return mailer.NewSendGrid(cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.FromName)
	}
	if cfg.Mail.Enabled {
		logger.Warn().
			Str("event", "mail.missing_api_key").
			Msg("mail is enabled but no API key is set, falling back to the noop mailer")
	}
	return mailer.NewNoop()
}

func environmentName(dev bool) string {
	if dev {
		return "development"
	}
	return "production"
}
