package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/causewayhq/causeway/internal/config"
)

func runConfigCLI(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage()
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "dump":
		return runConfigDump(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  causewayd config validate [--file|-f config.yaml]")
	fmt.Fprintln(os.Stderr, "  causewayd config dump --effective [--file|-f config.yaml] [--format=yaml|json]")
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("causewayd config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required (no default config.yaml found in $CAUSEWAY_DATA_DIR)")
		return 2
	}

	loader := config.NewLoader(configPath, version)
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fmt.Printf("✓ %s is valid\n", configPath)
	return 0
}

func runConfigDump(args []string) int {
	fs := flag.NewFlagSet("causewayd config dump", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var format string
	var effective bool

	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	fs.BoolVar(&effective, "effective", false, "dump effective configuration (defaults + file + env)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !effective {
		fmt.Fprintln(os.Stderr, "Error: --effective is required")
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}

	loader := config.NewLoader(configPath, version)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fileCfg := fileConfigFromAppConfig(cfg)
	redactFileConfigSecrets(&fileCfg)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unsupported format: %s (use yaml or json)\n", format)
		return 2
	}
}

// fileConfigFromAppConfig renders the resolved configuration back into the
// YAML file shape for dumping.
func fileConfigFromAppConfig(cfg config.AppConfig) config.FileConfig {
	dev := cfg.Dev
	maxHeaderBytes := cfg.Server.MaxHeaderBytes
	maxConns := cfg.Server.MaxConns
	bcryptCost := cfg.Auth.BcryptCost
	redisDB := cfg.Redis.DB
	uploadMaxBytes := cfg.Uploads.MaxBytes
	mailEnabled := cfg.Mail.Enabled
	telemetryInsecure := cfg.Telemetry.Insecure
	sampleRatio := cfg.Telemetry.SampleRatio
	jobsEnabled := cfg.Jobs.Enabled
	rlEnabled := cfg.RateLimit.Enabled
	rlPerIP := cfg.RateLimit.PerIP
	rlBurst := cfg.RateLimit.Burst
	rlLogin := cfg.RateLimit.LoginPerMinute

	return config.FileConfig{
		Version:  cfg.Version,
		DataDir:  cfg.DataDir,
		LogLevel: cfg.LogLevel,
		Dev:      &dev,
		Server: config.ServerFileConfig{
			ListenAddr:      cfg.Server.ListenAddr,
			MetricsAddr:     cfg.Server.MetricsAddr,
			BaseURL:         cfg.Server.BaseURL,
			TrustedProxies:  strings.Join(cfg.Server.TrustedProxies, ","),
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			ReadTimeout:     cfg.Server.ReadTimeout.String(),
			WriteTimeout:    cfg.Server.WriteTimeout.String(),
			IdleTimeout:     cfg.Server.IdleTimeout.String(),
			ShutdownTimeout: cfg.Server.ShutdownTimeout.String(),
			MaxHeaderBytes:  &maxHeaderBytes,
			MaxConns:        &maxConns,
		},
		Database: config.DatabaseFileConfig{
			Path:        cfg.Database.Path,
			BusyTimeout: cfg.Database.BusyTimeout.String(),
		},
		Auth: config.AuthFileConfig{
			JWTSecret:       cfg.Auth.JWTSecret,
			AccessTokenTTL:  cfg.Auth.AccessTokenTTL.String(),
			RefreshTokenTTL: cfg.Auth.RefreshTokenTTL.String(),
			BcryptCost:      &bcryptCost,
			Registration:    cfg.Auth.Registration,
		},
		Sessions: config.SessionsFileConfig{
			Dir: cfg.Sessions.Dir,
		},
		Redis: config.RedisFileConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       &redisDB,
		},
		Cache: config.CacheFileConfig{
			TTL: cfg.Cache.TTL.String(),
		},
		Uploads: config.UploadsFileConfig{
			Dir:      cfg.Uploads.Dir,
			MaxBytes: &uploadMaxBytes,
		},
		Mail: config.MailFileConfig{
			Enabled:  &mailEnabled,
			APIKey:   cfg.Mail.APIKey,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
		},
		Telemetry: config.TelemetryFileConfig{
			Endpoint:    cfg.Telemetry.Endpoint,
			Protocol:    cfg.Telemetry.Protocol,
			Insecure:    &telemetryInsecure,
			SampleRatio: &sampleRatio,
		},
		Jobs: config.JobsFileConfig{
			Enabled:         &jobsEnabled,
			MembershipSweep: cfg.Jobs.MembershipSweep,
			CampaignSweep:   cfg.Jobs.CampaignSweep,
			SessionSweep:    cfg.Jobs.SessionSweep,
			StatsRefresh:    cfg.Jobs.StatsRefresh,
		},
		RateLimit: &config.RateLimitFileConfig{
			Enabled:        &rlEnabled,
			PerIP:          &rlPerIP,
			Burst:          &rlBurst,
			LoginPerMinute: &rlLogin,
		},
	}
}

func redactFileConfigSecrets(cfg *config.FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.Auth.JWTSecret != "" {
		cfg.Auth.JWTSecret = "***"
	}
	if cfg.Redis.Password != "" {
		cfg.Redis.Password = "***"
	}
	if cfg.Mail.APIKey != "" {
		cfg.Mail.APIKey = "***"
	}
}
