package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/causewayhq/causeway/internal/config"
)

func writeTempConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileConfigFromAppConfig(t *testing.T) {
	cfg := config.AppConfig{
		Version:  "test",
		DataDir:  "/var/lib/causeway",
		LogLevel: "debug",
		Dev:      true,
	}
	cfg.Server.ListenAddr = ":8080"
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "192.168.0.0/16"}
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Auth.JWTSecret = "super-secret-value-that-is-long-enough"
	cfg.Auth.AccessTokenTTL = 15 * time.Minute
	cfg.Auth.Registration = config.RegistrationOpen
	cfg.Redis.Password = "hunter2"
	cfg.Mail.APIKey = "SG.key"

	fileCfg := fileConfigFromAppConfig(cfg)

	if fileCfg.DataDir != cfg.DataDir {
		t.Errorf("DataDir = %q, want %q", fileCfg.DataDir, cfg.DataDir)
	}
	if fileCfg.Dev == nil || !*fileCfg.Dev {
		t.Error("Dev should be set")
	}
	if fileCfg.Server.TrustedProxies != "10.0.0.0/8,192.168.0.0/16" {
		t.Errorf("TrustedProxies = %q", fileCfg.Server.TrustedProxies)
	}
	if fileCfg.Server.ReadTimeout != "10s" {
		t.Errorf("ReadTimeout = %q, want 10s", fileCfg.Server.ReadTimeout)
	}
	if fileCfg.Auth.AccessTokenTTL != "15m0s" {
		t.Errorf("AccessTokenTTL = %q, want 15m0s", fileCfg.Auth.AccessTokenTTL)
	}
}

func TestRedactFileConfigSecrets(t *testing.T) {
	cfg := config.AppConfig{}
	cfg.Auth.JWTSecret = "secret"
	cfg.Redis.Password = "hunter2"
	cfg.Mail.APIKey = "SG.key"
	cfg.Mail.From = "donations@example.org"

	fileCfg := fileConfigFromAppConfig(cfg)
	redactFileConfigSecrets(&fileCfg)

	if fileCfg.Auth.JWTSecret != "***" {
		t.Errorf("JWTSecret = %q, want ***", fileCfg.Auth.JWTSecret)
	}
	if fileCfg.Redis.Password != "***" {
		t.Errorf("Redis password = %q, want ***", fileCfg.Redis.Password)
	}
	if fileCfg.Mail.APIKey != "***" {
		t.Errorf("Mail API key = %q, want ***", fileCfg.Mail.APIKey)
	}
	if fileCfg.Mail.From != "donations@example.org" {
		t.Errorf("Mail from = %q, should not be redacted", fileCfg.Mail.From)
	}

	// Empty secrets stay empty rather than pretending something was set.
	empty := fileConfigFromAppConfig(config.AppConfig{})
	redactFileConfigSecrets(&empty)
	if empty.Auth.JWTSecret != "" {
		t.Errorf("empty JWTSecret became %q", empty.Auth.JWTSecret)
	}

	redactFileConfigSecrets(nil)
}

func TestRunConfigCLIUsage(t *testing.T) {
	if got := runConfigCLI(nil); got != 0 {
		t.Errorf("runConfigCLI(nil) = %d, want 0", got)
	}
	if got := runConfigCLI([]string{"help"}); got != 0 {
		t.Errorf("runConfigCLI(help) = %d, want 0", got)
	}
	if got := runConfigCLI([]string{"frobnicate"}); got != 2 {
		t.Errorf("runConfigCLI(frobnicate) = %d, want 2", got)
	}
}

func TestRunConfigValidate(t *testing.T) {
	t.Setenv("CAUSEWAY_JWT_SECRET", strings.Repeat("s", 32))

	dir := t.TempDir()
	path := writeTempConfig(t, dir, "config.yaml", "logLevel: debug\n")

	if got := runConfigValidate([]string{"--file", path}); got != 0 {
		t.Errorf("validate of a good file = %d, want 0", got)
	}

	bad := writeTempConfig(t, dir, "bad.yaml", "server:\n  listenAddr: \"not a listen addr\"\n")
	if got := runConfigValidate([]string{"--file", bad}); got != 1 {
		t.Errorf("validate of a bad file = %d, want 1", got)
	}

	missing := dir + "/does-not-exist.yaml"
	if got := runConfigValidate([]string{"--file", missing}); got != 1 {
		t.Errorf("validate of a missing file = %d, want 1", got)
	}
}
