package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSecret satisfies the 32-byte minimum for non-dev validation.
const testSecret = "0123456789abcdef0123456789abcdef"

func testLoaderEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvJWTSecret, testSecret)
}

func TestLoaderDefaults(t *testing.T) {
	testLoaderEnv(t)

	loader := NewLoader("", "v-test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, RegistrationOpen, cfg.Auth.Registration)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxBytes)
	assert.True(t, cfg.Jobs.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Jobs.MembershipSweep)
	assert.Equal(t, "v-test", cfg.Version)

	// Paths hang off DataDir
	assert.Equal(t, filepath.Join(cfg.DataDir, "causeway.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(cfg.DataDir, "sessions"), cfg.Sessions.Dir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "uploads"), cfg.Uploads.Dir)
}

func TestLoaderFileMerge(t *testing.T) {
	testLoaderEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "causeway.yaml")
	content := `
logLevel: debug
server:
  listenAddr: ":9090"
  baseUrl: "https://donate.example.org"
  readTimeout: "20s"
auth:
  accessTokenTtl: "10m"
  registration: closed
cache:
  ttl: "2m"
rateLimit:
  loginPerMinute: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoader(path, "v-test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "https://donate.example.org", cfg.Server.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, RegistrationClosed, cfg.Auth.Registration)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.RateLimit.LoginPerMinute)
	// Untouched values stay at defaults
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
}

func TestLoaderIsRepeatable(t *testing.T) {
	testLoaderEnv(t)

	path := filepath.Join(t.TempDir(), "causeway.yaml")
	content := "logLevel: warn\nserver:\n  listenAddr: \":9191\"\nredis:\n  addr: \"localhost:6379\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoader(path, "v-test")
	first, err := loader.Load()
	require.NoError(t, err)
	second, err := loader.Load()
	require.NoError(t, err)

	// The loader must not accumulate state between loads.
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two loads of the same inputs differ (-first +second):\n%s", diff)
	}
}

func TestLoaderEnvBeatsFile(t *testing.T) {
	testLoaderEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "causeway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listenAddr: \":9090\"\n"), 0o600))

	t.Setenv(EnvListenAddr, ":7070")

	loader := NewLoader(path, "v-test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
}

func TestLoaderStrictYAML(t *testing.T) {
	testLoaderEnv(t)

	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "bananas: 3\n"},
		{"unknown nested field", "server:\n  port: 8080\n"},
		{"multiple documents", "logLevel: info\n---\nlogLevel: debug\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			loader := NewLoader(path, "v-test")
			_, err := loader.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoaderRejectsNonYAML(t *testing.T) {
	testLoaderEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "causeway.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	loader := NewLoader(path, "v-test")
	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoaderValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing jwt secret outside dev",
			setup: func(t *testing.T) {
				t.Setenv(EnvDataDir, t.TempDir())
			},
		},
		{
			name: "short jwt secret",
			setup: func(t *testing.T) {
				t.Setenv(EnvDataDir, t.TempDir())
				t.Setenv(EnvJWTSecret, "short")
			},
		},
		{
			name: "bad registration mode",
			setup: func(t *testing.T) {
				testLoaderEnv(t)
				t.Setenv(EnvRegistration, "invite-only")
			},
		},
		{
			name: "refresh ttl below access ttl",
			setup: func(t *testing.T) {
				testLoaderEnv(t)
				t.Setenv(EnvAccessTokenTTL, "2h")
				t.Setenv(EnvRefreshTokenTTL, "1h")
			},
		},
		{
			name: "bad listen addr",
			setup: func(t *testing.T) {
				testLoaderEnv(t)
				t.Setenv(EnvListenAddr, "8080")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			loader := NewLoader("", "v-test")
			_, err := loader.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoaderDevModeAllowsMissingSecret(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvDev, "true")

	loader := NewLoader("", "v-test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Dev)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoaderTrustedProxies(t *testing.T) {
	testLoaderEnv(t)
	t.Setenv(EnvTrustedProxies, "10.0.0.1, 192.168.0.0/16")

	loader := NewLoader("", "v-test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.Server.TrustedProxies)
}

func TestLoaderConsumedEnvKeys(t *testing.T) {
	testLoaderEnv(t)

	loader := NewLoader("", "v-test")
	_, err := loader.Load()
	require.NoError(t, err)

	for _, key := range []string{EnvListenAddr, EnvJWTSecret, EnvCacheTTL, EnvJobsEnabled} {
		_, ok := loader.ConsumedEnvKeys[key]
		assert.True(t, ok, "expected %s to be tracked as consumed", key)
	}
}
