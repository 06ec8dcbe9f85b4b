package health

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/causewayhq/causeway/internal/config"
	"github.com/causewayhq/causeway/internal/log"
)

// PerformStartupChecks validates the environment before the server starts.
// It fails fast on misconfiguration instead of surfacing errors on the
// first request.
func PerformStartupChecks(cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := checkDataDir(logger, cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}

	if err := checkListenAddr(cfg.Server.ListenAddr); err != nil {
		return err
	}

	if cfg.Server.BaseURL != "" {
		u, err := url.Parse(cfg.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", cfg.Server.BaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base URL scheme must be http or https, got: %s", u.Scheme)
		}
	}

	if err := ensureDir(cfg.Sessions.Dir); err != nil {
		return fmt.Errorf("session store directory: %w", err)
	}
	if err := ensureDir(cfg.Uploads.Dir); err != nil {
		return fmt.Errorf("uploads directory: %w", err)
	}

	if dbDir := filepath.Dir(cfg.Database.Path); dbDir != "." {
		if err := ensureDir(dbDir); err != nil {
			return fmt.Errorf("database directory: %w", err)
		}
	}

	if cfg.Mail.Enabled && cfg.Mail.APIKey == "" {
		return fmt.Errorf("mail is enabled but no API key is configured")
	}

	tempDir := filepath.Clean(os.TempDir())
	dataDir := filepath.Clean(cfg.DataDir)
	if tempDir != "." && (dataDir == tempDir || strings.HasPrefix(dataDir, tempDir+string(filepath.Separator))) {
		logger.Warn().
			Str("data_dir", cfg.DataDir).
			Msg("data directory is under temp; database and sessions may be lost on reboot")
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0o750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", path, err)
			}
			logger.Info().Str("path", path).Msg("created data directory")
			return checkWritable(path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return checkWritable(path)
}

func checkWritable(path string) error {
	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(testFile)
	return nil
}

func checkListenAddr(addr string) error {
	if addr == "" {
		return nil
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	return nil
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	return nil
}
