// Package uploads stores user-submitted files on disk. Files are written
// atomically and named by generated ID, never by client-supplied names.
package uploads

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/metrics"
)

// DefaultMaxBytes caps uploads at 10 MiB unless configured otherwise.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrTooLarge    = errors.New("uploads: file exceeds size limit")
	ErrInvalidName = errors.New("uploads: invalid stored name")
)

// storedNamePattern matches generated names: a UUID plus an optional short
// lowercase extension. Anything else is rejected before touching the
// filesystem.
var storedNamePattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}(\.[a-z0-9]{1,10})?$`)

// Store writes and serves uploaded files under a single directory.
type Store struct {
	dir      string
	maxBytes int64
	logger   zerolog.Logger
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   log.WithComponent("uploads"),
	}, nil
}

// MaxBytes returns the configured size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// SavedFile describes a file written by Save.
type SavedFile struct {
	StoredName string
	SizeBytes  int64
	SHA256     string
}

// Save streams r to a new file. The write is atomic: on any error, including
// the size cap, no partial file remains.
func (s *Store) Save(originalName string, r io.Reader) (*SavedFile, error) {
	storedName := domain.NewID() + extensionOf(originalName)
	path := filepath.Join(s.dir, storedName)

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return nil, fmt.Errorf("create pending upload: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending upload")
		}
	}()

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(pending, hasher), io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if n > s.maxBytes {
		return nil, ErrTooLarge
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return nil, fmt.Errorf("commit upload: %w", err)
	}

	metrics.RecordUploadStored(n)
	s.logger.Debug().
		Str("event", "uploads.stored").
		Str("stored_name", storedName).
		Int64("size_bytes", n).
		Msg("file stored")

	return &SavedFile{
		StoredName: storedName,
		SizeBytes:  n,
		SHA256:     hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Path resolves a stored name to its on-disk path. Names that do not match
// the generated pattern are rejected, which rules out traversal.
func (s *Store) Path(storedName string) (string, error) {
	if !storedNamePattern.MatchString(storedName) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, storedName), nil
}

// Open opens a stored file for reading.
func (s *Store) Open(storedName string) (*os.File, error) {
	path, err := s.Path(storedName)
	if err != nil {
		return nil, err
	}
	return os.Open(path) // #nosec G304 -- path is built from a validated generated name
}

// Remove deletes a stored file. Removing a missing file is not an error so
// record deletion stays idempotent.
func (s *Store) Remove(storedName string) error {
	path, err := s.Path(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// SanitizeFilename reduces a client-supplied filename to a safe display
// name. The result is never used as an on-disk path.
func SanitizeFilename(name string) string {
	// Drop any path components, Windows-style included.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_' || r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ". ")
	if cleaned == "" {
		return "file"
	}
	const maxLen = 128
	if len(cleaned) > maxLen {
		ext := extensionOf(cleaned)
		cleaned = cleaned[:maxLen-len(ext)] + ext
	}
	return cleaned
}

// extensionOf returns a lowercase extension when it looks like a normal
// file suffix, empty otherwise.
func extensionOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || ext == "." {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if len(ext) > 11 {
		return ""
	}
	return ext
}
