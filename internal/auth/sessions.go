package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const sessionPrefix = "sess:"

// Session is the server side of one refresh token. The token itself is never
// stored; the key is its SHA-256 digest.
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps refresh sessions in a Badger database with TTL entries.
// Badger expires entries itself, so no sweep has to delete rows.
type SessionStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenSessionStore opens (or creates) the session database in dir.
func OpenSessionStore(dir string, ttl time.Duration) (*SessionStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &SessionStore{db: db, ttl: ttl}, nil
}

func (s *SessionStore) Close() error { return s.db.Close() }

// NewRefreshToken returns 32 bytes of crypto/rand as unpadded base64url.
func NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func sessionKey(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(sessionPrefix + hex.EncodeToString(sum[:]))
}

// Create mints a refresh token and stores its session with TTL.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	token, err := NewRefreshToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	buf, err := json.Marshal(Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(token), buf).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Consume looks up and deletes the session for a refresh token in a single
// transaction. Each token works exactly once; a second use (rotation theft)
// finds nothing and the caller treats the session as expired.
func (s *SessionStore) Consume(ctx context.Context, token string) (*Session, error) {
	key := sessionKey(token)
	var sess Session
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		}); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("consume session: %w", err)
	}
	return &sess, nil
}

// Delete removes the session for a refresh token. Deleting an unknown token
// is not an error; logout is idempotent.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(token))
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteAllForUser drops every session belonging to one user, ending all of
// their devices at once.
func (s *SessionStore) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	prefix := []byte(sessionPrefix)
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			item := it.Item()
			var sess Session
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &sess)
			}); err != nil {
				continue
			}
			if sess.UserID == userID {
				keys = append(keys, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}

	for _, key := range keys {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			return 0, fmt.Errorf("delete session: %w", err)
		}
	}
	return len(keys), nil
}

// Count returns the number of live sessions. Used by the GC job for logging.
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	prefix := []byte(sessionPrefix)
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// Size reports the on-disk LSM and value log sizes in bytes.
func (s *SessionStore) Size() (lsm, vlog int64) {
	return s.db.Size()
}

// RunGC triggers one round of Badger value log garbage collection.
// ErrNoRewrite means nothing needed collecting.
func (s *SessionStore) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}
