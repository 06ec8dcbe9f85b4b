package store

import (
	"context"
	"fmt"
)

// migrations are applied in order; PRAGMA user_version tracks the last one
// applied so restarts are idempotent. Never edit a shipped migration, append.
var migrations = []string{
	// 1: core accounts and supporters
	`
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT NOT NULL CHECK(role IN ('admin', 'staff', 'viewer')),
		password_hash TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS donors (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_donors_name ON donors(name);
	`,

	// 2: campaigns and donations
	`
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		goal_cents INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL CHECK(status IN ('draft', 'active', 'completed', 'archived')),
		starts_at TEXT NOT NULL,
		ends_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns(status);

	CREATE TABLE IF NOT EXISTS donations (
		id TEXT PRIMARY KEY,
		donor_id TEXT NOT NULL REFERENCES donors(id),
		campaign_id TEXT REFERENCES campaigns(id),
		amount_cents INTEGER NOT NULL CHECK(amount_cents > 0),
		currency TEXT NOT NULL,
		method TEXT NOT NULL CHECK(method IN ('card', 'bank', 'cash', 'other')),
		status TEXT NOT NULL CHECK(status IN ('pending', 'completed', 'refunded')),
		message TEXT NOT NULL DEFAULT '',
		receipt_sent_at TEXT,
		received_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(donor_id);
	CREATE INDEX IF NOT EXISTS idx_donations_campaign ON donations(campaign_id);
	CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);
	CREATE INDEX IF NOT EXISTS idx_donations_received ON donations(received_at);
	`,

	// 3: volunteers, events, tickets
	`
	CREATE TABLE IF NOT EXISTS volunteers (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		skills TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL CHECK(status IN ('pending', 'active', 'inactive')),
		joined_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0,
		price_cents INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL CHECK(status IN ('scheduled', 'cancelled', 'completed')),
		campaign_id TEXT REFERENCES campaigns(id),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_starts ON events(starts_at);

	CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL REFERENCES events(id),
		code TEXT NOT NULL,
		holder_name TEXT NOT NULL,
		holder_email TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL CHECK(status IN ('issued', 'checked_in', 'cancelled')),
		issued_at TEXT NOT NULL,
		checked_in_at TEXT,
		UNIQUE(event_id, code)
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_event ON tickets(event_id);
	`,

	// 4: memberships, posts, uploads
	`
	CREATE TABLE IF NOT EXISTS memberships (
		id TEXT PRIMARY KEY,
		donor_id TEXT NOT NULL REFERENCES donors(id),
		tier TEXT NOT NULL CHECK(tier IN ('basic', 'silver', 'gold', 'patron')),
		status TEXT NOT NULL CHECK(status IN ('active', 'lapsed', 'cancelled')),
		auto_renew INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_donor ON memberships(donor_id);
	CREATE INDEX IF NOT EXISTS idx_memberships_expiry ON memberships(status, expires_at);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		body TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		author_id TEXT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL CHECK(status IN ('draft', 'published', 'archived')),
		published_at TEXT,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status);

	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		stored_name TEXT NOT NULL UNIQUE,
		content_type TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		sha256 TEXT NOT NULL,
		uploaded_by TEXT NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL
	);
	`,
}

// migrate applies pending migrations inside transactions, bumping
// user_version after each.
func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}

		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		// PRAGMA does not support placeholders
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bump user_version to %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}

		s.logger.Info().
			Str("event", "store.migration_applied").
			Int("version", version).
			Msg("schema migration applied")
	}

	return nil
}

// SchemaVersion reports the current PRAGMA user_version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v)
	return v, err
}
