// Package store records privacy-conscious visitor and terminal analytics in
// SQLite. IP addresses and session IDs are hashed with a salt that lives only
// in memory, so hashes are stable for one process and meaningless after it.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("record not found")

// Retention is how long analytics rows are kept before PurgeOlderThan removes them.
const Retention = 365 * 24 * time.Hour

const timeFormat = "2006-01-02T15:04:05Z"

type Visit struct {
	IP        string
	UserAgent string
	Path      string
}

type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type Config struct {
	// Path of the database file; ":memory:" keeps everything in RAM.
	Path   string
	Logger hclog.Logger
	Now    func() time.Time
	// Salt for hashing; a random one is generated when empty.
	Salt string
}

type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
	log  hclog.Logger
}

// Open opens or creates the database at cfg.Path and ensures the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Salt == "" {
		salt, err := randomHex(32)
		if err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		cfg.Salt = salt
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection: sqlite has a single writer and :memory: is per connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db, salt: cfg.Salt, now: cfg.Now, log: cfg.Logger}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug("store opened", "path", cfg.Path)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS visitors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  hashed_ip TEXT NOT NULL,
  user_agent TEXT,
  path TEXT,
  timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS visitors_timestamp ON visitors(timestamp);
CREATE TABLE IF NOT EXISTS commands (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_hash TEXT NOT NULL,
  command TEXT NOT NULL,
  outcome TEXT NOT NULL,
  timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS commands_timestamp ON commands(timestamp);
CREATE TABLE IF NOT EXISTS achievements (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_hash TEXT NOT NULL,
  label TEXT NOT NULL,
  timestamp TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create analytics tables: %w", err)
	}
	return nil
}

// Hash returns the salted, truncated SHA-256 of v.
func (s *Store) Hash(v string) string {
	sum := sha256.Sum256([]byte(v + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *Store) RecordVisit(ctx context.Context, v Visit) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
VALUES (?, ?, ?, ?)`, s.Hash(v.IP), v.UserAgent, v.Path, s.stamp(s.now()))
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordCommand stores one executed command. Only the normalized command
// name is kept, never the raw input.
func (s *Store) RecordCommand(ctx context.Context, sessionID, command, outcome string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO commands (session_hash, command, outcome, timestamp)
VALUES (?, ?, ?, ?)`, s.Hash(sessionID), command, outcome, s.stamp(s.now()))
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

func (s *Store) RecordAchievement(ctx context.Context, sessionID, label string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO achievements (session_hash, label, timestamp)
VALUES (?, ?, ?)`, s.Hash(sessionID), label, s.stamp(s.now()))
	if err != nil {
		return fmt.Errorf("record achievement: %w", err)
	}
	return nil
}

// RecentVisitors lists the newest visits first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
FROM visitors
ORDER BY timestamp DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	var out []Visitor
	for rows.Next() {
		var v Visitor
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp, _ = time.Parse(timeFormat, ts)
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteVisitor removes one visit row.
func (s *Store) DeleteVisitor(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete visitor %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete visitor %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("visitor %d: %w", id, ErrNotFound)
	}
	return nil
}

// PurgeOlderThan deletes analytics rows recorded before cutoff and reports how
// many were removed.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"visitors", "commands", "achievements"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE timestamp < ?`, s.stamp(cutoff))
		if err != nil {
			return total, fmt.Errorf("purge %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if total > 0 {
		s.log.Info("privacy cleanup", "removed", total, "before", cutoff.UTC().Format(time.DateOnly))
	}
	return total, nil
}

func (s *Store) stamp(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
