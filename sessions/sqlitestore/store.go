// Package sqlitestore persists CSRF states and sessions in a single SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/go-bucket-browser/sessions"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB owns the SQLite handle. Each named bucket is an independent key space.
type DB struct {
	sqlDB   *sql.DB
	nowTime func() time.Time
}

type Option func(*DB)

// WithNowTime sets the clock used for TTL checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(db *DB) {
		db.nowTime = nowFunc
	}
}

// Open opens (creating if needed) the SQLite file at path and applies migrations.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("[sqlitestore Open] path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("[sqlitestore Open] create directory: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("[sqlitestore Open] open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("[sqlitestore Open] ping sqlite db: %w", err)
	}
	if err := runMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	db := &DB{sqlDB: sqlDB, nowTime: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Close releases the database handle
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// Bucket returns a sessions.Store scoped to name.
func (db *DB) Bucket(name string) sessions.Store {
	return &bucket{db: db, name: name}
}

// PurgeExpired deletes every entry whose TTL has elapsed at now and returns how many were removed.
func (db *DB) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.sqlDB.ExecContext(ctx, `DELETE FROM kv_entries WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("[sqlitestore PurgeExpired] %w", err)
	}
	return res.RowsAffected()
}

type bucket struct {
	db   *DB
	name string
}

var _ sessions.Store = (*bucket)(nil)

func (b *bucket) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("[sqlitestore Put] key is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("[sqlitestore Put] ttl must be positive")
	}

	expiresAt := b.db.nowTime().Add(ttl).UnixMilli()
	_, err := b.db.sqlDB.ExecContext(ctx,
		`INSERT INTO kv_entries (bucket, key, value, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at`,
		b.name, key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("[sqlitestore Put] %s/%s: %w", b.name, key, err)
	}
	return nil
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := b.db.sqlDB.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_entries WHERE bucket = ? AND key = ?`,
		b.name, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sessions.ErrNotFound
		}
		return nil, fmt.Errorf("[sqlitestore Get] %s/%s: %w", b.name, key, err)
	}

	if b.db.nowTime().UnixMilli() >= expiresAt {
		if _, err := b.db.sqlDB.ExecContext(ctx,
			`DELETE FROM kv_entries WHERE bucket = ? AND key = ? AND expires_at = ?`,
			b.name, key, expiresAt,
		); err != nil {
			log.Warn().Err(err).Str("bucket", b.name).Msg("failed to evict expired entry")
		}
		return nil, sessions.ErrNotFound
	}
	return value, nil
}

func (b *bucket) Delete(ctx context.Context, key string) error {
	_, err := b.db.sqlDB.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE bucket = ? AND key = ?`,
		b.name, key,
	)
	if err != nil {
		return fmt.Errorf("[sqlitestore Delete] %s/%s: %w", b.name, key, err)
	}
	return nil
}
