package objectstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/harun/atrium/internal/observability"
)

// PersistentStore is a SQLite-backed partitioned store. Entries survive
// process restarts; expired entries are dropped lazily on access and in bulk
// by Expire.
type PersistentStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPersistentStore opens (or creates) the store database at path.
func NewPersistentStore(logger zerolog.Logger, path string) (*PersistentStore, error) {
	observability.EnsureRegistered()

	if path == "" {
		return nil, errors.New("store database path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &PersistentStore{
		db:     db,
		logger: logger.With().Str("component", "persistent-store").Logger(),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Debug().Str("path", path).Msg("Persistent store opened")
	return s, nil
}

// initSchema creates the store tables
func (s *PersistentStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			partition_name TEXT NOT NULL,
			entry_key TEXT NOT NULL,
			value BLOB NOT NULL,
			stored_at INTEGER NOT NULL,
			expires_at INTEGER,
			PRIMARY KEY (partition_name, entry_key)
		);
		CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);
		CREATE INDEX IF NOT EXISTS idx_entries_stored ON entries(partition_name, stored_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Put stores the value under partition/key.
func (s *PersistentStore) Put(partition, key string, value []byte, ttl time.Duration) error {
	if err := validateKey(partition, key); err != nil {
		return err
	}

	now := time.Now()
	var expiresAt any
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixMilli()
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO entries (partition_name, entry_key, value, stored_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		partition, key, value, now.UnixMilli(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store entry: %w", err)
	}

	observability.RecordStoreOperation("put")
	return nil
}

// Get returns the value stored under partition/key.
func (s *PersistentStore) Get(partition, key string) ([]byte, error) {
	if err := validateKey(partition, key); err != nil {
		return nil, err
	}

	var value []byte
	var expiresAt sql.NullInt64
	err := s.db.QueryRow(
		`SELECT value, expires_at FROM entries WHERE partition_name = ? AND entry_key = ?`,
		partition, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}

	if expiresAt.Valid && expiresAt.Int64 <= time.Now().UnixMilli() {
		if err := s.dropEntry(partition, key); err != nil {
			return nil, err
		}
		return nil, ErrKeyNotFound
	}

	observability.RecordStoreOperation("get")
	return value, nil
}

// Delete removes the entry under partition/key.
func (s *PersistentStore) Delete(partition, key string) error {
	if err := validateKey(partition, key); err != nil {
		return err
	}

	result, err := s.db.Exec(
		`DELETE FROM entries WHERE partition_name = ? AND entry_key = ?
		 AND (expires_at IS NULL OR expires_at > ?)`,
		partition, key, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if affected == 0 {
		return ErrKeyNotFound
	}

	observability.RecordStoreOperation("delete")
	return nil
}

// Contains reports whether a live entry exists under partition/key.
func (s *PersistentStore) Contains(partition, key string) (bool, error) {
	if err := validateKey(partition, key); err != nil {
		return false, err
	}

	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM entries WHERE partition_name = ? AND entry_key = ?
		 AND (expires_at IS NULL OR expires_at > ?)`,
		partition, key, time.Now().UnixMilli(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check entry: %w", err)
	}
	return true, nil
}

// Clear removes every entry in the partition.
func (s *PersistentStore) Clear(partition string) error {
	if err := validatePartition(partition); err != nil {
		return err
	}

	if _, err := s.db.Exec(`DELETE FROM entries WHERE partition_name = ?`, partition); err != nil {
		return fmt.Errorf("failed to clear partition: %w", err)
	}

	observability.RecordStoreOperation("clear")
	return nil
}

// Partitions lists the partitions currently holding entries.
func (s *PersistentStore) Partitions() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT partition_name FROM entries ORDER BY partition_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to list partitions: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	return names, nil
}

// Close closes the underlying database.
func (s *PersistentStore) Close() error {
	return s.db.Close()
}

// Expire removes expired entries, entries older than maxAge and per-partition
// overflow beyond maxEntries, oldest first.
func (s *PersistentStore) Expire(maxAge time.Duration, maxEntries int) (int, error) {
	now := time.Now()
	removed := 0

	result, err := s.db.Exec(`DELETE FROM entries WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return removed, fmt.Errorf("failed to expire entries: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil {
		removed += int(n)
	}

	if maxAge > 0 {
		cutoff := now.Add(-maxAge).UnixMilli()
		result, err := s.db.Exec(`DELETE FROM entries WHERE stored_at <= ?`, cutoff)
		if err != nil {
			return removed, fmt.Errorf("failed to expire entries by age: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			removed += int(n)
		}
	}

	if maxEntries > 0 {
		partitions, err := s.Partitions()
		if err != nil {
			return removed, err
		}
		for _, partition := range partitions {
			result, err := s.db.Exec(
				`DELETE FROM entries WHERE rowid IN (
					SELECT rowid FROM entries WHERE partition_name = ?
					ORDER BY stored_at DESC LIMIT -1 OFFSET ?
				)`,
				partition, maxEntries,
			)
			if err != nil {
				return removed, fmt.Errorf("failed to trim partition %s: %w", partition, err)
			}
			if n, err := result.RowsAffected(); err == nil {
				removed += int(n)
			}
		}
	}

	return removed, nil
}

// dropEntry removes a single row without the liveness guard.
func (s *PersistentStore) dropEntry(partition, key string) error {
	if _, err := s.db.Exec(
		`DELETE FROM entries WHERE partition_name = ? AND entry_key = ?`,
		partition, key,
	); err != nil {
		return fmt.Errorf("failed to drop expired entry: %w", err)
	}
	return nil
}
