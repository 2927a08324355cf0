package objectstore

import (
	"errors"
	"fmt"
	"time"
)

// ErrKeyNotFound is returned by Get when the key is absent from the
// partition, including when a TTL already expired it.
var ErrKeyNotFound = errors.New("key not found")

// errStoreClosed rejects operations on a closed store.
var errStoreClosed = errors.New("object store is closed")

// Store is partitioned key-value storage for runtime state. Partitions are
// independent namespaces created on first write. A zero TTL means the entry
// never expires on its own; expiry sweeps may still evict it by age.
type Store interface {
	// Put stores the value under partition/key, replacing any previous value.
	Put(partition, key string, value []byte, ttl time.Duration) error

	// Get returns the value stored under partition/key, or ErrKeyNotFound.
	Get(partition, key string) ([]byte, error)

	// Delete removes the entry. Deleting an absent key returns ErrKeyNotFound.
	Delete(partition, key string) error

	// Contains reports whether a live entry exists under partition/key.
	Contains(partition, key string) (bool, error)

	// Clear removes every entry in the partition.
	Clear(partition string) error

	// Partitions lists the partitions currently holding entries.
	Partitions() ([]string, error)

	// Close releases the store's resources. The store is unusable afterwards.
	Close() error
}

// Expirable stores support bulk expiry sweeps.
type Expirable interface {
	// Expire removes entries whose TTL has passed, entries older than maxAge
	// (when maxAge > 0) and, per partition, the oldest entries beyond
	// maxEntries (when maxEntries > 0). It returns how many were removed.
	Expire(maxAge time.Duration, maxEntries int) (int, error)
}

// validateKey rejects the empty partition and key names the stores never
// accept.
func validateKey(partition, key string) error {
	if partition == "" {
		return fmt.Errorf("partition name must not be empty")
	}
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}
	return nil
}

// validatePartition rejects an empty partition name.
func validatePartition(partition string) error {
	if partition == "" {
		return fmt.Errorf("partition name must not be empty")
	}
	return nil
}
