package objectstore

import (
	"sort"
	"sync"
	"time"

	"github.com/harun/atrium/internal/observability"
)

// memoryEntry is one stored value with its lifetime bookkeeping.
type memoryEntry struct {
	value     []byte
	storedAt  time.Time
	expiresAt time.Time // zero means no TTL
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-memory partitioned store. Expired entries are dropped
// lazily on access and in bulk by Expire.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]memoryEntry
	closed     bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	observability.EnsureRegistered()

	return &MemoryStore{
		partitions: make(map[string]map[string]memoryEntry),
	}
}

// Put stores the value under partition/key.
func (s *MemoryStore) Put(partition, key string, value []byte, ttl time.Duration) error {
	if err := validateKey(partition, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errStoreClosed
	}

	entries, ok := s.partitions[partition]
	if !ok {
		entries = make(map[string]memoryEntry)
		s.partitions[partition] = entries
	}

	now := time.Now()
	entry := memoryEntry{
		value:    append([]byte(nil), value...),
		storedAt: now,
	}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	entries[key] = entry

	observability.RecordStoreOperation("put")
	return nil
}

// Get returns the value stored under partition/key.
func (s *MemoryStore) Get(partition, key string) ([]byte, error) {
	if err := validateKey(partition, key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errStoreClosed
	}

	entry, ok := s.lookupLocked(partition, key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	observability.RecordStoreOperation("get")
	return append([]byte(nil), entry.value...), nil
}

// Delete removes the entry under partition/key.
func (s *MemoryStore) Delete(partition, key string) error {
	if err := validateKey(partition, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errStoreClosed
	}

	if _, ok := s.lookupLocked(partition, key); !ok {
		return ErrKeyNotFound
	}
	delete(s.partitions[partition], key)

	observability.RecordStoreOperation("delete")
	return nil
}

// Contains reports whether a live entry exists under partition/key.
func (s *MemoryStore) Contains(partition, key string) (bool, error) {
	if err := validateKey(partition, key); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, errStoreClosed
	}

	_, ok := s.lookupLocked(partition, key)
	return ok, nil
}

// Clear removes every entry in the partition.
func (s *MemoryStore) Clear(partition string) error {
	if err := validatePartition(partition); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errStoreClosed
	}

	delete(s.partitions, partition)

	observability.RecordStoreOperation("clear")
	return nil
}

// Partitions lists the partitions currently holding entries.
func (s *MemoryStore) Partitions() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errStoreClosed
	}

	names := make([]string, 0, len(s.partitions))
	for name, entries := range s.partitions {
		if len(entries) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close drops all entries and marks the store unusable.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.partitions = nil
	return nil
}

// Expire removes expired entries, entries older than maxAge and per-partition
// overflow beyond maxEntries, oldest first.
func (s *MemoryStore) Expire(maxAge time.Duration, maxEntries int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errStoreClosed
	}

	now := time.Now()
	removed := 0

	for partition, entries := range s.partitions {
		for key, entry := range entries {
			if entry.expired(now) || (maxAge > 0 && now.Sub(entry.storedAt) >= maxAge) {
				delete(entries, key)
				removed++
			}
		}

		if maxEntries > 0 && len(entries) > maxEntries {
			keys := make([]string, 0, len(entries))
			for key := range entries {
				keys = append(keys, key)
			}
			sort.Slice(keys, func(i, j int) bool {
				return entries[keys[i]].storedAt.Before(entries[keys[j]].storedAt)
			})
			for _, key := range keys[:len(entries)-maxEntries] {
				delete(entries, key)
				removed++
			}
		}

		if len(entries) == 0 {
			delete(s.partitions, partition)
		}
	}

	return removed, nil
}

// lookupLocked returns the live entry under partition/key, dropping it when
// its TTL has passed. The caller must hold the write lock.
func (s *MemoryStore) lookupLocked(partition, key string) (memoryEntry, bool) {
	entries, ok := s.partitions[partition]
	if !ok {
		return memoryEntry{}, false
	}

	entry, ok := entries[key]
	if !ok {
		return memoryEntry{}, false
	}

	if entry.expired(time.Now()) {
		delete(entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
