// Package objectstore provides partitioned key-value storage for runtime
// state, in memory or backed by SQLite.
//
// A Store keeps entries in independent partitions created on first write.
// Entries may carry a TTL; expired entries behave as absent. The factory
// hands out the four store flavors the runtime uses: the default in-memory
// and persistent stores for runtime-internal state, and the user persistent
// and transient stores for state owned by deployed artifacts.
//
// An ExpiryMonitor sweeps Expirable stores on a cron schedule, removing
// expired entries, entries older than a maximum age and per-partition
// overflow beyond a maximum entry count.
package objectstore
