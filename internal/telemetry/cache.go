package telemetry

import (
	"sync"
	"time"
)

// ReadingCache holds the most recent decoded reading per (device, kind).
//
// It is an in-memory, non-durable projection of the reading store: entries
// are created on first observation, overwritten only by strictly newer
// observations, and live for the process lifetime. The cache is designed
// for a single writer (the ingestion loop) and many readers (control loop,
// query API); an RWMutex keeps concurrent readers from blocking each other
// and guarantees a reader never sees a half-written entry.
type ReadingCache struct {
	mu      sync.RWMutex
	entries map[Key]CacheEntry
}

// NewReadingCache creates an empty cache.
func NewReadingCache() *ReadingCache {
	return &ReadingCache{
		entries: make(map[Key]CacheEntry),
	}
}

// Update stores a reading for (deviceID, kind) if it is strictly newer
// than the current entry, or if no entry exists yet.
//
// Returns true when the cache was updated. A false return means the
// observation was not newer than the cached one; callers use this to
// detect stale or out-of-order vendor data.
func (c *ReadingCache) Update(deviceID string, kind SensorKind, value Value, observedAt time.Time) bool {
	key := Key{DeviceID: deviceID, Kind: kind}

	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.entries[key]; ok && !observedAt.After(current.ObservedAt) {
		return false
	}

	c.entries[key] = CacheEntry{Value: value, ObservedAt: observedAt}
	return true
}

// Get returns the current entry for (deviceID, kind), if present.
func (c *ReadingCache) Get(deviceID string, kind SensorKind) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[Key{DeviceID: deviceID, Kind: kind}]
	return entry, ok
}

// GetDevice returns all entries for one device, keyed by kind.
// The returned map is a copy; callers may modify it freely.
func (c *ReadingCache) GetDevice(deviceID string) map[SensorKind]CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make(map[SensorKind]CacheEntry)
	for key, entry := range c.entries {
		if key.DeviceID == deviceID {
			entries[key.Kind] = entry
		}
	}
	return entries
}

// Snapshot returns a copy of every entry in the cache.
//
// Each entry is copied whole under the read lock, so a snapshot never
// contains a torn (value, timestamp) pair, though entries for different
// keys may reflect different ingestion cycles.
func (c *ReadingCache) Snapshot() map[Key]CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[Key]CacheEntry, len(c.entries))
	for key, entry := range c.entries {
		snapshot[key] = entry
	}
	return snapshot
}

// Len returns the number of cached entries.
func (c *ReadingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
