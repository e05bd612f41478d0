// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/waypost/internal/metrics"
)

// Entry represents a cached payload with expiration
type Entry struct {
	Data      []byte
	ExpiresAt time.Time
}

// Cache is a thread-safe TTL cache of encoded payloads.
type Cache struct {
	name  string
	ttl   time.Duration
	group singleflight.Group

	mu         sync.RWMutex
	entries    map[string]Entry
	generation uint64

	statsMu sync.RWMutex
	stats   Stats

	stopOnce sync.Once
	stopChan chan struct{}
}

// Stats tracks cache performance. /api/health reports a snapshot.
type Stats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	TotalKeys   int64     `json:"total_keys"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// New creates a cache labelled name in metrics and starts the background
// cleanup goroutine. Call Close to stop it.
func New(name string, ttl time.Duration) *Cache {
	c := &Cache{
		name:     name,
		ttl:      ttl,
		entries:  make(map[string]Entry),
		stopChan: make(chan struct{}),
		stats: Stats{
			LastCleanup: time.Now(),
		},
	}

	interval := time.Minute
	if ttl > 0 && ttl < interval {
		interval = ttl
	}
	go c.cleanupLoop(interval)

	return c
}

// Enabled reports whether payloads are stored at all.
func (c *Cache) Enabled() bool {
	return c.ttl > 0
}

// Get returns the payload for key if present and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Only delete if no newer value replaced it meanwhile.
		if current, ok := c.entries[key]; ok && current.ExpiresAt.Equal(entry.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

func (c *Cache) setLocked(key string, data []byte) {
	c.entries[key] = Entry{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
	}

	c.statsMu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.statsMu.Unlock()
}

// GetOrLoad returns the cached payload for key, or calls load once for all
// concurrent callers and caches the result. cached is true when no load ran
// on behalf of this caller's request.
func (c *Cache) GetOrLoad(key string, load func() ([]byte, error)) (data []byte, cached bool, err error) {
	if c.Enabled() {
		if data, ok := c.Get(key); ok {
			return data, true, nil
		}
	}

	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		data, err := load()
		if err != nil {
			return nil, err
		}
		if c.Enabled() {
			c.mu.Lock()
			if c.generation == gen {
				c.setLocked(key, data)
			}
			c.mu.Unlock()
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// Clear drops every entry and invalidates loads that started before it.
func (c *Cache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.generation++
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopChan:
			return
		}
	}
}

// cleanup removes all expired entries
func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}

	c.statsMu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
	metrics.RecordCacheLookup(c.name, true)
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
	metrics.RecordCacheLookup(c.name, false)
}

func (c *Cache) recordEviction() {
	c.statsMu.Lock()
	c.stats.Evictions++
	c.statsMu.Unlock()
}
