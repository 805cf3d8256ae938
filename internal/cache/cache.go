package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache interface defines cache operations
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	PurgeExpired(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Entry is one cached record keyed by URL hash. Transcript and Summary
// are filled independently as their pipeline stages succeed.
type Entry struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	VideoID     string    `json:"video_id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Duration    float64   `json:"duration,omitempty"`
	Transcript  string    `json:"transcript,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccessedAt  time.Time `json:"accessed_at"`
	AccessCount int       `json:"access_count"`
}

// Stats represents cache statistics
type Stats struct {
	TotalEntries   int           `json:"total_entries"`
	HitCount       int64         `json:"hit_count"`
	MissCount      int64         `json:"miss_count"`
	HitRate        float64       `json:"hit_rate"`
	DiskUsage      int64         `json:"disk_usage_bytes"`
	OldestEntry    time.Time     `json:"oldest_entry"`
	AverageAge     time.Duration `json:"average_age"`
	ExpiredEntries int           `json:"expired_entries"`
}

// Common cache errors
var (
	ErrCacheMiss = fmt.Errorf("cache miss")
)

// MemoryCache implements in-memory cache
type MemoryCache struct {
	entries   map[string]*Entry
	mutex     sync.RWMutex
	duration  time.Duration
	hitCount  int64
	missCount int64
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(duration time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]*Entry),
		duration: duration,
	}
}

// Get retrieves an entry from cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*Entry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	now := time.Now()
	if !exists || now.After(entry.ExpiresAt) {
		if exists {
			delete(c.entries, key)
		}
		c.missCount++
		return nil, ErrCacheMiss
	}

	entry.AccessedAt = now
	entry.AccessCount++
	c.hitCount++

	copied := *entry
	return &copied, nil
}

// Set stores an entry in cache
func (c *MemoryCache) Set(ctx context.Context, key string, entry *Entry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	entry.Key = key
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.ExpiresAt = now.Add(c.duration)
	if entry.AccessedAt.IsZero() {
		entry.AccessedAt = now
	}

	copied := *entry
	c.entries[key] = &copied
	return nil
}

// Delete removes an entry from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	return nil
}

// Exists checks if a non-expired entry exists in cache
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.ExpiresAt) {
		return false, nil
	}
	return true, nil
}

// Clear removes all entries from cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*Entry)
	c.hitCount = 0
	c.missCount = 0
	return nil
}

// PurgeExpired removes expired entries and reports how many were removed
func (c *MemoryCache) PurgeExpired(ctx context.Context) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// GetStats returns cache statistics
func (c *MemoryCache) GetStats(ctx context.Context) (*Stats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := &Stats{
		TotalEntries: len(c.entries),
		HitCount:     c.hitCount,
		MissCount:    c.missCount,
	}
	if c.hitCount+c.missCount > 0 {
		stats.HitRate = float64(c.hitCount) / float64(c.hitCount+c.missCount)
	}

	var totalAge time.Duration
	now := time.Now()
	for _, entry := range c.entries {
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		totalAge += now.Sub(entry.CreatedAt)
		if now.After(entry.ExpiresAt) {
			stats.ExpiredEntries++
		}
		stats.DiskUsage += int64(len(entry.Transcript) + len(entry.Summary))
	}
	if len(c.entries) > 0 {
		stats.AverageAge = totalAge / time.Duration(len(c.entries))
	}
	return stats, nil
}

// Close closes the cache
func (c *MemoryCache) Close() error {
	return nil
}

// FileCache implements cache using one JSON file per entry on local disk
type FileCache struct {
	dir      string
	duration time.Duration
	mutex    sync.RWMutex
}

// NewFileCache creates a new file-backed cache under dir
func NewFileCache(dir string, duration time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileCache{dir: dir, duration: duration}, nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get retrieves an entry from disk
func (c *FileCache) Get(ctx context.Context, key string) (*Entry, error) {
	c.mutex.RLock()
	data, err := os.ReadFile(c.path(key))
	c.mutex.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		if err := c.Delete(ctx, key); err != nil {
			fmt.Printf("Warning: failed to delete expired cache entry %s: %v\n", key, err)
		}
		return nil, ErrCacheMiss
	}

	entry.AccessedAt = time.Now()
	entry.AccessCount++
	return &entry, nil
}

// Set stores an entry on disk
func (c *FileCache) Set(ctx context.Context, key string, entry *Entry) error {
	now := time.Now()
	entry.Key = key
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.ExpiresAt = now.Add(c.duration)
	if entry.AccessedAt.IsZero() {
		entry.AccessedAt = now
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	// Write-then-rename keeps concurrent readers away from torn files;
	// last writer wins.
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	return nil
}

// Delete removes an entry from disk
func (c *FileCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Exists checks if a non-expired entry exists on disk
func (c *FileCache) Exists(ctx context.Context, key string) (bool, error) {
	entry, err := c.Get(ctx, key)
	if err == ErrCacheMiss {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// Clear removes all entries from disk
func (c *FileCache) Clear(ctx context.Context) error {
	keys, err := c.keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := c.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// PurgeExpired removes expired entries and reports how many were removed
func (c *FileCache) PurgeExpired(ctx context.Context) (int, error) {
	keys, err := c.keys()
	if err != nil {
		return 0, err
	}

	removed := 0
	now := time.Now()
	for _, key := range keys {
		c.mutex.RLock()
		data, err := os.ReadFile(c.path(key))
		c.mutex.RUnlock()
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil || now.After(entry.ExpiresAt) {
			if err := c.Delete(ctx, key); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// GetStats returns cache statistics for the file backend
func (c *FileCache) GetStats(ctx context.Context) (*Stats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}

	stats := &Stats{}
	var totalAge time.Duration
	now := time.Now()

	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), ".json") {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			continue
		}

		stats.TotalEntries++
		stats.DiskUsage += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, dirEntry.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		totalAge += now.Sub(entry.CreatedAt)
		if now.After(entry.ExpiresAt) {
			stats.ExpiredEntries++
		}
	}

	if stats.TotalEntries > 0 {
		stats.AverageAge = totalAge / time.Duration(stats.TotalEntries)
	}
	return stats, nil
}

// Close closes the cache
func (c *FileCache) Close() error {
	return nil
}

// keys lists entry keys currently on disk
func (c *FileCache) keys() ([]string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}

	var keys []string
	for _, dirEntry := range entries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}

// GenerateKey generates a cache key for a video URL
func GenerateKey(url string) string {
	// MD5 hash for consistent key length; keys double as file names
	hash := md5.Sum([]byte(url))
	return fmt.Sprintf("video-%x", hash)
}
