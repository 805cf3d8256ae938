package cache

import (
	"context"
	"fmt"
	"time"
)

// Manager handles cache operations with convenience methods keyed by URL
type Manager struct {
	cache Cache
}

// NewManager creates a new cache manager
func NewManager(cacheType, dir string, duration time.Duration) (*Manager, error) {
	var cache Cache

	switch cacheType {
	case "memory":
		cache = NewMemoryCache(duration)
	case "file":
		var err error
		cache, err = NewFileCache(dir, duration)
		if err != nil {
			return nil, fmt.Errorf("creating file cache: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}

	return &Manager{cache: cache}, nil
}

// NewManagerWith wraps an existing cache implementation
func NewManagerWith(cache Cache) *Manager {
	return &Manager{cache: cache}
}

// Get retrieves the cached entry for a video URL
func (m *Manager) Get(ctx context.Context, url string) (*Entry, error) {
	return m.cache.Get(ctx, GenerateKey(url))
}

// SetTranscript records a successful transcription, preserving any
// summary already cached for the URL.
func (m *Manager) SetTranscript(ctx context.Context, url string, entry *Entry) error {
	key := GenerateKey(url)
	if existing, err := m.cache.Get(ctx, key); err == nil && entry.Summary == "" {
		entry.Summary = existing.Summary
	}
	entry.URL = url
	return m.cache.Set(ctx, key, entry)
}

// SetSummary records a successful summarization for the URL, merging it
// into the cached entry so the transcript is preserved.
func (m *Manager) SetSummary(ctx context.Context, url, summary string) error {
	key := GenerateKey(url)
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		entry = &Entry{URL: url}
	}
	entry.Summary = summary
	return m.cache.Set(ctx, key, entry)
}

// Delete removes the cached entry for a URL
func (m *Manager) Delete(ctx context.Context, url string) error {
	return m.cache.Delete(ctx, GenerateKey(url))
}

// GetStats returns cache statistics
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	return m.cache.GetStats(ctx)
}

// PurgeExpired removes expired entries
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	return m.cache.PurgeExpired(ctx)
}

// Clear clears all cached entries
func (m *Manager) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// Close closes the cache
func (m *Manager) Close() error {
	return m.cache.Close()
}
