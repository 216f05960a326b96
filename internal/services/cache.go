package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"portfolio-api/internal/models"
)

// PageCache stores rendered responses keyed by "<tag>:<variant>".
//
// Every Invalidate bumps the tag's generation. Callers read Generation
// before listing photos and hand it to Set, which drops the write when the
// tag was invalidated in between, so a rendering built from a listing that
// predates a create or delete is never cached.
type PageCache interface {
	PageInvalidator
	Generation(ctx context.Context, tag string) (uint64, error)
	Get(ctx context.Context, key string) (*models.CacheEntry, bool)
	Set(ctx context.Context, key string, gen uint64, data []byte, contentType string)
}

// CacheKey builds the key for one rendering of a tagged page.
func CacheKey(tag, variant string) string {
	return tag + ":" + variant
}

func cacheTag(key string) string {
	tag, _, _ := strings.Cut(key, ":")
	return tag
}

// CacheService is an in-process PageCache with TTL expiry.
type CacheService struct {
	cache           map[string]*models.CacheEntry
	generations     map[string]uint64
	mu              sync.RWMutex
	ttl             time.Duration
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

func NewCacheService(ttl, cleanupInterval time.Duration) *CacheService {
	cs := &CacheService{
		cache:           make(map[string]*models.CacheEntry),
		generations:     make(map[string]uint64),
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}

	go cs.cleanupExpired()

	return cs
}

// Retrieves a cache entry by key, returning false if not found or expired.
func (cs *CacheService) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, ok := cs.cache[key]
	if !ok || entry.Expires.Before(time.Now()) {
		return nil, false
	}

	return entry, true
}

func (cs *CacheService) Generation(_ context.Context, tag string) (uint64, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.generations[tag], nil
}

// Stores data in the cache; the entry expires after the configured TTL.
// Nothing is stored when the key's tag moved past gen.
func (cs *CacheService) Set(_ context.Context, key string, gen uint64, data []byte, contentType string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.generations[cacheTag(key)] != gen {
		return
	}

	cs.cache[key] = &models.CacheEntry{
		Data:        data,
		ContentType: contentType,
		Expires:     time.Now().Add(cs.ttl),
	}
}

// Invalidate drops every entry stored under tag.
func (cs *CacheService) Invalidate(_ context.Context, tag string) error {
	prefix := CacheKey(tag, "")

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.generations[tag]++
	for k := range cs.cache {
		if strings.HasPrefix(k, prefix) {
			delete(cs.cache, k)
		}
	}
	return nil
}

// Close stops the cleanup goroutine.
func (cs *CacheService) Close() {
	cs.stopOnce.Do(func() { close(cs.stop) })
}

func (cs *CacheService) cleanupExpired() {
	ticker := time.NewTicker(cs.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
		}

		now := time.Now()
		cs.mu.Lock()
		for k, v := range cs.cache {
			if v.Expires.Before(now) {
				delete(cs.cache, k)
			}
		}
		cs.mu.Unlock()
	}
}
