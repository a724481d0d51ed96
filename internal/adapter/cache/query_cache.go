package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// QueryCache memoizes ContextSets per question and retrieval
// parameters. Entries are invalidated by TTL, by LRU eviction and by
// the index generation counter, which callers bump after a rebuild.
type QueryCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
}

type cacheEntry struct {
	result    domain.ContextSet
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question string, topK, topN int, useRerank bool) string {
	data := fmt.Sprintf("%s|%d|%d|%t", question, topK, topN, useRerank)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(question string, topK, topN int, useRerank bool) (domain.ContextSet, bool) {
	key := cacheKey(question, topK, topN, useRerank)

	c.mu.RLock()
	entry, exists := c.entries[key]
	currentGen := c.indexGen
	c.mu.RUnlock()

	if !exists {
		return domain.ContextSet{}, false
	}
	if entry.indexGen != currentGen || time.Since(entry.timestamp) > c.ttl {
		c.mu.Lock()
		c.evict(key)
		c.mu.Unlock()
		return domain.ContextSet{}, false
	}

	return entry.result, true
}

// Put stores a successful result. Failed ContextSets are not cached:
// a transient stage failure should not shadow later good answers.
func (c *QueryCache) Put(question string, topK, topN int, useRerank bool, result domain.ContextSet) {
	if result.Failed() {
		return
	}

	key := cacheKey(question, topK, topN, useRerank)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.evict(oldest)
		}
		c.order = append(c.order, key)
	}

	c.entries[key] = &cacheEntry{
		result:    result,
		timestamp: time.Now(),
		indexGen:  c.indexGen,
	}
}

// Invalidate drops all cached results; call after an index rebuild.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexGen++
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evict removes one key; callers hold the write lock.
func (c *QueryCache) evict(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
