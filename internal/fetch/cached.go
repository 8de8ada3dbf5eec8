package fetch

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Getter is the GET half of Client.
type Getter interface {
	Get(ctx context.Context, urlStr string, headers map[string]string) (*Result, error)
}

// CachedFetcher memoizes GET results for the lifetime of one run.
// Many distributions share a homepage or repository, so repeated
// lookups are answered from memory. Nothing is persisted.
type CachedFetcher struct {
	next Getter

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once   sync.Once
	result *Result
	err    error
}

// NewCachedFetcher wraps next with an in-memory cache.
func NewCachedFetcher(next Getter) *CachedFetcher {
	return &CachedFetcher{
		next:    next,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the cached result for urlStr and headers, fetching it on first use.
// Concurrent callers for the same key wait on a single request.
func (f *CachedFetcher) Get(ctx context.Context, urlStr string, headers map[string]string) (*Result, error) {
	key := cacheKey(urlStr, headers)

	f.mu.Lock()
	entry, ok := f.entries[key]
	if !ok {
		entry = &cacheEntry{}
		f.entries[key] = entry
	}
	f.mu.Unlock()

	entry.once.Do(func() {
		entry.result, entry.err = f.next.Get(ctx, urlStr, headers)
	})
	return entry.result, entry.err
}

// Len returns the number of cached keys.
func (f *CachedFetcher) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func cacheKey(urlStr string, headers map[string]string) string {
	if len(headers) == 0 {
		return urlStr
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(urlStr)
	for _, k := range keys {
		sb.WriteString("\n")
		sb.WriteString(strings.ToLower(k))
		sb.WriteString(": ")
		sb.WriteString(headers[k])
	}
	return sb.String()
}
