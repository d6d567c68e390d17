package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"coursehub/platform/internal/config"
	"coursehub/platform/internal/repository"
)

// Tier selects how long a route's responses may be served from cache.
type Tier int

const (
	Short Tier = iota
	Medium
	Long
)

func (t Tier) String() string {
	switch t {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Entry is a memoized response.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// ResponseCache memoizes successful read responses in the StateStore.
// Entries expire by TTL only; there is no invalidation on write.
type ResponseCache struct {
	store repository.StateStore
	ttls  map[Tier]time.Duration
}

func New(store repository.StateStore, cfg config.CacheConfig) *ResponseCache {
	return &ResponseCache{
		store: store,
		ttls: map[Tier]time.Duration{
			Short:  cfg.ShortTTL,
			Medium: cfg.MediumTTL,
			Long:   cfg.LongTTL,
		},
	}
}

func (c *ResponseCache) TTL(tier Tier) time.Duration {
	return c.ttls[tier]
}

// Key derives the cache key for a request. Query parameters are sorted by
// name and by value, so equivalent queries map to the same key. vary is
// mixed in for routes whose response depends on the caller.
func Key(method, path string, query url.Values, vary string) string {
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)
	b.WriteByte('?')
	for i, name := range names {
		values := append([]string(nil), query[name]...)
		sort.Strings(values)
		for j, v := range values {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	if vary != "" {
		b.WriteString("#")
		b.WriteString(vary)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return "cache:" + hex.EncodeToString(sum[:])
}

// Lookup returns the entry stored under key, or nil when there is none.
func (c *ResponseCache) Lookup(ctx context.Context, key string) (*Entry, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &e, nil
}

// Save stores e under key for the tier's TTL. Non-2xx entries are ignored;
// the returned bool reports whether anything was written.
func (c *ResponseCache) Save(ctx context.Context, key string, tier Tier, e *Entry) (bool, error) {
	if e.Status < 200 || e.Status > 299 {
		return false, nil
	}
	ttl := c.TTL(tier)
	if ttl <= 0 {
		return false, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("cache encode: %w", err)
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		return false, fmt.Errorf("cache save: %w", err)
	}
	return true, nil
}
