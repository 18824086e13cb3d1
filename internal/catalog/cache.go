package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/chime-audio/chime/internal/core"
)

// DefaultCacheTTL bounds how long a resolved response is served from
// memory before hitting the catalog again.
const DefaultCacheTTL = 10 * time.Minute

// Cache memoizes catalog responses keyed by request signature. Concurrent
// identical in-flight requests are coalesced into one upstream call.
// Stream URLs are never cached: they are time-limited and resolved lazily
// per queue entry by the controller.
type Cache struct {
	upstream Service
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	flight  singleflight.Group
}

type cacheEntry struct {
	value    any
	inserted time.Time
}

// NewCache wraps upstream with a TTL cache. A non-positive ttl uses
// DefaultCacheTTL.
func NewCache(upstream Service, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		upstream: upstream,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
	}
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.inserted) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Evict anything expired while we are here.
	for k, e := range c.entries {
		if time.Since(e.inserted) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{value: value, inserted: time.Now()}
}

// cached runs fn once per key, serving concurrent and repeat callers from
// the memo until the TTL lapses. Errors are never cached.
func (c *Cache) cached(key string, fn func() (any, error)) (any, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Cache) Album(ctx context.Context, id string) (*core.Album, error) {
	v, err := c.cached("album:"+id, func() (any, error) {
		return c.upstream.Album(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Album), nil
}

func (c *Cache) Track(ctx context.Context, id string) (*core.Track, error) {
	v, err := c.cached("track:"+id, func() (any, error) {
		return c.upstream.Track(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Track), nil
}

func (c *Cache) Playlist(ctx context.Context, id string) (*core.Playlist, error) {
	v, err := c.cached("playlist:"+id, func() (any, error) {
		return c.upstream.Playlist(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Playlist), nil
}

func (c *Cache) ArtistAlbums(ctx context.Context, artistID string) ([]core.Album, error) {
	v, err := c.cached("artist-albums:"+artistID, func() (any, error) {
		return c.upstream.ArtistAlbums(ctx, artistID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Album), nil
}

func (c *Cache) Search(ctx context.Context, query string) (*core.SearchResults, error) {
	v, err := c.cached("search:"+query, func() (any, error) {
		return c.upstream.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.SearchResults), nil
}

func (c *Cache) UserPlaylists(ctx context.Context) ([]core.Playlist, error) {
	v, err := c.cached("user-playlists", func() (any, error) {
		return c.upstream.UserPlaylists(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Playlist), nil
}

// StreamURL passes through uncached.
func (c *Cache) StreamURL(ctx context.Context, trackID string, quality core.Quality) (string, error) {
	return c.upstream.StreamURL(ctx, trackID, quality)
}

var _ Service = (*Cache)(nil)
