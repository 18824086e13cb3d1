package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chime-audio/chime/internal/core"
)

// countingService counts upstream calls per method.
type countingService struct {
	albumCalls  atomic.Int64
	searchCalls atomic.Int64
	streamCalls atomic.Int64
	albumErr    error
	slow        time.Duration
}

func (s *countingService) Album(ctx context.Context, id string) (*core.Album, error) {
	if s.slow > 0 {
		time.Sleep(s.slow)
	}
	s.albumCalls.Add(1)
	if s.albumErr != nil {
		return nil, s.albumErr
	}
	return &core.Album{ID: id, Title: "Album " + id}, nil
}

func (s *countingService) Track(ctx context.Context, id string) (*core.Track, error) {
	return &core.Track{ID: id}, nil
}

func (s *countingService) Playlist(ctx context.Context, id string) (*core.Playlist, error) {
	return &core.Playlist{ID: id}, nil
}

func (s *countingService) ArtistAlbums(ctx context.Context, artistID string) ([]core.Album, error) {
	return []core.Album{{ID: "a1"}}, nil
}

func (s *countingService) Search(ctx context.Context, query string) (*core.SearchResults, error) {
	s.searchCalls.Add(1)
	return &core.SearchResults{Query: query}, nil
}

func (s *countingService) UserPlaylists(ctx context.Context) ([]core.Playlist, error) {
	return nil, nil
}

func (s *countingService) StreamURL(ctx context.Context, trackID string, quality core.Quality) (string, error) {
	s.streamCalls.Add(1)
	return "https://streams.example/" + trackID, nil
}

func TestCacheMemoizesWithinTTL(t *testing.T) {
	upstream := &countingService{}
	cache := NewCache(upstream, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		album, err := cache.Album(ctx, "abc")
		if err != nil {
			t.Fatalf("Album: %v", err)
		}
		if album.ID != "abc" {
			t.Errorf("album.ID = %q, want %q", album.ID, "abc")
		}
	}

	if got := upstream.albumCalls.Load(); got != 1 {
		t.Errorf("upstream album calls = %d, want 1", got)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	upstream := &countingService{}
	cache := NewCache(upstream, 10*time.Millisecond)
	ctx := context.Background()

	if _, err := cache.Album(ctx, "abc"); err != nil {
		t.Fatalf("Album: %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	if _, err := cache.Album(ctx, "abc"); err != nil {
		t.Fatalf("Album: %v", err)
	}

	if got := upstream.albumCalls.Load(); got != 2 {
		t.Errorf("upstream album calls = %d, want 2", got)
	}
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	upstream := &countingService{albumErr: fmt.Errorf("boom")}
	cache := NewCache(upstream, time.Minute)
	ctx := context.Background()

	if _, err := cache.Album(ctx, "abc"); err == nil {
		t.Fatal("expected error")
	}

	upstream.albumErr = nil
	album, err := cache.Album(ctx, "abc")
	if err != nil {
		t.Fatalf("Album after recovery: %v", err)
	}
	if album.ID != "abc" {
		t.Errorf("album.ID = %q, want %q", album.ID, "abc")
	}
}

func TestCacheCoalescesConcurrentRequests(t *testing.T) {
	upstream := &countingService{slow: 20 * time.Millisecond}
	cache := NewCache(upstream, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Album(ctx, "abc"); err != nil {
				t.Errorf("Album: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := upstream.albumCalls.Load(); got != 1 {
		t.Errorf("upstream album calls = %d, want 1 (coalesced)", got)
	}
}

func TestCacheStreamURLNotMemoized(t *testing.T) {
	upstream := &countingService{}
	cache := NewCache(upstream, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.StreamURL(ctx, "t1", core.QualityCD); err != nil {
			t.Fatalf("StreamURL: %v", err)
		}
	}

	if got := upstream.streamCalls.Load(); got != 3 {
		t.Errorf("upstream stream calls = %d, want 3", got)
	}
}

func TestCacheKeysAreIndependent(t *testing.T) {
	upstream := &countingService{}
	cache := NewCache(upstream, time.Minute)
	ctx := context.Background()

	if _, err := cache.Album(ctx, "one"); err != nil {
		t.Fatalf("Album: %v", err)
	}
	if _, err := cache.Album(ctx, "two"); err != nil {
		t.Fatalf("Album: %v", err)
	}
	if _, err := cache.Search(ctx, "one"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if got := upstream.albumCalls.Load(); got != 2 {
		t.Errorf("upstream album calls = %d, want 2", got)
	}
	if got := upstream.searchCalls.Load(); got != 1 {
		t.Errorf("upstream search calls = %d, want 1", got)
	}
}
