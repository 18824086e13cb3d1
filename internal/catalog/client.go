package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
)

const (
	// Retry configuration for transient errors.
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is an HTTP catalog client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     zerolog.Logger
}

// NewClient creates a catalog client. token is the pre-provisioned API
// token from config; the authentication protocol itself is out of scope.
func NewClient(baseURL, token string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

// Album fetches an album with its tracks in catalog-listed order.
func (c *Client) Album(ctx context.Context, id string) (*core.Album, error) {
	var resp albumResponse
	if err := c.get(ctx, "/albums/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	album := convertAlbum(&resp)
	return &album, nil
}

// Track fetches a single track.
func (c *Client) Track(ctx context.Context, id string) (*core.Track, error) {
	var resp trackResponse
	if err := c.get(ctx, "/tracks/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	track := convertTrack(&resp)
	return &track, nil
}

// Playlist fetches a playlist with its tracks in listed order.
func (c *Client) Playlist(ctx context.Context, id string) (*core.Playlist, error) {
	var resp playlistResponse
	if err := c.get(ctx, "/playlists/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	playlist := convertPlaylist(&resp)
	return &playlist, nil
}

// ArtistAlbums fetches an artist's albums, sorted by release year.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string) ([]core.Album, error) {
	var resp artistResponse
	if err := c.get(ctx, "/artists/"+url.PathEscape(artistID), url.Values{"extra": {"albums"}}, &resp); err != nil {
		return nil, err
	}
	artist := convertArtist(&resp)
	sort.Slice(artist.Albums, func(i, j int) bool {
		return artist.Albums[i].ReleaseYear < artist.Albums[j].ReleaseYear
	})
	return artist.Albums, nil
}

// Search queries the catalog across all entity kinds.
func (c *Client) Search(ctx context.Context, query string) (*core.SearchResults, error) {
	var resp searchResponse
	if err := c.get(ctx, "/search", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}

	results := &core.SearchResults{
		Query:     query,
		Albums:    []core.Album{},
		Tracks:    []core.Track{},
		Artists:   []core.Artist{},
		Playlists: []core.Playlist{},
	}
	for i := range resp.Albums.Items {
		results.Albums = append(results.Albums, convertAlbum(&resp.Albums.Items[i]))
	}
	for i := range resp.Tracks.Items {
		results.Tracks = append(results.Tracks, convertTrack(&resp.Tracks.Items[i]))
	}
	for i := range resp.Artists.Items {
		results.Artists = append(results.Artists, convertArtist(&resp.Artists.Items[i]))
	}
	for i := range resp.Playlists.Items {
		results.Playlists = append(results.Playlists, convertPlaylist(&resp.Playlists.Items[i]))
	}
	return results, nil
}

// UserPlaylists fetches the authenticated user's playlists.
func (c *Client) UserPlaylists(ctx context.Context) ([]core.Playlist, error) {
	var resp userPlaylistsResponse
	if err := c.get(ctx, "/me/playlists", nil, &resp); err != nil {
		return nil, err
	}
	playlists := make([]core.Playlist, 0, len(resp.Playlists.Items))
	for i := range resp.Playlists.Items {
		playlists = append(playlists, convertPlaylist(&resp.Playlists.Items[i]))
	}
	return playlists, nil
}

// StreamURL resolves a track to a time-limited stream URL.
func (c *Client) StreamURL(ctx context.Context, trackID string, quality core.Quality) (string, error) {
	var resp streamURLResponse
	params := url.Values{"format_id": {fmt.Sprintf("%d", int(quality))}}
	if err := c.get(ctx, "/tracks/"+url.PathEscape(trackID)+"/stream", params, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("catalog returned empty stream url for track %s", trackID)
	}
	return resp.URL, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	c.logger.Debug().Str("url", fullURL).Msg("catalog request")

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := baseRetryWait * time.Duration(1<<(attempt-1))
			c.logger.Debug().
				Int("attempt", attempt).
				Dur("wait", wait).
				Err(lastErr).
				Msg("retrying catalog request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if result == nil {
				return nil
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", path, errors.ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = errors.ErrRateLimited
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d", resp.StatusCode)
			continue
		default:
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}
	}

	return fmt.Errorf("catalog request failed after %d retries: %w", maxRetries, lastErr)
}

var _ Service = (*Client)(nil)
