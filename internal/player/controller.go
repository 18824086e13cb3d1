// Package player implements the playback controller: the single owner of
// the queue, transport state, and playback position. One goroutine
// processes commands and pipeline events serially, so no two mutations
// are ever applied concurrently.
package player

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chime-audio/chime/internal/broadcast"
	"github.com/chime-audio/chime/internal/catalog"
	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
	"github.com/chime-audio/chime/internal/pipeline"
	"github.com/chime-audio/chime/internal/session"
)

const (
	defaultCommandBuffer = 16
	jumpStep             = 10 * time.Second
	// Buffering below this percentage enters the Buffering sub-state;
	// reaching it returns to Playing.
	bufferingComplete = 99
)

// Config wires a controller to its collaborators.
type Config struct {
	Catalog catalog.Service
	Engine  pipeline.Engine
	Hub     *broadcast.Hub
	// Store may be nil, in which case sessions are not persisted.
	Store  *session.Store
	Logger zerolog.Logger
	// CommandBuffer bounds the command channel; zero uses the default.
	CommandBuffer int
}

// Controller owns playback state and reconciles it across subscribers.
type Controller struct {
	catalog catalog.Service
	engine  pipeline.Engine
	hub     *broadcast.Hub
	store   *session.Store
	logger  zerolog.Logger

	cmds     chan Command
	internal chan any
	done     chan struct{}

	// State below is owned by the Run goroutine. Resume may touch it
	// before Run starts; nothing else ever does.
	queue        core.Queue
	state        core.TransportState
	target       core.TransportState
	position     time.Duration
	duration     time.Duration
	volume       int
	bitDepth     int
	samplingRate int

	// gen stamps asynchronous work (queue resolution, entry loads);
	// results carrying a stale gen are discarded on arrival.
	gen        int
	retried    bool
	resumeSeek time.Duration
	lastTick   int64
}

// Internal loop messages produced by worker goroutines.
type resolveDone struct {
	gen    int
	target core.TransportState
	queue  core.Queue
	err    error
}

type loadDone struct {
	gen   int
	index int
	url   string
	err   error
}

type engineFailed struct {
	err *errors.PipelineError
}

type positionFix struct {
	pos time.Duration
}

// New creates a controller. Call Resume (optionally) and then Run.
func New(cfg Config) *Controller {
	buf := cfg.CommandBuffer
	if buf <= 0 {
		buf = defaultCommandBuffer
	}
	return &Controller{
		catalog:  cfg.Catalog,
		engine:   cfg.Engine,
		hub:      cfg.Hub,
		store:    cfg.Store,
		logger:   cfg.Logger.With().Str("component", "player").Logger(),
		cmds:     make(chan Command, buf),
		internal: make(chan any, buf),
		done:     make(chan struct{}),
		state:    core.StateStopped,
		target:   core.StateStopped,
		volume:   100,
	}
}

// Controls returns the command submission handle.
func (c *Controller) Controls() Controls {
	return Controls{cmds: c.cmds, done: c.done}
}

// Resume seeds the controller from the persisted session, if any. The
// queue is rebuilt and the cursor primed, but the transport stays
// Stopped: playback must be explicitly restarted. Must be called before
// Run.
func (c *Controller) Resume(ctx context.Context) {
	if c.store == nil {
		return
	}

	rec, err := c.store.Load()
	if err != nil {
		if !errors.Is(err, errors.ErrNoSession) {
			c.logger.Warn().Err(err).Msg("could not load saved session")
		}
		return
	}

	queue, err := BuildQueue(ctx, c.catalog, rec.Entity, rec.Quality)
	if err != nil {
		c.logger.Warn().Err(err).Stringer("entity", rec.Entity).Msg("could not rebuild saved session")
		return
	}

	index := rec.TrackIndex
	if index < 0 || index >= queue.Len() {
		index = 0
	}
	// Prime the cursor without granting any entry Playing status: the
	// transport is Stopped, so exactly zero entries may be Playing.
	for i := range queue.Entries {
		if i < index {
			queue.Entries[i].Status = core.StatusPlayed
		}
	}
	queue.Cursor = index

	c.queue = queue
	c.position = rec.Position
	c.resumeSeek = rec.Position
	if current := queue.Current(); current != nil {
		c.duration = current.Track.Duration
	}

	c.logger.Info().
		Stringer("entity", rec.Entity).
		Int("index", index).
		Dur("position", rec.Position).
		Msg("session resumed")

	c.publishTrackList()
	c.publishPosition(true)
	c.publishStatus()
}

// Run processes commands and pipeline events until ctx is canceled. The
// session is persisted on the way out.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.persist()

	events := c.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.cmds:
			c.handleCommand(ctx, cmd)
		case msg := <-c.internal:
			c.handleInternal(msg)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handleEvent(ev)
		}
	}
}

func (c *Controller) post(msg any) {
	select {
	case c.internal <- msg:
	case <-c.done:
	}
}

// --- command handling -----------------------------------------------

func (c *Controller) handleCommand(ctx context.Context, cmd Command) {
	switch cmd := cmd.(type) {
	case PlayEntity:
		c.handlePlayEntity(ctx, cmd)
	case PlayPause:
		c.handlePlayPause()
	case Next:
		c.handleNext()
	case Previous:
		c.handlePrevious()
	case SkipTo:
		c.handleSkipTo(cmd.Index)
	case Seek:
		c.handleSeek(cmd.Position)
	case JumpForward:
		c.handleSeek(c.position + jumpStep)
	case JumpBackward:
		c.handleSeek(c.position - jumpStep)
	case Stop:
		c.handleStop()
	case SetVolume:
		c.handleSetVolume(cmd.Level)
	case Search:
		c.handleSearch(ctx, cmd.Query)
	case FetchArtistAlbums:
		c.handleFetchArtistAlbums(ctx, cmd.ArtistID)
	case FetchPlaylistTracks:
		c.handleFetchPlaylistTracks(ctx, cmd.PlaylistID)
	case FetchUserPlaylists:
		c.handleFetchUserPlaylists(ctx)
	default:
		c.reject(errors.Rejected("unknown", "unrecognized command %T", cmd))
	}
}

func (c *Controller) handlePlayEntity(ctx context.Context, cmd PlayEntity) {
	// A new PlayEntity supersedes any in-flight resolution: only the
	// newest generation's result is ever applied.
	c.gen++
	gen := c.gen

	c.logger.Info().Stringer("entity", cmd.Entity).Msg("resolving entity")

	go func() {
		queue, err := BuildQueue(ctx, c.catalog, cmd.Entity, cmd.Quality)
		c.post(resolveDone{gen: gen, target: core.StatePlaying, queue: queue, err: err})
	}()
}

func (c *Controller) handlePlayPause() {
	switch c.state {
	case core.StatePlaying, core.StateBuffering:
		c.engineAsync(func() error { return c.engine.Pause() })
		c.setState(core.StatePaused)
		c.target = core.StatePaused
		c.persist()
	case core.StatePaused:
		c.engineAsync(func() error { return c.engine.Play() })
		c.setState(core.StatePlaying)
		c.target = core.StatePlaying
		// The stored tick can be far behind after a long pause; fetch
		// the engine's authoritative position rather than trusting it.
		go func() {
			if pos, ok := c.engine.QueryPosition(); ok {
				c.post(positionFix{pos: pos})
			}
		}()
	case core.StateStopped:
		// Restart a primed or finished queue from its cursor. The cursor
		// entry must hold Playing status before the transport leaves
		// Stopped, and subscribers need the updated list.
		if !c.queue.IsEmpty() {
			c.queue.MoveTo(c.queue.Cursor)
			c.publishTrackList()
			c.loadCurrent(core.StatePlaying)
		}
	}
	// Loading ignores the toggle.
}

func (c *Controller) handleNext() {
	if c.queue.IsEmpty() {
		c.reject(errors.Rejected("next", "queue is empty"))
		return
	}
	if c.queue.Cursor >= c.queue.Len()-1 {
		c.finishQueue()
		return
	}
	c.queue.MoveTo(c.queue.Cursor + 1)
	c.publishTrackList()
	c.loadCurrent(c.playTarget())
	c.persist()
}

func (c *Controller) handlePrevious() {
	if c.queue.IsEmpty() {
		c.reject(errors.Rejected("previous", "queue is empty"))
		return
	}
	// More than a second in, previous restarts the current entry.
	if c.position > time.Second || c.queue.Cursor == 0 {
		c.handleSeek(0)
		return
	}
	c.queue.MoveTo(c.queue.Cursor - 1)
	c.publishTrackList()
	c.loadCurrent(c.playTarget())
	c.persist()
}

func (c *Controller) handleSkipTo(index int) {
	if index < 0 || index >= c.queue.Len() {
		c.reject(errors.Rejected("skipTo", "index %d out of range [0,%d)", index, c.queue.Len()))
		return
	}
	c.queue.MoveTo(index)
	c.publishTrackList()
	c.loadCurrent(c.playTarget())
	c.persist()
}

func (c *Controller) handleSeek(pos time.Duration) {
	switch c.state {
	case core.StatePlaying, core.StatePaused, core.StateBuffering:
	default:
		c.reject(errors.Rejected("seek", "transport is %s", c.state))
		return
	}

	if pos < 0 {
		pos = 0
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}

	// Optimistic: broadcast immediately, corrected by the next
	// authoritative tick from the engine.
	c.position = pos
	c.publishPosition(true)
	c.engineAsync(func() error { return c.engine.Seek(pos) })
}

func (c *Controller) handleStop() {
	// Invalidate any in-flight resolution or load so a late result
	// cannot repopulate the cleared queue.
	c.gen++
	c.engineAsync(func() error { return c.engine.Stop() })
	c.queue.Clear()
	c.setState(core.StateStopped)
	c.target = core.StateStopped
	c.position = 0
	c.duration = 0
	c.publishTrackList()
	c.publishPosition(true)
	c.persist()
}

func (c *Controller) handleSetVolume(level int) {
	if level < 0 || level > 100 {
		c.reject(errors.Rejected("setVolume", "level %d out of range [0,100]", level))
		return
	}
	c.volume = level
	c.engineAsync(func() error { return c.engine.SetVolume(level) })
}

func (c *Controller) handleSearch(ctx context.Context, query string) {
	go func() {
		results, err := c.catalog.Search(ctx, query)
		if err != nil {
			c.logger.Warn().Err(err).Str("query", query).Msg("search failed")
			c.hub.Publish(core.Notification{Error: &core.ErrorNotice{Message: err.Error()}})
			return
		}
		c.hub.Publish(core.Notification{SearchResults: results})
	}()
}

func (c *Controller) handleFetchArtistAlbums(ctx context.Context, artistID string) {
	go func() {
		albums, err := c.catalog.ArtistAlbums(ctx, artistID)
		if err != nil {
			c.hub.Publish(core.Notification{Error: &core.ErrorNotice{Message: err.Error()}})
			return
		}
		c.hub.Publish(core.Notification{ArtistAlbums: &core.ArtistAlbumsNotice{ArtistID: artistID, Albums: albums}})
	}()
}

func (c *Controller) handleFetchPlaylistTracks(ctx context.Context, playlistID string) {
	go func() {
		playlist, err := c.catalog.Playlist(ctx, playlistID)
		if err != nil {
			c.hub.Publish(core.Notification{Error: &core.ErrorNotice{Message: err.Error()}})
			return
		}
		c.hub.Publish(core.Notification{PlaylistTracks: &core.PlaylistTracksNotice{
			PlaylistID: playlistID,
			Tracks:     playlist.Tracks,
		}})
	}()
}

func (c *Controller) handleFetchUserPlaylists(ctx context.Context) {
	go func() {
		playlists, err := c.catalog.UserPlaylists(ctx)
		if err != nil {
			c.hub.Publish(core.Notification{Error: &core.ErrorNotice{Message: err.Error()}})
			return
		}
		c.hub.Publish(core.Notification{UserPlaylists: &core.UserPlaylistsNotice{Playlists: playlists}})
	}()
}

// --- internal messages ----------------------------------------------

func (c *Controller) handleInternal(msg any) {
	switch msg := msg.(type) {
	case resolveDone:
		c.handleResolveDone(msg)
	case loadDone:
		c.handleLoadDone(msg)
	case engineFailed:
		c.handlePipelineError(msg.err)
	case positionFix:
		c.position = msg.pos
		c.publishPosition(true)
	}
}

func (c *Controller) handleResolveDone(msg resolveDone) {
	if msg.gen != c.gen {
		c.logger.Debug().Msg("discarding stale resolution")
		return
	}
	if msg.err != nil {
		// The replacement queue failed to build; the current session is
		// untouched.
		c.logger.Warn().Err(msg.err).Msg("entity resolution failed")
		c.hub.Publish(core.Notification{Error: &core.ErrorNotice{Message: msg.err.Error()}})
		return
	}

	c.queue = msg.queue
	c.queue.MoveTo(0)
	c.position = 0
	c.duration = 0
	if current := c.queue.Current(); current != nil {
		c.duration = current.Track.Duration
	}
	c.resumeSeek = 0
	c.publishTrackList()
	c.publishPosition(true)
	c.loadCurrent(msg.target)
	c.persist()
}

// loadCurrent resolves the current entry's stream URL if needed and loads
// it into the engine, off the serial loop. target is the transport state
// to enter once the load succeeds.
func (c *Controller) loadCurrent(target core.TransportState) {
	current := c.queue.Current()
	if current == nil {
		return
	}

	c.gen++
	gen := c.gen
	index := c.queue.Cursor
	trackID := current.Track.ID
	url := current.StreamURL
	quality := c.queue.Quality
	c.retried = false
	c.target = target
	c.setState(core.StateLoading)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if url == "" {
			resolved, err := c.catalog.StreamURL(ctx, trackID, quality)
			if err != nil {
				c.post(loadDone{gen: gen, index: index, err: errors.Resolution(
					core.EntityRef{Kind: core.KindTrack, ID: trackID}, err)})
				return
			}
			url = resolved
		}
		if err := c.engine.Load(url); err != nil {
			c.post(loadDone{gen: gen, index: index, url: url, err: err})
			return
		}
		c.post(loadDone{gen: gen, index: index, url: url})
	}()
}

func (c *Controller) handleLoadDone(msg loadDone) {
	if msg.gen != c.gen {
		c.logger.Debug().Int("index", msg.index).Msg("discarding stale load")
		return
	}

	if msg.err != nil {
		var resErr *errors.ResolutionError
		if errors.As(msg.err, &resErr) {
			// No stream URL at this quality: mark the entry unplayable
			// and move on.
			c.logger.Warn().Err(msg.err).Int("index", msg.index).Msg("entry unplayable")
			if msg.index < c.queue.Len() {
				c.queue.Entries[msg.index].Status = core.StatusUnplayable
			}
			if c.queue.Cursor >= c.queue.Len()-1 {
				c.finishQueue()
				return
			}
			c.queue.MoveTo(c.queue.Cursor + 1)
			c.publishTrackList()
			c.loadCurrent(c.target)
			return
		}

		var pipeErr *errors.PipelineError
		if !errors.As(msg.err, &pipeErr) {
			pipeErr = &errors.PipelineError{Kind: errors.PipelineInternal, Err: msg.err}
		}
		c.handlePipelineError(pipeErr)
		return
	}

	if msg.index < c.queue.Len() {
		c.queue.Entries[msg.index].StreamURL = msg.url
	}

	seek := c.resumeSeek
	c.resumeSeek = 0
	c.position = seek
	if current := c.queue.Current(); current != nil {
		c.duration = current.Track.Duration
	}

	target := c.target
	c.engineAsync(func() error {
		if seek > 0 {
			if err := c.engine.Seek(seek); err != nil {
				return err
			}
		}
		if target == core.StatePlaying {
			return c.engine.Play()
		}
		return c.engine.Pause()
	})

	c.setState(target)
	c.publishPosition(true)
	c.persist()
}

// --- pipeline events ------------------------------------------------

func (c *Controller) handleEvent(ev pipeline.Event) {
	switch ev.Kind {
	case pipeline.EventPositionTick:
		// The engine is authoritative; any optimistic seek value is
		// overwritten here.
		c.position = ev.Position
		c.publishPosition(false)
	case pipeline.EventDurationKnown:
		if c.duration == 0 {
			c.duration = ev.Duration
		}
		c.hub.Publish(core.Notification{Duration: &core.DurationNotice{Clock: int64(ev.Duration / time.Second)}})
	case pipeline.EventBuffering:
		c.handleBuffering(ev.Percent)
	case pipeline.EventEndOfStream:
		c.handleEndOfStream()
	case pipeline.EventAudioQuality:
		if ev.BitDepth != c.bitDepth || ev.Rate != c.samplingRate {
			c.bitDepth = ev.BitDepth
			c.samplingRate = ev.Rate
			c.hub.Publish(core.Notification{AudioQuality: &core.AudioQualityNotice{
				BitDepth:     ev.BitDepth,
				SamplingRate: ev.Rate,
			}})
		}
	case pipeline.EventError:
		c.handlePipelineError(ev.Err)
	}
}

func (c *Controller) handleBuffering(percent int) {
	if percent < bufferingComplete && c.state == core.StatePlaying {
		c.setState(core.StateBuffering)
	} else if percent >= bufferingComplete && c.state == core.StateBuffering {
		c.setState(c.target)
	}

	if percent%10 == 0 || percent >= bufferingComplete {
		c.hub.Publish(core.Notification{Buffering: &core.BufferingNotice{
			IsBuffering: percent < bufferingComplete,
			Percent:     percent,
			TargetState: c.target,
		}})
	}
}

func (c *Controller) handleEndOfStream() {
	if c.queue.IsEmpty() {
		return
	}
	if c.queue.Cursor >= c.queue.Len()-1 {
		// Never wraps to the first entry.
		c.finishQueue()
		return
	}
	c.queue.MoveTo(c.queue.Cursor + 1)
	c.publishTrackList()
	c.loadCurrent(core.StatePlaying)
	c.persist()
}

func (c *Controller) handlePipelineError(perr *errors.PipelineError) {
	if perr.Transient() && !c.retried {
		// One silent retry for a transient fault, then give up.
		c.retried = true
		c.logger.Warn().Err(perr).Int("index", c.queue.Cursor).Msg("transient pipeline error, retrying entry")
		c.retryCurrent()
		return
	}

	c.logger.Error().Err(perr).Str("kind", string(perr.Kind)).Msg("pipeline error, stopping")
	c.engineAsync(func() error { return c.engine.Stop() })
	if current := c.queue.Current(); current != nil {
		current.Status = core.StatusUnplayed
	}
	c.setState(core.StateStopped)
	c.target = core.StateStopped
	c.hub.Publish(core.Notification{Error: &core.ErrorNotice{Message: perr.Error()}})
	c.persist()
}

// retryCurrent reloads the current entry without resetting the retry
// flag, so a second failure is fatal for the entry.
func (c *Controller) retryCurrent() {
	current := c.queue.Current()
	if current == nil {
		return
	}

	c.gen++
	gen := c.gen
	index := c.queue.Cursor
	url := current.StreamURL
	trackID := current.Track.ID
	quality := c.queue.Quality
	c.setState(core.StateLoading)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if url == "" {
			resolved, err := c.catalog.StreamURL(ctx, trackID, quality)
			if err != nil {
				c.post(loadDone{gen: gen, index: index, err: errors.Pipeline(errors.PipelineInternal, err)})
				return
			}
			url = resolved
		}
		if err := c.engine.Load(url); err != nil {
			c.post(loadDone{gen: gen, index: index, url: url, err: err})
			return
		}
		c.post(loadDone{gen: gen, index: index, url: url})
	}()
}

// finishQueue handles running off the end: transport stops and an empty
// session is persisted, but the finished queue stays visible.
func (c *Controller) finishQueue() {
	for i := range c.queue.Entries {
		if c.queue.Entries[i].Status == core.StatusPlaying {
			c.queue.Entries[i].Status = core.StatusPlayed
		}
	}
	c.engineAsync(func() error { return c.engine.Stop() })
	c.setState(core.StateStopped)
	c.target = core.StateStopped
	c.position = 0
	c.publishTrackList()
	c.publishPosition(true)
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("could not clear session")
		}
	}
}

// --- helpers --------------------------------------------------------

// playTarget keeps the current play/pause preference across skips.
func (c *Controller) playTarget() core.TransportState {
	if c.target == core.StatePaused {
		return core.StatePaused
	}
	return core.StatePlaying
}

func (c *Controller) engineAsync(fn func() error) {
	go func() {
		if err := fn(); err != nil {
			var perr *errors.PipelineError
			if !errors.As(err, &perr) {
				perr = &errors.PipelineError{Kind: errors.PipelineInternal, Err: err}
			}
			c.post(engineFailed{err: perr})
		}
	}()
}

func (c *Controller) setState(s core.TransportState) {
	if c.state == s {
		return
	}
	c.state = s
	c.publishStatus()
}

func (c *Controller) reject(err error) {
	c.logger.Debug().Err(err).Msg("command rejected")
	c.hub.Publish(core.Notification{Error: &core.ErrorNotice{Message: err.Error()}})
}

func (c *Controller) publishStatus() {
	c.hub.Publish(core.Notification{Status: &core.StatusNotice{Status: c.state}})
}

func (c *Controller) publishTrackList() {
	c.hub.Publish(core.Notification{CurrentTrackList: &core.TrackListNotice{List: c.queue.Copy()}})
}

// publishPosition coalesces ticks to one broadcast per whole second
// unless forced.
func (c *Controller) publishPosition(force bool) {
	sec := int64(c.position / time.Second)
	if !force && sec == c.lastTick {
		return
	}
	c.lastTick = sec
	c.hub.Publish(core.Notification{Position: &core.PositionNotice{Clock: sec}})
}

func (c *Controller) persist() {
	if c.store == nil {
		return
	}

	if c.queue.IsEmpty() {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("could not clear session")
		}
		return
	}

	rec := session.Record{
		Entity:     c.queue.Source,
		TrackIndex: c.queue.Cursor,
		Position:   c.position,
		Quality:    c.queue.Quality,
	}
	if err := c.store.Save(rec); err != nil {
		// Playback continues in memory; resume simply finds no session.
		c.logger.Warn().Err(err).Msg("could not persist session")
	}
}

// Snapshot builds a copy of current state. Only safe from the Run
// goroutine or before Run starts; external observers use the hub.
func (c *Controller) Snapshot() core.Snapshot {
	return core.Snapshot{
		Queue:        c.queue.Copy(),
		State:        c.state,
		Position:     c.position,
		Duration:     c.duration,
		Volume:       c.volume,
		BitDepth:     c.bitDepth,
		SamplingRate: c.samplingRate,
	}
}
