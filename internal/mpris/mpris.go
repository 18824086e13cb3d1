// Package mpris exposes the player on the session bus as an
// org.mpris.MediaPlayer2 media player, so desktop media keys and applets
// control playback.
package mpris

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/rs/zerolog"

	"github.com/chime-audio/chime/internal/broadcast"
	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/player"
)

const (
	busName     = "org.mpris.MediaPlayer2.chime"
	objectPath  = "/org/mpris/MediaPlayer2"
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
)

// Config wires the bridge.
type Config struct {
	Hub      *broadcast.Hub
	Controls player.Controls
	Logger   zerolog.Logger
}

// Bridge mirrors hub notifications into MPRIS properties and forwards
// MPRIS method calls to the controller.
type Bridge struct {
	conn     *dbus.Conn
	hub      *broadcast.Hub
	controls player.Controls
	logger   zerolog.Logger
	props    *prop.Properties

	// position tracks the last mirrored clock for Seeked-jump detection.
	// Only Run touches it; method handlers read the exported properties.
	position time.Duration
}

// New connects to the session bus and claims the player name.
func New(cfg Config) (*Bridge, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	b := &Bridge{
		conn:     conn,
		hub:      cfg.Hub,
		controls: cfg.Controls,
		logger:   cfg.Logger.With().Str("component", "mpris").Logger(),
	}

	if err := b.export(); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already owned", busName)
	}

	return b, nil
}

func (b *Bridge) export() error {
	root := &rootObject{}
	playerObj := &playerObject{bridge: b}

	if err := b.conn.Export(root, objectPath, rootIface); err != nil {
		return fmt.Errorf("export root interface: %w", err)
	}
	if err := b.conn.Export(playerObj, objectPath, playerIface); err != nil {
		return fmt.Errorf("export player interface: %w", err)
	}

	propSpec := map[string]map[string]*prop.Prop{
		rootIface: {
			"CanQuit":             {Value: false, Emit: prop.EmitFalse},
			"CanRaise":            {Value: false, Emit: prop.EmitFalse},
			"HasTrackList":        {Value: false, Emit: prop.EmitFalse},
			"Identity":            {Value: "chime", Emit: prop.EmitFalse},
			"SupportedUriSchemes": {Value: []string{}, Emit: prop.EmitFalse},
			"SupportedMimeTypes":  {Value: []string{}, Emit: prop.EmitFalse},
		},
		playerIface: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"Rate":           {Value: 1.0, Emit: prop.EmitFalse},
			"Metadata":       {Value: map[string]dbus.Variant{}, Emit: prop.EmitTrue},
			"Volume": {
				Value:    1.0,
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: b.onVolumeWrite,
			},
			"Position":      {Value: int64(0), Emit: prop.EmitFalse},
			"MinimumRate":   {Value: 1.0, Emit: prop.EmitFalse},
			"MaximumRate":   {Value: 1.0, Emit: prop.EmitFalse},
			"CanGoNext":     {Value: true, Emit: prop.EmitFalse},
			"CanGoPrevious": {Value: true, Emit: prop.EmitFalse},
			"CanPlay":       {Value: true, Emit: prop.EmitFalse},
			"CanPause":      {Value: true, Emit: prop.EmitFalse},
			"CanSeek":       {Value: true, Emit: prop.EmitFalse},
			"CanControl":    {Value: true, Emit: prop.EmitFalse},
		},
	}
	props, err := prop.Export(b.conn, objectPath, propSpec)
	if err != nil {
		return fmt.Errorf("export properties: %w", err)
	}
	b.props = props

	node := &introspect.Node{
		Name: objectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: rootIface, Methods: introspect.Methods(root)},
			{Name: playerIface, Methods: introspect.Methods(playerObj)},
		},
	}
	if err := b.conn.Export(introspect.NewIntrospectable(node), objectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}
	return nil
}

func (b *Bridge) onVolumeWrite(c *prop.Change) *dbus.Error {
	vol, ok := c.Value.(float64)
	if !ok {
		return prop.ErrInvalidArg
	}
	level := int(vol * 100)
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	if err := b.controls.SetVolume(context.Background(), level); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Run mirrors notifications into D-Bus properties until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.hub.Subscribe()
	defer sub.Close()
	defer b.conn.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-sub.C():
			if !ok {
				return nil
			}
			b.apply(n)
		}
	}
}

func (b *Bridge) apply(n core.Notification) {
	switch {
	case n.Status != nil:
		b.props.SetMust(playerIface, "PlaybackStatus", playbackStatus(n.Status.Status))
	case n.Position != nil:
		pos := time.Duration(n.Position.Clock) * time.Second
		jumped := pos < b.position || pos > b.position+2*time.Second
		b.position = pos
		b.props.SetMust(playerIface, "Position", int64(pos/time.Microsecond))
		if jumped {
			if err := b.conn.Emit(objectPath, playerIface+".Seeked", int64(pos/time.Microsecond)); err != nil {
				b.logger.Debug().Err(err).Msg("could not emit Seeked")
			}
		}
	case n.CurrentTrackList != nil:
		meta := map[string]dbus.Variant{}
		if current := n.CurrentTrackList.List.Current(); current != nil {
			meta = trackMetadata(current)
		}
		b.props.SetMust(playerIface, "Metadata", meta)
	}
}

// playbackStatus maps a transport state to the MPRIS PlaybackStatus
// enumeration. Loading and buffering present as Playing: MPRIS has no
// intermediate states.
func playbackStatus(s core.TransportState) string {
	switch s {
	case core.StatePlaying, core.StateLoading, core.StateBuffering:
		return "Playing"
	case core.StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

func trackMetadata(e *core.QueueEntry) map[string]dbus.Variant {
	meta := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath(
			fmt.Sprintf("/com/chimeaudio/chime/track/%d", e.Position))),
		"mpris:length": dbus.MakeVariant(int64(e.Track.Duration / time.Microsecond)),
		"xesam:title":  dbus.MakeVariant(e.Track.Title),
		"xesam:artist": dbus.MakeVariant([]string{e.Track.Artist}),
		"xesam:album":  dbus.MakeVariant(e.Track.Album),
	}
	if e.Track.CoverArt != "" {
		meta["mpris:artUrl"] = dbus.MakeVariant(e.Track.CoverArt)
	}
	return meta
}

// rootObject implements org.mpris.MediaPlayer2. Raise and Quit are
// advertised as unsupported but must still exist.
type rootObject struct{}

func (rootObject) Raise() *dbus.Error { return nil }
func (rootObject) Quit() *dbus.Error  { return nil }

// playerObject implements org.mpris.MediaPlayer2.Player.
type playerObject struct {
	bridge *Bridge
}

func (p *playerObject) submit(cmd player.Command) *dbus.Error {
	if err := p.bridge.controls.Submit(context.Background(), cmd); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (p *playerObject) PlayPause() *dbus.Error { return p.submit(player.PlayPause{}) }
func (p *playerObject) Play() *dbus.Error      { return p.submit(player.PlayPause{}) }
func (p *playerObject) Pause() *dbus.Error     { return p.submit(player.PlayPause{}) }
func (p *playerObject) Next() *dbus.Error      { return p.submit(player.Next{}) }
func (p *playerObject) Previous() *dbus.Error  { return p.submit(player.Previous{}) }
func (p *playerObject) Stop() *dbus.Error      { return p.submit(player.Stop{}) }

// Seek moves by a relative offset in microseconds. The current position
// comes from the exported Position property, which prop.Properties
// guards with its own lock; Bridge.position belongs to Run.
func (p *playerObject) Seek(offset int64) *dbus.Error {
	posUS, _ := p.bridge.props.GetMust(playerIface, "Position").(int64)
	return p.submit(player.Seek{Position: seekTarget(posUS, offset)})
}

// seekTarget resolves a relative microsecond offset against the current
// position, clamping at the start of the track.
func seekTarget(currentUS, offsetUS int64) time.Duration {
	target := time.Duration(currentUS+offsetUS) * time.Microsecond
	if target < 0 {
		return 0
	}
	return target
}

// SetPosition seeks to an absolute position in microseconds. The track id
// is advisory and ignored.
func (p *playerObject) SetPosition(_ dbus.ObjectPath, pos int64) *dbus.Error {
	return p.submit(player.Seek{Position: time.Duration(pos) * time.Microsecond})
}

// OpenUri is declared for clients that probe for it; the catalog is not
// addressable by URI.
func (p *playerObject) OpenUri(string) *dbus.Error {
	return dbus.MakeFailedError(fmt.Errorf("OpenUri is not supported"))
}
