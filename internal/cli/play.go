package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chime-audio/chime/internal/broadcast"
	"github.com/chime-audio/chime/internal/catalog"
	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/mpris"
	"github.com/chime-audio/chime/internal/pipeline"
	"github.com/chime-audio/chime/internal/player"
	"github.com/chime-audio/chime/internal/session"
	"github.com/chime-audio/chime/internal/tui"
	"github.com/chime-audio/chime/internal/web"
)

var (
	playAlbum    string
	playTrack    string
	playPlaylist string
	playQuality  string
	playNoTUI    bool
	playWeb      bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the player",
	Long: `Start the player, optionally queueing an album, track, or playlist.

Examples:
  chime play                      # Open the player UI
  chime play --album 88www9       # Queue and play an album
  chime play --track 174664093    # Queue and play a single track
  chime play --playlist 1550264   # Queue and play a playlist
  chime play --quality hires96    # Prefer 96kHz hi-res streams
  chime play --web --no-tui       # Headless, websocket control only`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playAlbum, "album", "", "Album ID to play")
	playCmd.Flags().StringVar(&playTrack, "track", "", "Track ID to play")
	playCmd.Flags().StringVar(&playPlaylist, "playlist", "", "Playlist ID to play")
	playCmd.Flags().StringVar(&playQuality, "quality", "", "Preferred quality: mp3, cd, hires96, hires192")
	playCmd.Flags().BoolVar(&playNoTUI, "no-tui", false, "Run without the terminal UI")
	playCmd.Flags().BoolVar(&playWeb, "web", false, "Serve the websocket control interface")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ref, err := entityFromFlags()
	if err != nil {
		return err
	}
	return runPlayer(ref, false)
}

func entityFromFlags() (*core.EntityRef, error) {
	set := 0
	var ref core.EntityRef
	if playAlbum != "" {
		set++
		ref = core.EntityRef{Kind: core.KindAlbum, ID: playAlbum}
	}
	if playTrack != "" {
		set++
		ref = core.EntityRef{Kind: core.KindTrack, ID: playTrack}
	}
	if playPlaylist != "" {
		set++
		ref = core.EntityRef{Kind: core.KindPlaylist, ID: playPlaylist}
	}
	if set > 1 {
		return nil, fmt.Errorf("--album, --track, and --playlist are mutually exclusive")
	}
	if set == 0 {
		return nil, nil
	}
	return &ref, nil
}

// runPlayer boots the full stack and blocks until the UI exits or a
// signal arrives. When resume is true the persisted session is primed
// before anything else runs.
func runPlayer(ref *core.EntityRef, resume bool) error {
	if cfg.Catalog.Token == "" {
		return fmt.Errorf("catalog not configured: set catalog.token in the config or CHIME_CATALOG_TOKEN")
	}

	qualityName := cfg.Catalog.Quality
	if playQuality != "" {
		qualityName = playQuality
	}
	quality, err := core.ParseQuality(qualityName)
	if err != nil {
		return err
	}

	useTUI := !playNoTUI
	logger := setupLogger(cfg.Log.File, cfg.Log.Level, useTUI)

	var store *session.Store
	if !cfg.Session.Disabled {
		store, err = session.Open(cfg.Session.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("session persistence unavailable")
			store = nil
		} else {
			defer store.Close()
		}
	}

	svc := catalog.NewCache(
		catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Token, logger),
		time.Duration(cfg.Catalog.CacheTTL)*time.Second,
	)

	engine := pipeline.NewBeepEngine(cfg.Audio.SampleRate)
	defer engine.Close()

	hub := broadcast.New()
	ctrl := player.New(player.Config{
		Catalog: svc,
		Engine:  engine,
		Hub:     hub,
		Store:   store,
		Logger:  logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if resume {
		ctrl.Resume(ctx)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := ctrl.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	controls := ctrl.Controls()

	if err := controls.SetVolume(ctx, cfg.Audio.Volume); err != nil {
		return err
	}
	if ref != nil {
		if err := controls.PlayEntity(ctx, *ref, quality); err != nil {
			return err
		}
	}

	if playWeb || cfg.Web.Enabled {
		srv := web.New(web.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Web.Bind, cfg.Web.Port),
			Hub:      hub,
			Controls: controls,
			Quality:  quality,
			Logger:   logger,
		})
		g.Go(func() error { return srv.ListenAndServe(ctx) })
	}

	if cfg.MPRIS.Enabled {
		bridge, err := mpris.New(mpris.Config{
			Hub:      hub,
			Controls: controls,
			Logger:   logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("mpris unavailable")
		} else {
			g.Go(func() error {
				err := bridge.Run(ctx)
				if err == context.Canceled {
					return nil
				}
				return err
			})
		}
	}

	if useTUI {
		g.Go(func() error {
			defer cancel()
			return tui.Run(&tui.App{
				Hub:      hub,
				Controls: controls,
				Quality:  quality,
				Volume:   cfg.Audio.Volume,
			})
		})
	} else {
		g.Go(func() error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
			return nil
		})
	}

	return g.Wait()
}
