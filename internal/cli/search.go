package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chime-audio/chime/internal/catalog"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Long: `Search the catalog for albums, tracks, artists, and playlists.

Examples:
  chime search "boards of canada"
  chime search -j "music has the right"   # JSON output`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if cfg.Catalog.Token == "" {
		return fmt.Errorf("catalog not configured: set catalog.token in the config or CHIME_CATALOG_TOKEN")
	}

	logger := setupLogger(cfg.Log.File, cfg.Log.Level, false)
	client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Token, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := strings.Join(args, " ")
	results, err := client.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results.Albums) > 0 {
		fmt.Println("Albums:")
		for _, a := range results.Albums {
			fmt.Printf("  %-12s %s — %s (%d)\n", a.ID, a.Artist, a.Title, a.ReleaseYear)
		}
	}
	if len(results.Tracks) > 0 {
		fmt.Println("Tracks:")
		for _, t := range results.Tracks {
			fmt.Printf("  %-12s %s — %s\n", t.ID, t.Artist, t.Title)
		}
	}
	if len(results.Artists) > 0 {
		fmt.Println("Artists:")
		for _, a := range results.Artists {
			fmt.Printf("  %-12s %s\n", a.ID, a.Name)
		}
	}
	if len(results.Playlists) > 0 {
		fmt.Println("Playlists:")
		for _, p := range results.Playlists {
			fmt.Printf("  %-12s %s (%d tracks)\n", p.ID, p.Title, p.TrackCount)
		}
	}
	if len(results.Albums)+len(results.Tracks)+len(results.Artists)+len(results.Playlists) == 0 {
		fmt.Println("No results.")
	}
	return nil
}
