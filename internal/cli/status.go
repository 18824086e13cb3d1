package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/chime-audio/chime/internal/core"
)

var statusURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what a running player is doing",
	Long: `Connect to a running player's websocket interface, read its state,
and print it. The player must be started with --web.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "websocket URL (default from web config)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	url := statusURL
	if url == "" {
		url = fmt.Sprintf("ws://%s:%d/ws", cfg.Web.Bind, cfg.Web.Port)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w (is the player running with --web?)", url, err)
	}
	defer conn.Close()

	// The bootstrap frames arrive immediately on connect; read until a
	// short deadline and keep the latest of each facet.
	var (
		queue    *core.Queue
		state    core.TransportState
		position int64
	)
	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	for {
		var n core.Notification
		if err := conn.ReadJSON(&n); err != nil {
			break
		}
		switch {
		case n.CurrentTrackList != nil:
			q := n.CurrentTrackList.List
			queue = &q
		case n.Status != nil:
			state = n.Status.Status
		case n.Position != nil:
			position = n.Position.Clock
		}
	}

	if state == "" {
		state = core.StateStopped
	}

	if JSONOutput() {
		out := map[string]any{
			"state":    state,
			"position": position,
		}
		if queue != nil {
			out["queue"] = queue
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if queue == nil || queue.IsEmpty() {
		fmt.Printf("%s — queue is empty\n", state)
		return nil
	}

	current := queue.Current()
	if current != nil {
		fmt.Printf("%s  %s — %s  [%d:%02d]\n",
			state, current.Track.Artist, current.Track.Title,
			position/60, position%60)
	}
	fmt.Printf("queue: %s (%d/%d)\n", queue.Title, queue.Cursor+1, queue.Len())
	return nil
}
