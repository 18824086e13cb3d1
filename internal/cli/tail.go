package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/tail"
)

var (
	tailURL       string
	tailNoEmoji   bool
	tailTimestamp bool
	tailTemplate  string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback events from a running player",
	Long: `Connect to a running player's websocket interface and print playback
events as they happen. The player must be started with --web.

Examples:
  chime tail
  chime tail --timestamp
  chime tail --format "{{.Time}} {{.Artist}} - {{.Title}}"`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVar(&tailURL, "url", "", "websocket URL (default from web config)")
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "Disable emoji output")
	tailCmd.Flags().BoolVar(&tailTimestamp, "timestamp", false, "Show timestamps")
	tailCmd.Flags().StringVar(&tailTemplate, "format", "", "Custom Go template for events")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	url := tailURL
	if url == "" {
		url = fmt.Sprintf("ws://%s:%d/ws", cfg.Web.Bind, cfg.Web.Port)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w (is the player running with --web?)", url, err)
	}
	defer conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		conn.Close()
	}()

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailTemplate),
	)
	tracker := tail.NewTracker()

	for {
		var n core.Notification
		if err := conn.ReadJSON(&n); err != nil {
			return nil
		}
		for _, event := range tracker.Observe(n) {
			fmt.Println(formatter.Format(event))
		}
	}
}
