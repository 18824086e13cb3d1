package cli

import (
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the last session",
	Long: `Restore the previous queue and position, then open the player.
Playback stays paused at the saved spot until you press play.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(nil, true)
	},
}

func init() {
	resumeCmd.Flags().BoolVar(&playNoTUI, "no-tui", false, "Run without the terminal UI")
	resumeCmd.Flags().BoolVar(&playWeb, "web", false, "Serve the websocket control interface")
	rootCmd.AddCommand(resumeCmd)
}
