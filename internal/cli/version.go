package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Stamped via ldflags by the release build; development builds keep
	// the zero values.
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if JSONOutput() {
			info := map[string]string{
				"version":    Version,
				"go_version": runtime.Version(),
				"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			}
			if Commit != "" {
				info["commit"] = Commit
			}
			if BuildDate != "" {
				info["build_date"] = BuildDate
			}
			out, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(out))
			return
		}

		fmt.Println(versionLine())
		if Verbose() {
			fmt.Printf("  go version: %s\n", runtime.Version())
			fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
		}
	},
}

// versionLine renders "chime <version>" with the commit and build date
// appended when the build stamped them.
func versionLine() string {
	line := "chime " + Version
	switch {
	case Commit != "" && BuildDate != "":
		line += fmt.Sprintf(" (%s, %s)", Commit, BuildDate)
	case Commit != "":
		line += fmt.Sprintf(" (%s)", Commit)
	}
	return line
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
