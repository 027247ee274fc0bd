package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildTime    = "unknown"
)

// SetVersion records the build information injected at link time
func SetVersion(version, built string) {
	buildVersion = version
	buildTime = built
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// No config or API key is needed to print the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("proxy6 %s\n", displayVersion(buildVersion))
		fmt.Printf("Built: %s\n", buildTime)
		fmt.Printf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// displayVersion normalizes release versions such as "v1.2.3" to "1.2.3" and
// leaves development builds untouched
func displayVersion(v string) string {
	parsed, err := semver.ParseTolerant(v)
	if err != nil {
		return v
	}
	return parsed.String()
}
