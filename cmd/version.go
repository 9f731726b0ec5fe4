package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set from main, which receives them through -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("learninghour %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
	},
}
