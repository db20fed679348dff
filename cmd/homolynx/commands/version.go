package commands

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information about homolynx.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "homolynx Version: %s\n", version)
			if v, err := semver.NewVersion(version); err == nil {
				channel := "stable"
				if v.Prerelease() != "" {
					channel = v.Prerelease()
				} else if v.Major() == 0 {
					channel = "development"
				}
				fmt.Fprintf(out, "Release Channel: %s\n", channel)
			}
			fmt.Fprintf(out, "Git Commit: %s\n", commit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
