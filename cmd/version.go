package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is stamped by release builds:
//
//	go build -ldflags "-X github.com/abhisek/examgen/cmd.version=v1.2.0"
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the examgen version",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildInfo()
		out := cmd.OutOrStdout()
		if short, _ := cmd.Flags().GetBool("short"); short {
			_, err := fmt.Fprintln(out, info.version)
			return err
		}
		_, err := fmt.Fprintf(out, "examgen %s\n  commit: %s\n  go:     %s\n", info.version, info.commit, info.goVersion)
		return err
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
}

type versionInfo struct {
	version   string
	commit    string
	goVersion string
}

// buildInfo prefers the ldflags version, then the module version recorded
// by go install, and fills the commit from VCS stamping when present.
func buildInfo() versionInfo {
	info := versionInfo{version: version, commit: "unknown", goVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.version == "(devel)" && bi.Main.Version != "" {
		info.version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			info.commit = s.Value
		}
	}
	return info
}
