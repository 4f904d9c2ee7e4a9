package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/dedene/tungsten-cli/internal/outfmt"
	"github.com/dedene/tungsten-cli/internal/stack"
	"github.com/dedene/tungsten-cli/internal/token"
)

// Set by the release build with -ldflags.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// buildInfo is what the binary knows about itself.
type buildInfo struct {
	Version string   `json:"version"`
	Commit  string   `json:"commit,omitempty"`
	Date    string   `json:"date,omitempty"`
	Go      string   `json:"go"`
	Stacks  []string `json:"stacks"`
	Token   string   `json:"token"`
}

// readBuildInfo prefers the linker-set values and falls back to the VCS
// stamp Go embeds in binaries built with go install.
func readBuildInfo() buildInfo {
	info := buildInfo{
		Version: strings.TrimSpace(version),
		Commit:  strings.TrimSpace(commit),
		Date:    strings.TrimSpace(date),
		Go:      runtime.Version(),
		Stacks:  stack.DefaultRegistry().Names(),
		Token:   token.Form,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" || info.Version == "dev" {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				info.Version = v
			}
		}

		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = shortCommit(s.Value)
			case s.Key == "vcs.time" && info.Date == "":
				info.Date = s.Value
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}

	return info
}

func shortCommit(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}

	return rev
}

// VersionString returns a human-readable version string.
func VersionString() string {
	info := readBuildInfo()

	var extra []string
	if info.Commit != "" {
		extra = append(extra, info.Commit)
	}

	if info.Date != "" {
		extra = append(extra, info.Date)
	}

	if len(extra) == 0 {
		return info.Version
	}

	return fmt.Sprintf("%s (%s)", info.Version, strings.Join(extra, " "))
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run prints the build, the available stacks and the token layout this
// binary reads and writes.
func (c *VersionCmd) Run(ctx context.Context) error {
	info := readBuildInfo()

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, info)
	}

	fmt.Fprintf(os.Stdout, "tungsten %s\n", info.Version)

	if info.Commit != "" {
		fmt.Fprintf(os.Stdout, "  commit: %s\n", info.Commit)
	}

	if info.Date != "" {
		fmt.Fprintf(os.Stdout, "  date:   %s\n", info.Date)
	}

	fmt.Fprintf(os.Stdout, "  go:     %s\n", info.Go)
	fmt.Fprintf(os.Stdout, "  stacks: %s\n", strings.Join(info.Stacks, ", "))
	fmt.Fprintf(os.Stdout, "  token:  %s\n", info.Token)

	return nil
}
