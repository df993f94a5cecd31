// Package version reports build information for the rframe library and CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/goccy/go-json"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo contains build information
type BuildInfo struct {
	Version   string   `json:"version"`
	BuildDate string   `json:"build_date,omitempty"`
	GitCommit string   `json:"git_commit,omitempty"`
	GoVersion string   `json:"go_version"`
	Dirty     bool     `json:"dirty"`
	Module    string   `json:"module,omitempty"`
	Deps      []Module `json:"deps,omitempty"`
}

// Module is a dependency compiled into the binary
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Info returns the build information of the running binary
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GoVersion: GoVersion,
		Dirty:     strings.HasSuffix(GitCommit, "-dirty"),
	}
	if BuildDate != unknownValue {
		info.BuildDate = BuildDate
	}
	if GitCommit != unknownValue {
		info.GitCommit = GitCommit
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.Module = buildInfo.Main.Path
		for _, dep := range buildInfo.Deps {
			info.Deps = append(info.Deps, Module{Path: dep.Path, Version: dep.Version})
		}
	}
	return info
}

// Dependency returns the compiled-in version of the module at path
func (b BuildInfo) Dependency(path string) (Module, bool) {
	for _, m := range b.Deps {
		if m.Path == path {
			return m, true
		}
	}
	return Module{}, false
}

// String returns a human readable summary
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rframe %s", b.Version)
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.BuildDate != "" {
		fmt.Fprintf(&sb, "Build Date: %s\n", b.BuildDate)
	}
	if b.GitCommit != "" {
		commit := strings.TrimSuffix(b.GitCommit, "-dirty")
		if len(commit) > commitHashLength {
			commit = commit[:commitHashLength]
		}
		fmt.Fprintf(&sb, "Git Commit: %s\n", commit)
	}
	fmt.Fprintf(&sb, "Go Version: %s\n", b.GoVersion)
	return sb.String()
}

// JSON returns the build information as indented JSON
func (b BuildInfo) JSON() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// UserAgent identifies rframe in outgoing requests and logs
func UserAgent() string {
	return "rframe/" + Version
}

// IsRelease reports whether Version is a tagged release rather than a dev
// or pre-release build
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-")
}
