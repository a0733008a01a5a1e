// Package version holds build information for storefront binaries.
package version

import (
	"fmt"
	"runtime"
)

// Placeholders used when a field was not stamped at build time
var (
	DefaultVersion        = "dev"
	DefaultReleaseVersion = "0.0.0"
	DefaultBuildDate      = "unknown"
	DefaultGitCommit      = "unknown"
)

// Info describes one build of shopd or shopctl
type Info struct {
	Version        string
	ReleaseVersion string // semver without the leading "v"
	BuildDate      string // ISO 8601
	GitCommit      string // short hash
}

// New returns an Info filled with placeholders
func New() *Info {
	return FromBuild("", "", "", "")
}

// FromBuild builds an Info from ldflags-stamped variables. Empty values are
// replaced by their placeholder.
func FromBuild(ver, release, date, commit string) *Info {
	or := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return &Info{
		Version:        or(ver, DefaultVersion),
		ReleaseVersion: or(release, DefaultReleaseVersion),
		BuildDate:      or(date, DefaultBuildDate),
		GitCommit:      or(commit, DefaultGitCommit),
	}
}

// GoVersion returns the Go runtime version
func GoVersion() string {
	return runtime.Version()
}

func (i *Info) String() string {
	return i.Version
}

// Short returns "v<release>-<commit>", or "v<release>" for unstamped commits
func (i *Info) Short() string {
	if i.GitCommit == DefaultGitCommit {
		return "v" + i.ReleaseVersion
	}
	return fmt.Sprintf("v%s-%s", i.ReleaseVersion, i.GitCommit)
}

// Full returns a multi-line description for `version` commands
func (i *Info) Full() string {
	return fmt.Sprintf("%s (%s)\n  Build Date: %s\n  Git Commit: %s\n  Go Version: %s",
		i.Version, i.Short(), i.BuildDate, i.GitCommit, GoVersion())
}

// Map returns the fields keyed like the /v1/version response
func (i *Info) Map() map[string]string {
	return map[string]string{
		"version":         i.Version,
		"release_version": i.ReleaseVersion,
		"build_date":      i.BuildDate,
		"git_commit":      i.GitCommit,
		"go_version":      GoVersion(),
	}
}
