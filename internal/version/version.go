// Package version reports the armature engine build. The engine version is
// what rulebooks are checked against through `requires_engine`.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Set through -ldflags "-X github.com/armature-dev/armature/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info describes the running engine build.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information of this binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Semver parses the engine version. Development builds are not semver and
// satisfy every rulebook engine constraint.
func (i Info) Semver() (*semver.Version, bool) {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return nil, false
	}
	return v, true
}

// IsRelease reports whether the engine version is a semver release.
func (i Info) IsRelease() bool {
	_, ok := i.Semver()
	return ok
}

func (i Info) String() string {
	return i.Version
}

// Full formats every build field on one line.
func (i Info) Full() string {
	s := fmt.Sprintf("%s (commit %s, built %s, %s %s)", i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
	if !i.IsRelease() {
		s += " [development build]"
	}
	return s
}
