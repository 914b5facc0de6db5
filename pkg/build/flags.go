// SPDX-License-Identifier: MIT
//
// Package build carries build metadata (name, version, commit, timestamp)
// embedded into the binary at compile time via -ldflags. Development builds
// without linker flags fall back to "dev" defaults.
package build

// Package-level variables populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

type Flags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

var flags = &Flags{
	Name:    "visualizer",
	Time:    "unknown",
	Commit:  "unknown",
	Version: "dev",
}

// Initialize copies build information from the ldflags variables into the
// Flags struct. Unset values keep their development defaults, so calling
// this on a plain `go build` binary is fine.
func Initialize() {
	if buildName != "" {
		flags.Name = buildName
	}
	if buildTime != "" {
		flags.Time = buildTime
	}
	if buildCommit != "" {
		flags.Commit = buildCommit
	}
	if buildVersion != "" {
		flags.Version = buildVersion
	}
}

// GetFlags returns the current build information. Safe to call at any time;
// Initialize() only improves the answer.
func GetFlags() *Flags {
	return flags
}
