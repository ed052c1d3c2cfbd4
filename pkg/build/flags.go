// SPDX-License-Identifier: MIT

// Package build carries build metadata (name, version, commit, build time)
// injected at compile time via -ldflags. Defaults of "dev"/"unknown" apply
// when the binary is built without the flags.
package build

// Populated by the linker, e.g.
//
//	-ldflags "-X voiceforge/pkg/build.version=v0.3.0 -X voiceforge/pkg/build.commit=$(git rev-parse --short HEAD)"
var (
	name    = "voiceforge"
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info describes the running binary.
type Info struct {
	Name    string
	Version string
	Commit  string
	Date    string
}

// GetInfo returns the build information for the running binary.
func GetInfo() Info {
	return Info{
		Name:    name,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}
