package context

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// VersionInfo contains the application version and build metadata.
type VersionInfo struct {
	Version   string
	Commit    string
	GoVersion string
}

// GetVersion returns the application version information, read from the build
// info embedded in the binary.
func GetVersion() *VersionInfo {
	v := &VersionInfo{Version: "devel", GoVersion: runtime.Version()}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			v.Commit = setting.Value
		}
	}

	return v
}

// String returns the full version string.
func (v *VersionInfo) String() string {
	s := v.Version
	if v.Commit != "" {
		commit := v.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		s = fmt.Sprintf("%s (%s)", s, commit)
	}

	return s
}
