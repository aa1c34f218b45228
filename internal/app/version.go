package app

import (
	"fmt"
	"runtime/debug"
)

// Overridden at link time, e.g.
//
//	go build -ldflags "-X github.com/heartmarshall/wrdict/internal/app.Version=v0.3.0"
//
// Left empty, Commit and BuildTime come from the VCS stamp the go tool embeds.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// BuildVersion is what --version prints and the startup log records.
func BuildVersion() string {
	info, _ := debug.ReadBuildInfo()
	return formatVersion(Version, Commit, BuildTime, info)
}

func formatVersion(version, commit, built string, info *debug.BuildInfo) string {
	if info != nil {
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		fromVCS := commit == ""
		dirty := false
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if fromVCS {
					commit = s.Value
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if fromVCS && commit != "" {
			if len(commit) > 12 {
				commit = commit[:12]
			}
			if dirty {
				commit += "-dirty"
			}
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, built)
}
