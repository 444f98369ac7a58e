package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b buildInfo) String() string {
	return fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", b.Version, b.Commit, b.Date)
}

// fillFrom replaces placeholder fields with what the Go toolchain stamped
// into the binary. Values injected at link time are left alone.
func (b buildInfo) fillFrom(moduleVersion string, settings []debug.BuildSetting) buildInfo {
	if mv := strings.TrimSpace(moduleVersion); b.Version == "dev" && mv != "" && mv != "(devel)" {
		b.Version = mv
	}
	for _, s := range settings {
		val := strings.TrimSpace(s.Value)
		if val == "" {
			continue
		}
		switch {
		case s.Key == "vcs.revision" && b.Commit == "none":
			b.Commit = val[:min(len(val), 12)]
		case s.Key == "vcs.time" && b.Date == "unknown":
			b.Date = val
		}
	}
	return b
}

func currentBuild() buildInfo {
	b := buildInfo{Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		b = b.fillFrom(info.Main.Version, info.Settings)
	}
	return b
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "instaterm: %v\n", err)
		os.Exit(1)
	}
}
