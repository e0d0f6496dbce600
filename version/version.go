// Package version holds build metadata injected at link time and the
// identity strings embedded into output artifacts.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time.
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain the binary was built with.
var GoInfo = runtime.Version()

const (
	// AppName identifies the tool in artifact metadata.
	AppName = "BiliBili-Manga-Downloader"

	// Copyright is embedded into PDF and image metadata.
	Copyright = "Copyright © 2026 ZhouJie2090"
)

// Software returns the name/version string recorded in image metadata.
func Software() string {
	return fmt.Sprintf("%s %s", AppName, GitRelease)
}

// Creator returns the full tool identity recorded in PDF metadata.
func Creator() string {
	return fmt.Sprintf("%s %s %s", AppName, GitRelease, Copyright)
}
