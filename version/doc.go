// Package version exposes nanodraw build information.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/nanodraw/version.Version=1.0.0"
package version
