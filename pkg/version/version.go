// Package version holds the build version string, overridable at link time.
package version

// Version is set via -ldflags at release build time.
var Version = "5.0.0"
