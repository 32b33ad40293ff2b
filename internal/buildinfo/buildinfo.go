// Package buildinfo carries version metadata stamped in at build time
// via -ldflags. No other package in this module imports it.
package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for diagnostics.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Full returns a one-line identifier suitable for a panic dump's
// header: version, commit, and build date together.
func Full() string {
	return Short() + " (" + Commit + ", built " + Date + ")"
}
