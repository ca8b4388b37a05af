// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package version carries build metadata injected via ldflags.
package version

var (
	// Version is the current application version.
	// It is populated by the build system (ldflags) and falls back to the last release tag.
	Version = "v0.4.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the build metadata in the form printed by -version.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
