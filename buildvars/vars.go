// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// Version is set at link time via
// `-ldflags -X github.com/toeirei/credmaster/buildvars.Version=...`.
// Empty for local builds.
var Version string

// VersionOrDefault returns Version if set, otherwise def.
func VersionOrDefault(def string) string {
	if Version != "" {
		return Version
	}
	return def
}
