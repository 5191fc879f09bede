// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolveBuildVersion_MainVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/credmaster", Version: "v1.2.3"},
	}
	v, c, d := resolveBuildVersion(info)
	if v != "v1.2.3" {
		t.Fatalf("expected v1.2.3 got %s", v)
	}
	if c != gitCommit {
		t.Fatalf("expected commit to equal package gitCommit (default) got %s", c)
	}
	if d != buildDate {
		t.Fatalf("expected date to equal package buildDate (default) got %s", d)
	}
}

func TestResolveBuildVersion_DependencyFallback(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/credmaster", Version: "(devel)"},
		Deps: []*debug.Module{
			{Path: "github.com/toeirei/credmaster", Version: "v0.3.1-0.20261002131337-d1692e4643ee"},
		},
	}
	v, _, _ := resolveBuildVersion(info)
	if v != "v0.3.1-0.20261002131337-d1692e4643ee" {
		t.Fatalf("expected dependency version fallback got %s", v)
	}
}

func TestResolveBuildVersion_VCSSettings(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/credmaster", Version: "v1.0.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
		},
	}
	_, c, d := resolveBuildVersion(info)
	if c != "abc123" || d != "2026-10-01T10:00:00Z" {
		t.Fatalf("expected vcs settings, got %s %s", c, d)
	}
}

func TestResolveBuildVersion_GitCommitFallback(t *testing.T) {
	orig := gitCommit
	defer func() { gitCommit = orig }()
	gitCommit = "deadbeef"
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/credmaster", Version: "(devel)"},
	}
	v, _, _ := resolveBuildVersion(info)
	if v != "deadbeef" {
		t.Fatalf("expected gitCommit fallback got %s", v)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "version: ") || !strings.Contains(out, "commit: ") {
		t.Fatalf("unexpected version output: %q", out)
	}
}
