// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/toeirei/credmaster/internal/config"
	"github.com/toeirei/credmaster/internal/creds"
	"github.com/toeirei/credmaster/internal/testutil"
)

// setupTestEnv isolates config discovery and points the store at a
// per-test in-memory SQLite database.
func setupTestEnv(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)
	t.Setenv("CREDMASTER_DATABASE_TYPE", "sqlite")
	t.Setenv("CREDMASTER_DATABASE_DSN", testutil.MemoryDSN(t))
	closeServices()
	t.Cleanup(closeServices)
}

// runCLI executes a fresh root command and captures its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestCreds_Help(t *testing.T) {
	setupTestEnv(t)
	for _, args := range [][]string{{"creds", "-h"}, {"creds", "help"}, {"creds", "--help"}} {
		out := mustRun(t, args...)
		if !strings.Contains(out, "-R, --rhosts") || !strings.Contains(out, "creds add <key:value>...") {
			t.Fatalf("%v: expected creds usage, got:\n%s", args, out)
		}
		if !strings.Contains(out, "List without -d first") {
			t.Fatalf("%v: expected delete warning in usage, got:\n%s", args, out)
		}
	}
	out := mustRun(t, "creds", "add", "-h")
	if !strings.Contains(out, "realm-type") {
		t.Fatalf("expected add usage, got:\n%s", out)
	}
}

func TestCreds_AddListDelete(t *testing.T) {
	setupTestEnv(t)

	out := mustRun(t, "creds", "add", "user:admin", "password:notpassword", "realm:workgroup")
	if !strings.Contains(out, "Added credential") {
		t.Fatalf("unexpected add output: %q", out)
	}
	mustRun(t, "creds", "add", "user:guest", "password:guest", "host:10.0.0.5", "port:22")

	out = mustRun(t, "creds")
	for _, want := range []string{"admin", "notpassword", "workgroup", "guest", "10.0.0.5", "22/tcp"} {
		if !strings.Contains(out, want) {
			t.Fatalf("listing misses %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "creds", "-p", "22")
	if strings.Contains(out, "admin") || !strings.Contains(out, "guest") {
		t.Fatalf("unexpected -p 22 listing:\n%s", out)
	}

	out = mustRun(t, "creds", "-d", "10.0.0.0/24")
	if !strings.Contains(out, "Deleted 1 creds") {
		t.Fatalf("expected one deletion:\n%s", out)
	}
	out = mustRun(t, "creds")
	if strings.Contains(out, "guest") || !strings.Contains(out, "admin") {
		t.Fatalf("expected only admin after delete:\n%s", out)
	}
}

func TestCreds_AddRejectsTwoSecrets(t *testing.T) {
	setupTestEnv(t)
	_, err := runCLI(t, "creds", "add", "user:x", "password:a", "ntlm:b")
	var ae *creds.ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
	out := mustRun(t, "creds")
	if strings.Contains(out, " x ") {
		t.Fatalf("nothing may be created:\n%s", out)
	}
}

func TestCreds_ArgumentErrorBeforeDatabase(t *testing.T) {
	setupTestEnv(t)
	t.Setenv("CREDMASTER_DATABASE_TYPE", "oracle")
	_, err := runCLI(t, "creds", "-t", "kerberos")
	var ae *creds.ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArgumentError without touching the database, got %v", err)
	}
	if appStore != nil {
		t.Fatalf("store must not be opened for a malformed command")
	}
}

func TestCreds_WorkspaceFlagInsideArgs(t *testing.T) {
	setupTestEnv(t)
	mustRun(t, "creds", "add", "-w", "acme", "user:alice", "password:pw")
	mustRun(t, "creds", "add", "user:bob", "password:pw")

	out := mustRun(t, "creds", "--workspace=acme")
	if !strings.Contains(out, "alice") || strings.Contains(out, "bob") {
		t.Fatalf("expected only acme credentials:\n%s", out)
	}
	out = mustRun(t, "workspace", "list")
	if !strings.Contains(out, "acme") || !strings.Contains(out, "* default") {
		t.Fatalf("unexpected workspace list:\n%s", out)
	}

	path, err := config.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected first run to write %s: %v", path, err)
	}
	var written config.Config
	if err := yaml.Unmarshal(data, &written); err != nil {
		t.Fatalf("parse written config: %v", err)
	}
	if written.Workspace != "default" {
		t.Fatalf("one-off -w leaked into the config file: workspace=%q", written.Workspace)
	}
	if written.Database.Dsn != "./credmaster.db" {
		t.Fatalf("environment DSN leaked into the config file: dsn=%q", written.Database.Dsn)
	}
}

func TestCreds_CSVAndRHostsFile(t *testing.T) {
	setupTestEnv(t)
	rhosts := filepath.Join(t.TempDir(), "rhosts.txt")
	t.Setenv("CREDMASTER_RHOSTS_FILE", rhosts)
	mustRun(t, "creds", "add", "user:guest", "password:guest", "host:10.0.0.5", "port:22")
	mustRun(t, "creds", "add", "user:root", "password:toor", "host:10.0.0.5", "port:21")

	csvPath := filepath.Join(t.TempDir(), "creds.csv")
	out := mustRun(t, "creds", "-R", "-o", csvPath)
	if !strings.Contains(out, "RHOSTS => 10.0.0.5") || !strings.Contains(out, "Wrote creds to "+csvPath) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	data, err := os.ReadFile(rhosts)
	if err != nil {
		t.Fatalf("read rhosts file: %v", err)
	}
	if string(data) != "10.0.0.5\n" {
		t.Fatalf("expected deduplicated host list, got %q", data)
	}
	csvData, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.HasPrefix(string(csvData), strings.Join(creds.Columns, ",")+"\n") {
		t.Fatalf("unexpected csv header:\n%s", csvData)
	}
}

func TestWorkspace_AddDuplicate(t *testing.T) {
	setupTestEnv(t)
	out := mustRun(t, "workspace", "add", "red-team")
	if !strings.Contains(out, "Added workspace red-team") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := runCLI(t, "workspace", "add", "red-team"); err == nil {
		t.Fatalf("expected duplicate workspace error")
	}
}

func TestApplyGlobalFlags(t *testing.T) {
	root := NewRootCmd()
	rest, err := applyGlobalFlags(root, []string{"-v", "-u", "-v", "--workspace=x", "10.0.0.1", "--database.dsn", "d.db", "-d"})
	if err != nil {
		t.Fatalf("applyGlobalFlags: %v", err)
	}
	if strings.Join(rest, " ") != "-u -v 10.0.0.1 -d" {
		t.Fatalf("unexpected remaining args: %v", rest)
	}
	if !verbose {
		t.Fatalf("expected -v to enable verbose")
	}
	if ws, _ := root.PersistentFlags().GetString("workspace"); ws != "x" {
		t.Fatalf("expected workspace x, got %q", ws)
	}
	if dsn, _ := root.PersistentFlags().GetString("database.dsn"); dsn != "d.db" {
		t.Fatalf("expected dsn d.db, got %q", dsn)
	}

	if _, err := applyGlobalFlags(NewRootCmd(), []string{"-w"}); err == nil {
		t.Fatalf("expected error for -w without a value")
	}
}

func TestHostSink(t *testing.T) {
	var out bytes.Buffer
	var copied string
	file := filepath.Join(t.TempDir(), "hosts")
	s := &hostSink{out: &out, file: file, clipboard: true, copy: func(v string) error { copied = v; return nil }}
	if err := s.SetTargetHosts(context.Background(), []string{"10.0.0.5", "10.0.0.6"}); err != nil {
		t.Fatalf("SetTargetHosts: %v", err)
	}
	if copied != "10.0.0.5 10.0.0.6" {
		t.Fatalf("unexpected clipboard content %q", copied)
	}
	if !strings.Contains(out.String(), "RHOSTS => 10.0.0.5 10.0.0.6") {
		t.Fatalf("unexpected output %q", out.String())
	}
	data, _ := os.ReadFile(file)
	if string(data) != "10.0.0.5\n10.0.0.6\n" {
		t.Fatalf("unexpected file content %q", data)
	}

	s = &hostSink{out: &out, clipboard: true, copy: func(string) error { return errors.New("no display") }}
	if err := s.SetTargetHosts(context.Background(), nil); err == nil {
		t.Fatalf("expected clipboard error")
	}
}
