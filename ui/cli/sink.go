// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/toeirei/credmaster/internal/creds"
	"github.com/toeirei/credmaster/internal/i18n"
)

// hostSink prints the RHOSTS line and optionally writes the hosts to a file
// and the clipboard.
type hostSink struct {
	out       io.Writer
	file      string
	clipboard bool
	copy      func(string) error
}

func newHostSink(out io.Writer, file string, useClipboard bool) *hostSink {
	return &hostSink{out: out, file: file, clipboard: useClipboard, copy: clipboard.WriteAll}
}

func (s *hostSink) SetTargetHosts(_ context.Context, hosts []string) error {
	line := strings.Join(hosts, " ")
	_, _ = fmt.Fprintln(s.out, i18n.T("creds.rhosts", line))

	if s.file != "" {
		data := ""
		if len(hosts) > 0 {
			data = strings.Join(hosts, "\n") + "\n"
		}
		if err := os.WriteFile(s.file, []byte(data), 0o644); err != nil {
			return &creds.IOError{Path: s.file, Err: err}
		}
		_, _ = fmt.Fprintln(s.out, i18n.T("creds.rhosts_file", len(hosts), s.file))
	}
	if s.clipboard {
		if err := s.copy(line); err != nil {
			return fmt.Errorf("copy hosts to clipboard: %w", err)
		}
		_, _ = fmt.Fprintln(s.out, i18n.T("creds.rhosts_clipboard", len(hosts)))
	}
	return nil
}
