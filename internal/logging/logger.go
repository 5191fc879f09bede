// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging wraps the charmbracelet logger used across credmaster.
package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. It writes to stderr so that table and CSV
// output on stdout stays clean.
var L = clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "credmaster"})

// Configure sets the output and level of L. Unknown level names fall back
// to info.
func Configure(w io.Writer, level string) {
	if w != nil {
		L.SetOutput(w)
	}
	lvl, err := clog.ParseLevel(level)
	if err != nil {
		lvl = clog.InfoLevel
	}
	L.SetLevel(lvl)
}

// SetDebug toggles debug output.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.InfoLevel)
}

// DebugEnabled reports whether debug messages are emitted.
func DebugEnabled() bool {
	return L.GetLevel() <= clog.DebugLevel
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}
