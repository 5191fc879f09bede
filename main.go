// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Command credmaster stores, lists, exports and prunes credentials harvested
// during an engagement.
//
// Usage:
//
//	credmaster creds [options] [host-range ...]
//	credmaster creds add <key:value>...
//
// See --help for the global options.
package main

import (
	"os"

	"github.com/toeirei/credmaster/internal/logging"
	"github.com/toeirei/credmaster/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("credmaster: %v", err)
		os.Exit(1)
	}
}
