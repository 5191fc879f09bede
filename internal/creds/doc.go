// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Package creds implements the creds command: parsing listing filters and
// add requests, matching stored credentials against them, projecting the
// matches into rows and committing the listing (table or CSV output, host
// export and deletion).
//
// A listing runs in three phases. Query fetches an immutable candidate list
// from the Repository. Project turns it into rows and the set of cores to
// delete without touching the store. Reporter.Commit then writes output and
// performs the deletions.
package creds // import "github.com/toeirei/credmaster/internal/creds"
