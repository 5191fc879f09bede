// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for credmaster using
// Cobra. It wires configuration, logging, i18n and the store, and provides
// commands that delegate to the creds and db packages. CLI code should
// remain thin.
package cli
