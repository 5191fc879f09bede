// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds helpers for handling secret payloads in memory.
package security

import (
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret holds a credential payload on its way into the store. Formatting
// and JSON encoding are redacted so debug logs never show it.
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter so every verb is redacted.
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// Reveal returns the payload as a string.
func (s Secret) Reveal() string { return string(s) }

// Len returns the payload length in bytes.
func (s Secret) Len() int { return len(s) }

// Zero overwrites the underlying byte slice with zeros.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// FromString creates a Secret from a string.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes creates a Secret holding a copy of in.
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}
