// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Package rangeset parses host and port range expressions into immutable
// sets that answer membership queries.
//
// Host expressions are comma or space separated lists of single addresses
// (10.0.0.5, fe80::1), CIDR blocks (10.0.0.0/24), full ranges
// (10.0.0.1-10.0.0.20) and last-octet ranges (10.0.0.1-20).
// Port expressions are lists of ports and inclusive ranges (22,80,8000-8100).
package rangeset

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed range expression.
type ParseError struct {
	Expr   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid range %q: %s", e.Expr, e.Reason)
}

// splitItems breaks an expression into its list items.
func splitItems(expr string) []string {
	return strings.FieldsFunc(expr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
