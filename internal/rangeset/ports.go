// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package rangeset

import (
	"strconv"
	"strings"

	"github.com/toeirei/credmaster/internal/model"
)

const maxPort = 65535

// PortSet is a parsed port range expression.
type PortSet struct {
	expr  string
	spans []model.PortSpan
}

// ParsePorts parses a port range expression.
func ParsePorts(expr string) (*PortSet, error) {
	items := splitItems(expr)
	if len(items) == 0 {
		return nil, &ParseError{Expr: expr, Reason: "empty port range"}
	}
	ps := &PortSet{expr: expr}
	for _, item := range items {
		loStr, hiStr, isRange := strings.Cut(item, "-")
		lo, err := parsePort(loStr)
		if err != nil {
			return nil, &ParseError{Expr: expr, Reason: err.Error()}
		}
		hi := lo
		if isRange {
			if hi, err = parsePort(hiStr); err != nil {
				return nil, &ParseError{Expr: expr, Reason: err.Error()}
			}
			if hi < lo {
				return nil, &ParseError{Expr: expr, Reason: "range end before start in " + item}
			}
		}
		ps.spans = append(ps.spans, model.PortSpan{Lo: lo, Hi: hi})
	}
	return ps, nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Expr: s, Reason: "not a port number"}
	}
	if n < 0 || n > maxPort {
		return 0, &ParseError{Expr: s, Reason: "port out of range"}
	}
	return n, nil
}

// Contains reports whether port falls inside the set.
func (p *PortSet) Contains(port int) bool {
	for _, s := range p.spans {
		if s.Lo <= port && port <= s.Hi {
			return true
		}
	}
	return false
}

// Spans returns a copy of the parsed intervals.
func (p *PortSet) Spans() []model.PortSpan {
	out := make([]model.PortSpan, len(p.spans))
	copy(out, p.spans)
	return out
}

func (p *PortSet) String() string { return p.expr }
