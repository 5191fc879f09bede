// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package rangeset

import (
	"net/netip"
	"strconv"
	"strings"
)

type addrSpan struct {
	lo, hi netip.Addr
}

func (s addrSpan) contains(a netip.Addr) bool {
	return a.BitLen() == s.lo.BitLen() && s.lo.Compare(a) <= 0 && a.Compare(s.hi) <= 0
}

// HostSet is a parsed host range expression.
type HostSet struct {
	expr  string
	spans []addrSpan
}

// ParseHosts parses a host range expression.
func ParseHosts(expr string) (*HostSet, error) {
	items := splitItems(expr)
	if len(items) == 0 {
		return nil, &ParseError{Expr: expr, Reason: "empty host range"}
	}
	hs := &HostSet{expr: expr}
	for _, item := range items {
		span, err := parseHostItem(item)
		if err != nil {
			return nil, &ParseError{Expr: expr, Reason: err.Error()}
		}
		hs.spans = append(hs.spans, span)
	}
	return hs, nil
}

// Contains reports whether addr falls inside the set. Unparseable addresses
// are never contained.
func (h *HostSet) Contains(addr string) bool {
	a, err := netip.ParseAddr(strings.TrimSpace(addr))
	if err != nil {
		return false
	}
	a = a.Unmap().WithZone("")
	for _, s := range h.spans {
		if s.contains(a) {
			return true
		}
	}
	return false
}

func (h *HostSet) String() string { return h.expr }

func parseHostItem(item string) (addrSpan, error) {
	if strings.Contains(item, "/") {
		p, err := netip.ParsePrefix(item)
		if err != nil {
			return addrSpan{}, err
		}
		p = p.Masked()
		lo := p.Addr()
		return addrSpan{lo: lo, hi: lastAddr(lo, p.Bits())}, nil
	}
	if lo, hi, ok := strings.Cut(item, "-"); ok {
		return parseDashRange(lo, hi)
	}
	a, err := parseAddr(item)
	if err != nil {
		return addrSpan{}, err
	}
	return addrSpan{lo: a, hi: a}, nil
}

func parseDashRange(loStr, hiStr string) (addrSpan, error) {
	lo, err := parseAddr(loStr)
	if err != nil {
		return addrSpan{}, err
	}
	var hi netip.Addr
	if lo.Is4() && !strings.ContainsAny(hiStr, ".:") {
		// 10.0.0.1-20 shorthand: replace the last octet.
		n, err := strconv.Atoi(hiStr)
		if err != nil || n < 0 || n > 255 {
			return addrSpan{}, &ParseError{Expr: hiStr, Reason: "bad last octet"}
		}
		b := lo.As4()
		b[3] = byte(n)
		hi = netip.AddrFrom4(b)
	} else {
		hi, err = parseAddr(hiStr)
		if err != nil {
			return addrSpan{}, err
		}
	}
	if lo.BitLen() != hi.BitLen() {
		return addrSpan{}, &ParseError{Expr: loStr + "-" + hiStr, Reason: "mixed address families"}
	}
	if hi.Less(lo) {
		return addrSpan{}, &ParseError{Expr: loStr + "-" + hiStr, Reason: "range end before start"}
	}
	return addrSpan{lo: lo, hi: hi}, nil
}

func parseAddr(s string) (netip.Addr, error) {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	return a.Unmap().WithZone(""), nil
}

// lastAddr returns the highest address of the prefix starting at lo.
func lastAddr(lo netip.Addr, bits int) netip.Addr {
	if lo.Is4() {
		b := lo.As4()
		setHostBits(b[:], bits)
		return netip.AddrFrom4(b)
	}
	b := lo.As16()
	setHostBits(b[:], bits)
	return netip.AddrFrom16(b)
}

func setHostBits(b []byte, prefixBits int) {
	for i := range b {
		start := i * 8
		switch {
		case start >= prefixBits:
			b[i] = 0xff
		case start+8 > prefixBits:
			b[i] |= 0xff >> uint(prefixBits-start)
		}
	}
}
