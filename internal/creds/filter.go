// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"regexp"
	"strings"

	"github.com/juju/collections/set"

	"github.com/toeirei/credmaster/internal/model"
	"github.com/toeirei/credmaster/internal/rangeset"
)

// Pattern is a case-insensitive regular expression. The empty pattern is
// meaningful: it selects blank values only.
type Pattern struct {
	Raw string
	re  *regexp.Regexp
}

// NewPattern compiles raw case-insensitively.
func NewPattern(raw string) (*Pattern, error) {
	p := &Pattern{Raw: raw}
	if raw == "" {
		return p, nil
	}
	re, err := regexp.Compile("(?i)" + raw)
	if err != nil {
		return nil, err
	}
	p.re = re
	return p, nil
}

// Blank reports whether this is the empty pattern.
func (p *Pattern) Blank() bool { return p.Raw == "" }

// Match reports whether s matches. The empty pattern matches only "".
func (p *Pattern) Match(s string) bool {
	if p.re == nil {
		return s == ""
	}
	return p.re.MatchString(s)
}

// FilterSpec is the parsed constraint set of one listing. Zero fields are
// unconstrained.
type FilterSpec struct {
	Hosts    []*rangeset.HostSet
	Ports    []*rangeset.PortSet
	Services set.Strings
	Type     model.PrivateType
	User     *Pattern
	Password *Pattern
	Origins  []*rangeset.HostSet
	Delete   bool
	RHosts   bool
	Output   string
}

// typeTokens maps -t arguments to secret types.
var typeTokens = map[string]model.PrivateType{
	"password": model.PrivatePassword,
	"ntlm":     model.PrivateNTLMHash,
	"hash":     model.PrivateNonreplayableHash,
}

// valueFlags are the listing flags that consume the following token.
var valueFlags = set.NewStrings(
	"-o",
	"-p", "--port",
	"-t", "--type",
	"-s", "--service",
	"-P", "--password",
	"-u", "--user",
	"-O", "--origins",
)

// TakesValue reports whether tok is a listing flag that consumes the next
// token.
func TakesValue(tok string) bool { return valueFlags.Contains(tok) }

// IsHelp reports whether args ask for usage rather than a listing.
func IsHelp(args []string) bool {
	if len(args) > 0 && args[0] == "help" {
		return true
	}
	for i := 0; i < len(args); i++ {
		if TakesValue(args[i]) {
			i++
			continue
		}
		if args[i] == "-h" || args[i] == "--help" {
			return true
		}
	}
	return false
}

// ParseFilterSpec builds a FilterSpec from the listing arguments. The first
// malformed token aborts parsing and no partial spec is returned.
func ParseFilterSpec(args []string) (*FilterSpec, error) {
	if IsHelp(args) {
		return nil, ErrHelp
	}
	spec := &FilterSpec{Services: set.NewStrings()}
	for i := 0; i < len(args); i++ {
		tok := args[i]
		var val string
		if TakesValue(tok) {
			if i+1 >= len(args) {
				return nil, argErrorf("option %s requires an argument", tok)
			}
			i++
			val = args[i]
		}
		switch tok {
		case "-o":
			if val == "" {
				return nil, argErrorf("option -o requires a file name")
			}
			spec.Output = val
		case "-p", "--port":
			ps, err := rangeset.ParsePorts(val)
			if err != nil {
				return nil, &ArgumentError{Msg: "invalid port range", Err: err}
			}
			spec.Ports = append(spec.Ports, ps)
		case "-t", "--type":
			t, ok := typeTokens[val]
			if !ok {
				return nil, argErrorf("unrecognized credential type %q (want password, hash or ntlm)", val)
			}
			spec.Type = t
		case "-s", "--service":
			names := 0
			for _, name := range strings.Split(val, ",") {
				if name = strings.TrimSpace(name); name != "" {
					spec.Services.Add(name)
					names++
				}
			}
			if names == 0 {
				return nil, argErrorf("option %s requires at least one service name", tok)
			}
		case "-P", "--password":
			p, err := NewPattern(val)
			if err != nil {
				return nil, &ArgumentError{Msg: "invalid password pattern", Err: err}
			}
			spec.Password = p
		case "-u", "--user":
			p, err := NewPattern(val)
			if err != nil {
				return nil, &ArgumentError{Msg: "invalid user pattern", Err: err}
			}
			spec.User = p
		case "-d":
			spec.Delete = true
		case "-R", "--rhosts":
			spec.RHosts = true
		case "-O", "--origins":
			hs, err := rangeset.ParseHosts(val)
			if err != nil {
				return nil, &ArgumentError{Msg: "invalid origin range", Err: err}
			}
			spec.Origins = append(spec.Origins, hs)
		default:
			if strings.HasPrefix(tok, "-") {
				return nil, argErrorf("unknown option %s", tok)
			}
			hs, err := rangeset.ParseHosts(tok)
			if err != nil {
				return nil, &ArgumentError{Msg: "invalid host range", Err: err}
			}
			spec.Hosts = append(spec.Hosts, hs)
		}
	}
	return spec, nil
}

// LocationConstrained reports whether any host, port or service constraint
// is set. Such constraints can only be met through a login.
func (s *FilterSpec) LocationConstrained() bool {
	return len(s.Hosts) > 0 || len(s.Ports) > 0 || !s.Services.IsEmpty()
}

// CoreQuery returns the part of the spec the repository evaluates.
func (s *FilterSpec) CoreQuery() model.CoreQuery {
	q := model.CoreQuery{
		PrivateType:   s.Type,
		RequireLogins: s.LocationConstrained(),
	}
	if !s.Services.IsEmpty() {
		q.ServiceNames = s.Services.SortedValues()
	}
	for _, ps := range s.Ports {
		q.PortSpans = append(q.PortSpans, ps.Spans()...)
	}
	return q
}

func containedIn(sets []*rangeset.HostSet, addr string) bool {
	for _, hs := range sets {
		if hs.Contains(addr) {
			return true
		}
	}
	return false
}
