// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"github.com/toeirei/credmaster/internal/model"
	"github.com/toeirei/credmaster/internal/sshkey"
)

// Columns is the header of the table and of exported CSV files.
var Columns = []string{"host", "origin", "service", "public", "private", "realm", "type"}

// Row is one line of a listing.
type Row struct {
	Host    string
	Origin  string
	Service string
	Public  string
	Private string
	Realm   string
	Type    string
}

// Values returns the row in Columns order.
func (r Row) Values() []string {
	return []string{r.Host, r.Origin, r.Service, r.Public, r.Private, r.Realm, r.Type}
}

// Projection is the pure result of matching: the rows to show and the cores
// to destroy when delete mode is on.
type Projection struct {
	Rows   []Row
	Doomed []int64
}

// Project expands cores into rows. Cores skipped by the origin or blank
// pattern rules produce neither rows nor deletions. Every other core is
// marked for deletion once when spec.Delete is set.
func Project(spec *FilterSpec, cores []model.Core) Projection {
	var p Projection
	for _, c := range cores {
		origin := c.Origin.Address()
		if origin != "" && len(spec.Origins) > 0 && !containedIn(spec.Origins, origin) {
			continue
		}
		if spec.User != nil && spec.User.Blank() && c.Public != nil && c.Public.Username != "" {
			continue
		}
		if spec.Password != nil && spec.Password.Blank() && c.Private != nil && c.Private.Data != "" {
			continue
		}

		base := Row{
			Public:  c.Username(),
			Private: privateDisplay(c.Private),
			Realm:   c.RealmValue(),
		}
		if c.Private != nil {
			base.Type = c.Private.Type.Label()
		}

		if len(c.Logins) == 0 {
			if len(spec.Origins) == 0 {
				p.Rows = append(p.Rows, base)
			}
		} else {
			for _, l := range c.Logins {
				addr := l.Service.Host.Address
				if len(spec.Hosts) > 0 && !containedIn(spec.Hosts, addr) {
					continue
				}
				row := base
				row.Host = addr
				row.Origin = origin
				row.Service = l.Service.Display()
				p.Rows = append(p.Rows, row)
			}
		}

		if spec.Delete {
			p.Doomed = append(p.Doomed, c.ID)
		}
	}
	return p
}

// privateDisplay renders a secret for listings. SSH keys show the
// fingerprint of their public half instead of the PEM block.
func privateDisplay(p *model.Private) string {
	if p == nil {
		return ""
	}
	switch p.Type {
	case model.PrivateSSHKey:
		return sshkey.Describe([]byte(p.Data))
	case model.PrivatePassword, model.PrivateNTLMHash, model.PrivateNonreplayableHash:
		return p.Data
	}
	return p.Data
}
