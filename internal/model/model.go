// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the credential records shared by the store and the
// filtering engine.
package model // import "github.com/toeirei/credmaster/internal/model"

import (
	"fmt"
	"strconv"
)

// Workspace partitions stored data per engagement.
type Workspace struct {
	ID   int64
	Name string
}

// Host is a network host known to a workspace.
type Host struct {
	ID          int64
	WorkspaceID int64
	Address     string
	Name        string
}

// Service is a network endpoint on a host (e.g., 22/tcp ssh).
type Service struct {
	ID    int64
	Host  Host
	Port  int
	Proto string
	Name  string
}

// Display returns "port/proto (name)", or "port/proto" for unnamed services.
func (s Service) Display() string {
	base := strconv.Itoa(s.Port) + "/" + s.Proto
	if s.Name == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, s.Name)
}

// Session is an interactive session opened on a host.
type Session struct {
	ID   int64
	Host Host
	Type string
}

// Public is the username half of a credential.
type Public struct {
	ID       int64
	Username string
}

// Realm scopes a credential to an authentication domain.
type Realm struct {
	ID    int64
	Key   RealmKey
	Value string
}

// Login records that a credential was seen or used at a service.
type Login struct {
	ID      int64
	CoreID  int64
	Service Service
	Status  string
}

// Core is a stored credential: optional username, optional secret, optional
// realm, where it came from and where it was used.
type Core struct {
	ID          int64
	WorkspaceID int64
	Public      *Public
	Private     *Private
	Realm       *Realm
	Origin      Origin
	Logins      []Login
}

// Username returns the public username or "" when the core has none.
func (c Core) Username() string {
	if c.Public == nil {
		return ""
	}
	return c.Public.Username
}

// Payload returns the private data or "" when the core has none.
func (c Core) Payload() string {
	if c.Private == nil {
		return ""
	}
	return c.Private.Data
}

// RealmValue returns the realm value or "".
func (c Core) RealmValue() string {
	if c.Realm == nil {
		return ""
	}
	return c.Realm.Value
}
