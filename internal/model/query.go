// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// PortSpan is an inclusive port interval.
type PortSpan struct {
	Lo, Hi int
}

// CoreQuery holds the constraints a store can evaluate itself. The zero
// value selects every core of the workspace.
type CoreQuery struct {
	// PrivateType restricts to cores whose private has this type.
	PrivateType PrivateType
	// ServiceNames and PortSpans restrict to cores with at least one login
	// whose service matches both constraints.
	ServiceNames []string
	PortSpans    []PortSpan
	// RequireLogins drops cores that have no login at all.
	RequireLogins bool
}

// LoginTarget names a service a new credential should be linked to.
type LoginTarget struct {
	Address string
	Port    int
	Proto   string
}

// NewCredential is a creation request handed to the store.
type NewCredential struct {
	WorkspaceID int64
	// Username is nil when the credential has no public part. A pointer to
	// "" stores a blank username.
	Username *string
	Private  *Private
	Realm    *Realm
	Origin   Origin
	Login    *LoginTarget
}
