// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// PrivateType tags the variant of a Private.
type PrivateType string

const (
	PrivatePassword          PrivateType = "password"
	PrivateNTLMHash          PrivateType = "ntlm-hash"
	PrivateSSHKey            PrivateType = "ssh-key"
	PrivateNonreplayableHash PrivateType = "nonreplayable-hash"
)

// Valid reports whether t is one of the known variants.
func (t PrivateType) Valid() bool {
	switch t {
	case PrivatePassword, PrivateNTLMHash, PrivateSSHKey, PrivateNonreplayableHash:
		return true
	}
	return false
}

// Label is the human readable name used in listings.
func (t PrivateType) Label() string {
	switch t {
	case PrivatePassword:
		return "Password"
	case PrivateNTLMHash:
		return "NTLM hash"
	case PrivateSSHKey:
		return "SSH key"
	case PrivateNonreplayableHash:
		return "Nonreplayable hash"
	}
	return ""
}

// Private is the secret half of a credential. Data holds the payload as
// stored: the cleartext password, "LM:NT" hex for NTLM hashes, the PEM key
// for SSH keys and the opaque hash string for nonreplayable hashes.
type Private struct {
	ID   int64
	Type PrivateType
	Data string
}

// RealmKey is the long-form realm type stored with a realm.
type RealmKey string

const (
	RealmActiveDirectoryDomain  RealmKey = "Active Directory Domain"
	RealmDB2Database            RealmKey = "DB2 Database"
	RealmOracleSystemIdentifier RealmKey = "Oracle System Identifier"
	RealmPostgreSQLDatabase     RealmKey = "PostgreSQL Database"
	RealmRsyncModule            RealmKey = "RSYNC Module"
	RealmWildcard               RealmKey = "*"
)

// realmShortNames maps the short names accepted on the command line.
var realmShortNames = map[string]RealmKey{
	"domain":   RealmActiveDirectoryDomain,
	"db2db":    RealmDB2Database,
	"sid":      RealmOracleSystemIdentifier,
	"pgdb":     RealmPostgreSQLDatabase,
	"rsync":    RealmRsyncModule,
	"wildcard": RealmWildcard,
}

// RealmKeyForShortName resolves a short realm type name.
func RealmKeyForShortName(name string) (RealmKey, bool) {
	k, ok := realmShortNames[name]
	return k, ok
}

// RealmShortNames lists the accepted short names in a stable order.
func RealmShortNames() []string {
	return []string{"domain", "db2db", "sid", "pgdb", "rsync", "wildcard"}
}
