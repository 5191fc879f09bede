// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestServiceDisplay(t *testing.T) {
	s := Service{Port: 22, Proto: "tcp", Name: "ssh"}
	if got := s.Display(); got != "22/tcp (ssh)" {
		t.Errorf("unexpected Service.Display(): %q", got)
	}

	s.Name = ""
	if got := s.Display(); got != "22/tcp" {
		t.Errorf("unexpected Service.Display() without name: %q", got)
	}
}

func TestOriginAddress(t *testing.T) {
	host := Host{Address: "10.0.0.9"}
	cases := []struct {
		name string
		o    Origin
		want string
	}{
		{"unknown", Origin{}, ""},
		{"import", ImportOrigin("nmap.xml"), ""},
		{"service", Origin{Kind: OriginService, Service: &Service{Host: host}}, "10.0.0.9"},
		{"session", Origin{Kind: OriginSession, Session: &Session{Host: host}}, "10.0.0.9"},
		{"service without ref", Origin{Kind: OriginService}, ""},
	}
	for _, tc := range cases {
		if got := tc.o.Address(); got != tc.want {
			t.Errorf("%s: Address() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestPrivateTypeLabels(t *testing.T) {
	for _, pt := range []PrivateType{PrivatePassword, PrivateNTLMHash, PrivateSSHKey, PrivateNonreplayableHash} {
		if !pt.Valid() {
			t.Errorf("%s should be valid", pt)
		}
		if pt.Label() == "" {
			t.Errorf("%s has no label", pt)
		}
	}
	if PrivateType("kerberos").Valid() {
		t.Errorf("unknown type reported valid")
	}
}

func TestRealmShortNames(t *testing.T) {
	for _, n := range RealmShortNames() {
		if _, ok := RealmKeyForShortName(n); !ok {
			t.Errorf("short name %q not mapped", n)
		}
	}
	if k, _ := RealmKeyForShortName("domain"); k != RealmActiveDirectoryDomain {
		t.Errorf("domain maps to %q", k)
	}
	if _, ok := RealmKeyForShortName("ldap"); ok {
		t.Errorf("unexpected mapping for ldap")
	}
}

func TestCoreAccessorsOnEmptyCore(t *testing.T) {
	var c Core
	if c.Username() != "" || c.Payload() != "" || c.RealmValue() != "" {
		t.Fatalf("empty core should have blank accessors")
	}
}
