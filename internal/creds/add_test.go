// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/toeirei/credmaster/internal/model"
	"github.com/toeirei/credmaster/internal/testutil"
)

func noFiles(path string) ([]byte, error) {
	return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
}

func TestScenario_AddPasswordWithRealm(t *testing.T) {
	repo := &fakeRepo{}
	req, err := ParseAddTokens([]string{"user:admin", "password:notpassword", "realm:workgroup"}, noFiles)
	if err != nil {
		t.Fatalf("ParseAddTokens: %v", err)
	}
	if _, err := Add(context.Background(), repo, testWS, req); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one creation, got %d", len(repo.created))
	}
	nc := repo.created[0]
	if nc.Username == nil || *nc.Username != "admin" {
		t.Fatalf("unexpected username: %v", nc.Username)
	}
	if nc.Private == nil || nc.Private.Type != model.PrivatePassword || nc.Private.Data != "notpassword" {
		t.Fatalf("unexpected private: %+v", nc.Private)
	}
	if nc.Realm == nil || nc.Realm.Key != model.RealmActiveDirectoryDomain || nc.Realm.Value != "workgroup" {
		t.Fatalf("unexpected realm: %+v", nc.Realm)
	}
	if nc.Origin.Kind != model.OriginImport || nc.Origin.Label != ImportLabel {
		t.Fatalf("unexpected origin: %+v", nc.Origin)
	}
	if nc.WorkspaceID != testWS || nc.Login != nil {
		t.Fatalf("unexpected request: %+v", nc)
	}
	if req.Secret.Len() != 0 && req.Secret.Reveal() == "notpassword" {
		t.Fatalf("secret should be zeroed after submission")
	}
}

func TestParseAddTokens_TwoSecretsRejected(t *testing.T) {
	repo := &fakeRepo{}
	for _, args := range [][]string{
		{"password:a", "ntlm:b"},
		{"user:x", "hash:h", "ssh-key:/tmp/id"},
		{"ntlm:aa:bb", "password:p"},
	} {
		req, err := ParseAddTokens(args, noFiles)
		var ae *ArgumentError
		if !errors.As(err, &ae) || req != nil {
			t.Fatalf("%v: expected ArgumentError, got req=%v err=%v", args, req, err)
		}
	}
	if len(repo.created) != 0 {
		t.Fatalf("nothing may be created")
	}
}

func TestParseAddTokens_Errors(t *testing.T) {
	cases := [][]string{
		nil,
		{"user"},
		{"username:admin"},
		{"user:a", "user:b"},
		{"user:a", "realm:corp", "realm-type:kerberos"},
		{"user:a", "realm-type:domain"},
		{"user:a", "host:10.0.0.1"},
		{"user:a", "port:22"},
		{"user:a", "host:example.org", "port:22"},
		{"user:a", "host:10.0.0.1", "port:70000"},
	}
	for _, args := range cases {
		_, err := ParseAddTokens(args, noFiles)
		var ae *ArgumentError
		if !errors.As(err, &ae) {
			t.Fatalf("%v: expected ArgumentError, got %v", args, err)
		}
	}
}

func TestParseAddTokens_ValuesKeepColons(t *testing.T) {
	req, err := ParseAddTokens([]string{"ntlm:AAD3B435B51404EEAAD3B435B51404EE:31D6CFE0D16AE931B73C59D7E0C089C0", "user:"}, noFiles)
	if err != nil {
		t.Fatalf("ParseAddTokens: %v", err)
	}
	if req.SecretType != model.PrivateNTLMHash || req.Secret.Reveal() != "AAD3B435B51404EEAAD3B435B51404EE:31D6CFE0D16AE931B73C59D7E0C089C0" {
		t.Fatalf("unexpected secret: %s %q", req.SecretType, req.Secret.Reveal())
	}
	if req.Username == nil || *req.Username != "" {
		t.Fatalf("user: must yield a blank username, got %v", req.Username)
	}
}

func TestParseAddTokens_RealmTypes(t *testing.T) {
	for _, short := range model.RealmShortNames() {
		req, err := ParseAddTokens([]string{"user:u", "realm:r", "realm-type:" + short}, noFiles)
		if err != nil {
			t.Fatalf("realm-type %s: %v", short, err)
		}
		want, _ := model.RealmKeyForShortName(short)
		if req.Realm.Key != want {
			t.Fatalf("realm-type %s: expected %q, got %q", short, want, req.Realm.Key)
		}
	}
}

func TestParseAddTokens_HostAndPort(t *testing.T) {
	req, err := ParseAddTokens([]string{"user:root", "password:toor", "host:10.0.0.7", "port:22"}, noFiles)
	if err != nil {
		t.Fatalf("ParseAddTokens: %v", err)
	}
	if req.Login == nil || req.Login.Address != "10.0.0.7" || req.Login.Port != 22 || req.Login.Proto != "tcp" {
		t.Fatalf("unexpected login: %+v", req.Login)
	}
}

func TestParseAddTokens_SSHKey(t *testing.T) {
	pemData := testutil.PrivateKeyPEM(t, "")
	files := map[string][]byte{"/keys/id": pemData, "/keys/pub": []byte("ssh-ed25519 AAAA comment")}
	read := func(p string) ([]byte, error) {
		if b, ok := files[p]; ok {
			return b, nil
		}
		return noFiles(p)
	}

	req, err := ParseAddTokens([]string{"user:deploy", "ssh-key:/keys/id"}, read)
	if err != nil {
		t.Fatalf("ParseAddTokens: %v", err)
	}
	if req.SecretType != model.PrivateSSHKey || req.Secret.Reveal() != string(pemData) {
		t.Fatalf("expected key payload from file")
	}

	_, err = ParseAddTokens([]string{"ssh-key:/keys/missing"}, read)
	var ioe *IOError
	if !errors.As(err, &ioe) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected IOError wrapping ErrNotExist, got %v", err)
	}

	_, err = ParseAddTokens([]string{"ssh-key:/keys/pub"}, read)
	var ae *ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArgumentError for a public key file, got %v", err)
	}
}

func TestParseAddTokens_Help(t *testing.T) {
	if _, err := ParseAddTokens([]string{"-h"}, noFiles); !errors.Is(err, ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
}

func TestAdd_RepositoryRejection(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("validation failed")}
	req, err := ParseAddTokens([]string{"realm:corp"}, noFiles)
	if err != nil {
		t.Fatalf("ParseAddTokens: %v", err)
	}
	_, err = Add(context.Background(), repo, testWS, req)
	var re *RepositoryError
	if !errors.As(err, &re) {
		t.Fatalf("expected RepositoryError, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("nothing may be created")
	}
}
