// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"context"
	"net/netip"
	"strconv"
	"strings"

	"github.com/juju/collections/set"

	"github.com/toeirei/credmaster/internal/logging"
	"github.com/toeirei/credmaster/internal/model"
	"github.com/toeirei/credmaster/internal/security"
	"github.com/toeirei/credmaster/internal/sshkey"
)

// ImportLabel is the origin label of credentials added by hand.
const ImportLabel = "credmaster"

// AddKeys is the closed set of keys accepted by creds add.
var AddKeys = []string{"user", "password", "realm", "realm-type", "ntlm", "ssh-key", "hash", "host", "port"}

var addKeySet = set.NewStrings(AddKeys...)

// secretKeys maps the secret keys to the type they store.
var secretKeys = map[string]model.PrivateType{
	"password": model.PrivatePassword,
	"ntlm":     model.PrivateNTLMHash,
	"ssh-key":  model.PrivateSSHKey,
	"hash":     model.PrivateNonreplayableHash,
}

// AddRequest is a validated creation request.
type AddRequest struct {
	Username   *string
	SecretType model.PrivateType
	Secret     security.Secret
	Realm      *model.Realm
	Login      *model.LoginTarget
}

type pair struct {
	key, value string
}

// tokenizePairs splits each token at its first colon.
func tokenizePairs(args []string) ([]pair, error) {
	out := make([]pair, 0, len(args))
	for _, tok := range args {
		k, v, ok := strings.Cut(tok, ":")
		if !ok {
			return nil, argErrorf("expected key:value, got %q", tok)
		}
		out = append(out, pair{key: k, value: v})
	}
	return out, nil
}

// ParseAddTokens validates key:value tokens into an AddRequest. readFile
// loads the ssh-key path; it is os.ReadFile outside tests.
func ParseAddTokens(args []string, readFile func(string) ([]byte, error)) (*AddRequest, error) {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		return nil, ErrHelp
	}
	if len(args) == 0 {
		return nil, argErrorf("creds add needs at least one key:value pair")
	}
	pairs, err := tokenizePairs(args)
	if err != nil {
		return nil, err
	}

	vals := make(map[string]string, len(pairs))
	var secretKey string
	for _, p := range pairs {
		if !addKeySet.Contains(p.key) {
			return nil, argErrorf("unknown key %q (valid keys: %s)", p.key, strings.Join(AddKeys, ", "))
		}
		if _, dup := vals[p.key]; dup {
			return nil, argErrorf("key %q given more than once", p.key)
		}
		if _, isSecret := secretKeys[p.key]; isSecret {
			if secretKey != "" {
				return nil, argErrorf("only one of password, ntlm, ssh-key and hash may be given (got %s and %s)", secretKey, p.key)
			}
			secretKey = p.key
		}
		vals[p.key] = p.value
	}

	req := &AddRequest{}
	if u, ok := vals["user"]; ok {
		req.Username = &u
	}

	if rt, ok := vals["realm-type"]; ok {
		if _, hasRealm := vals["realm"]; !hasRealm {
			return nil, argErrorf("realm-type needs a realm")
		}
		if _, known := model.RealmKeyForShortName(rt); !known {
			return nil, argErrorf("unknown realm-type %q (valid: %s)", rt, strings.Join(model.RealmShortNames(), ", "))
		}
	}
	if rv, ok := vals["realm"]; ok {
		key := model.RealmActiveDirectoryDomain
		if rt, ok := vals["realm-type"]; ok {
			key, _ = model.RealmKeyForShortName(rt)
		}
		req.Realm = &model.Realm{Key: key, Value: rv}
	}

	if secretKey != "" {
		req.SecretType = secretKeys[secretKey]
		switch req.SecretType {
		case model.PrivateSSHKey:
			path := vals[secretKey]
			data, err := readFile(path)
			if err != nil {
				return nil, &IOError{Path: path, Err: err}
			}
			if err := sshkey.Check(data); err != nil {
				return nil, &ArgumentError{Msg: "ssh-key " + path + " is not a private key", Err: err}
			}
			req.Secret = security.FromBytes(data)
		case model.PrivatePassword, model.PrivateNTLMHash, model.PrivateNonreplayableHash:
			req.Secret = security.FromString(vals[secretKey])
		}
	}

	login, err := loginTarget(vals)
	if err != nil {
		return nil, err
	}
	req.Login = login
	return req, nil
}

// loginTarget builds the login of host:/port: pairs, which come together.
func loginTarget(vals map[string]string) (*model.LoginTarget, error) {
	host, hasHost := vals["host"]
	portStr, hasPort := vals["port"]
	if !hasHost && !hasPort {
		return nil, nil
	}
	if hasHost != hasPort {
		return nil, argErrorf("host and port must be given together")
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil, &ArgumentError{Msg: "invalid host " + host, Err: err}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, argErrorf("invalid port %q", portStr)
	}
	return &model.LoginTarget{Address: addr.Unmap().String(), Port: port, Proto: "tcp"}, nil
}

// Add submits req to the repository as an import into the workspace. A
// rejected request leaves the store unchanged.
func Add(ctx context.Context, repo Repository, workspaceID int64, req *AddRequest) (model.Core, error) {
	nc := model.NewCredential{
		WorkspaceID: workspaceID,
		Username:    req.Username,
		Realm:       req.Realm,
		Origin:      model.ImportOrigin(ImportLabel),
		Login:       req.Login,
	}
	if req.SecretType != "" {
		nc.Private = &model.Private{Type: req.SecretType, Data: req.Secret.Reveal()}
	}
	defer req.Secret.Zero()

	core, err := repo.CreateCredential(ctx, nc)
	if err != nil {
		return model.Core{}, &RepositoryError{Op: "add credential", Err: err}
	}
	logging.Debugf("creds: added core %d (secret %q)", core.ID, req.SecretType)
	return core, nil
}
