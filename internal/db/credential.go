// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/uptrace/bun"

	"github.com/toeirei/credmaster/internal/model"
)

var ntlmHashRe = regexp.MustCompile(`^[0-9a-fA-F]{32}:[0-9a-fA-F]{32}$`)

// CreateCredential validates nc and stores it as a new core, together with
// its login when nc.Login is set. Nothing is written when validation fails
// (ErrValidation) or when an identical core already exists (ErrDuplicate).
func (r *Repo) CreateCredential(ctx context.Context, nc model.NewCredential) (model.Core, error) {
	if err := normalizeCredential(&nc); err != nil {
		return model.Core{}, err
	}
	var out model.Core
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		txr := &Repo{db: tx}
		cm := &CoreModel{
			WorkspaceID: nc.WorkspaceID,
			OriginKind:  string(nc.Origin.Kind),
			OriginLabel: nc.Origin.Label,
		}
		core := model.Core{WorkspaceID: nc.WorkspaceID, Origin: nc.Origin}

		if nc.Username != nil {
			pub, err := txr.ensurePublic(ctx, *nc.Username)
			if err != nil {
				return err
			}
			cm.PublicID = nullID(pub.ID)
			core.Public = pub
		}
		if nc.Private != nil {
			priv, err := txr.ensurePrivate(ctx, *nc.Private)
			if err != nil {
				return err
			}
			cm.PrivateID = nullID(priv.ID)
			core.Private = priv
		}
		if nc.Realm != nil {
			realm, err := txr.ensureRealm(ctx, *nc.Realm)
			if err != nil {
				return err
			}
			cm.RealmID = nullID(realm.ID)
			core.Realm = realm
		}
		switch nc.Origin.Kind {
		case model.OriginService:
			cm.OriginServiceID = nullID(nc.Origin.Service.ID)
		case model.OriginSession:
			cm.OriginSessionID = nullID(nc.Origin.Session.ID)
		case model.OriginImport, model.OriginUnknown:
		}

		exists, err := txr.coreExists(ctx, cm)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: identical credential already stored", ErrDuplicate)
		}
		if _, err := tx.NewInsert().Model(cm).Returning("id").Exec(ctx); err != nil {
			return err
		}
		core.ID = cm.ID

		if nc.Login != nil {
			host, err := txr.EnsureHost(ctx, nc.WorkspaceID, nc.Login.Address)
			if err != nil {
				return err
			}
			svc, err := txr.EnsureService(ctx, host, nc.Login.Port, nc.Login.Proto, "")
			if err != nil {
				return err
			}
			login, err := txr.AddLogin(ctx, core.ID, svc)
			if err != nil {
				return err
			}
			core.Logins = append(core.Logins, login)
		}
		out = core
		return nil
	})
	if err != nil {
		return model.Core{}, MapDBError(err)
	}
	dbLogf("db: created core %d in workspace %d", out.ID, out.WorkspaceID)
	return out, nil
}

// normalizeCredential rejects requests the store cannot represent and
// canonicalizes payloads in place.
func normalizeCredential(nc *model.NewCredential) error {
	if nc.WorkspaceID == 0 {
		return fmt.Errorf("%w: no workspace", ErrValidation)
	}
	if nc.Username == nil && nc.Private == nil {
		return fmt.Errorf("%w: credential needs a username or a secret", ErrValidation)
	}
	if p := nc.Private; p != nil {
		if !p.Type.Valid() {
			return fmt.Errorf("%w: unknown secret type %q", ErrValidation, p.Type)
		}
		switch p.Type {
		case model.PrivateNTLMHash:
			if !ntlmHashRe.MatchString(p.Data) {
				return fmt.Errorf("%w: NTLM hash must be LM:NT in hex", ErrValidation)
			}
			p.Data = strings.ToLower(p.Data)
		case model.PrivateSSHKey, model.PrivateNonreplayableHash:
			if strings.TrimSpace(p.Data) == "" {
				return fmt.Errorf("%w: empty %s", ErrValidation, p.Type.Label())
			}
		case model.PrivatePassword:
		}
	}
	if rl := nc.Realm; rl != nil {
		if rl.Key == "" || rl.Value == "" {
			return fmt.Errorf("%w: realm needs a type and a value", ErrValidation)
		}
	}
	switch nc.Origin.Kind {
	case model.OriginService:
		if nc.Origin.Service == nil || nc.Origin.Service.ID == 0 {
			return fmt.Errorf("%w: service origin without a stored service", ErrValidation)
		}
	case model.OriginSession:
		if nc.Origin.Session == nil || nc.Origin.Session.ID == 0 {
			return fmt.Errorf("%w: session origin without a stored session", ErrValidation)
		}
	case model.OriginImport, model.OriginUnknown:
	default:
		return fmt.Errorf("%w: unknown origin %q", ErrValidation, nc.Origin.Kind)
	}
	if l := nc.Login; l != nil {
		addr, err := netip.ParseAddr(l.Address)
		if err != nil {
			return fmt.Errorf("%w: login host %q is not an IP address", ErrValidation, l.Address)
		}
		l.Address = addr.Unmap().String()
		if l.Port < 1 || l.Port > 65535 {
			return fmt.Errorf("%w: login port %d out of range", ErrValidation, l.Port)
		}
		if l.Proto == "" {
			l.Proto = "tcp"
		}
	}
	return nil
}

func (r *Repo) ensurePublic(ctx context.Context, username string) (*model.Public, error) {
	var pm PublicModel
	err := r.db.NewSelect().Model(&pm).Where("username = ?", username).Limit(1).Scan(ctx)
	if err == nil {
		return publicModelToModel(pm), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	pm = PublicModel{Username: username}
	if _, err := r.db.NewInsert().Model(&pm).Returning("id").Exec(ctx); err != nil {
		return nil, err
	}
	return publicModelToModel(pm), nil
}

func (r *Repo) ensurePrivate(ctx context.Context, p model.Private) (*model.Private, error) {
	var pm PrivateModel
	err := r.db.NewSelect().Model(&pm).
		Where("type = ?", string(p.Type)).
		Where("data = ?", p.Data).
		Limit(1).Scan(ctx)
	if err == nil {
		return privateModelToModel(pm), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	pm = PrivateModel{Type: string(p.Type), Data: p.Data}
	if _, err := r.db.NewInsert().Model(&pm).Returning("id").Exec(ctx); err != nil {
		return nil, err
	}
	return privateModelToModel(pm), nil
}

func (r *Repo) ensureRealm(ctx context.Context, rl model.Realm) (*model.Realm, error) {
	var rm RealmModel
	err := r.db.NewSelect().Model(&rm).
		Where("realm_key = ?", string(rl.Key)).
		Where("value = ?", rl.Value).
		Limit(1).Scan(ctx)
	if err == nil {
		return realmModelToModel(rm), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	rm = RealmModel{Key: string(rl.Key), Value: rl.Value}
	if _, err := r.db.NewInsert().Model(&rm).Returning("id").Exec(ctx); err != nil {
		return nil, err
	}
	return realmModelToModel(rm), nil
}

// coreExists reports whether the workspace already holds a core with the
// same public, private, realm and origin.
func (r *Repo) coreExists(ctx context.Context, cm *CoreModel) (bool, error) {
	q := r.db.NewSelect().Model((*CoreModel)(nil)).
		Where("c.workspace_id = ?", cm.WorkspaceID).
		Where("c.origin_kind = ?", cm.OriginKind).
		Where("c.origin_label = ?", cm.OriginLabel)
	for col, v := range map[string]sql.NullInt64{
		"c.public_id":         cm.PublicID,
		"c.private_id":        cm.PrivateID,
		"c.realm_id":          cm.RealmID,
		"c.origin_service_id": cm.OriginServiceID,
		"c.origin_session_id": cm.OriginSessionID,
	} {
		if v.Valid {
			q = q.Where(col+" = ?", v.Int64)
		} else {
			q = q.Where(col + " IS NULL")
		}
	}
	return q.Exists(ctx)
}
