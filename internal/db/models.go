// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/toeirei/credmaster/internal/model"
)

// WorkspaceModel maps the workspaces table.
type WorkspaceModel struct {
	bun.BaseModel `bun:"table:workspaces"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Name          string `bun:"name"`
}

// HostModel maps the hosts table.
type HostModel struct {
	bun.BaseModel `bun:"table:hosts"`
	ID            int64  `bun:"id,pk,autoincrement"`
	WorkspaceID   int64  `bun:"workspace_id"`
	Address       string `bun:"address"`
	Name          string `bun:"name"`
}

// ServiceModel maps the services table.
type ServiceModel struct {
	bun.BaseModel `bun:"table:services"`
	ID            int64  `bun:"id,pk,autoincrement"`
	HostID        int64  `bun:"host_id"`
	Port          int    `bun:"port"`
	Proto         string `bun:"proto"`
	Name          string `bun:"name"`
}

// SessionModel maps the sessions table.
type SessionModel struct {
	bun.BaseModel `bun:"table:sessions"`
	ID            int64  `bun:"id,pk,autoincrement"`
	HostID        int64  `bun:"host_id"`
	Type          string `bun:"stype"`
}

// PublicModel maps the publics table.
type PublicModel struct {
	bun.BaseModel `bun:"table:publics"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Username      string `bun:"username"`
}

// PrivateModel maps the privates table.
type PrivateModel struct {
	bun.BaseModel `bun:"table:privates"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Type          string `bun:"type"`
	Data          string `bun:"data"`
}

// RealmModel maps the realms table.
type RealmModel struct {
	bun.BaseModel `bun:"table:realms"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Key           string `bun:"realm_key"`
	Value         string `bun:"value"`
}

// CoreModel maps the cores table. Selects alias it as c.
type CoreModel struct {
	bun.BaseModel   `bun:"table:cores,alias:c"`
	ID              int64         `bun:"id,pk,autoincrement"`
	WorkspaceID     int64         `bun:"workspace_id"`
	PublicID        sql.NullInt64 `bun:"public_id"`
	PrivateID       sql.NullInt64 `bun:"private_id"`
	RealmID         sql.NullInt64 `bun:"realm_id"`
	OriginKind      string        `bun:"origin_kind"`
	OriginServiceID sql.NullInt64 `bun:"origin_service_id"`
	OriginSessionID sql.NullInt64 `bun:"origin_session_id"`
	OriginLabel     string        `bun:"origin_label"`
}

// LoginModel maps the logins table.
type LoginModel struct {
	bun.BaseModel `bun:"table:logins"`
	ID            int64  `bun:"id,pk,autoincrement"`
	CoreID        int64  `bun:"core_id"`
	ServiceID     int64  `bun:"service_id"`
	Status        string `bun:"status"`
}

// serviceView is a service joined with its host.
type serviceView struct {
	ID          int64  `bun:"id"`
	Port        int    `bun:"port"`
	Proto       string `bun:"proto"`
	Name        string `bun:"name"`
	HostID      int64  `bun:"host_id"`
	WorkspaceID int64  `bun:"workspace_id"`
	Address     string `bun:"address"`
	HostName    string `bun:"host_name"`
}

// sessionView is a session joined with its host.
type sessionView struct {
	ID          int64  `bun:"id"`
	Type        string `bun:"stype"`
	HostID      int64  `bun:"host_id"`
	WorkspaceID int64  `bun:"workspace_id"`
	Address     string `bun:"address"`
	HostName    string `bun:"host_name"`
}

// --- Mapping helpers ---
func workspaceModelToModel(w WorkspaceModel) model.Workspace {
	return model.Workspace{ID: w.ID, Name: w.Name}
}

func hostModelToModel(h HostModel) model.Host {
	return model.Host{ID: h.ID, WorkspaceID: h.WorkspaceID, Address: h.Address, Name: h.Name}
}

func serviceViewToModel(v serviceView) model.Service {
	return model.Service{
		ID:    v.ID,
		Port:  v.Port,
		Proto: v.Proto,
		Name:  v.Name,
		Host:  model.Host{ID: v.HostID, WorkspaceID: v.WorkspaceID, Address: v.Address, Name: v.HostName},
	}
}

func sessionViewToModel(v sessionView) model.Session {
	return model.Session{
		ID:   v.ID,
		Type: v.Type,
		Host: model.Host{ID: v.HostID, WorkspaceID: v.WorkspaceID, Address: v.Address, Name: v.HostName},
	}
}

func publicModelToModel(p PublicModel) *model.Public {
	return &model.Public{ID: p.ID, Username: p.Username}
}

func privateModelToModel(p PrivateModel) *model.Private {
	return &model.Private{ID: p.ID, Type: model.PrivateType(p.Type), Data: p.Data}
}

func realmModelToModel(r RealmModel) *model.Realm {
	return &model.Realm{ID: r.ID, Key: model.RealmKey(r.Key), Value: r.Value}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
