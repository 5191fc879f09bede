// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/toeirei/credmaster/internal/model"
)

// inChunkSize bounds IN (...) lists used during eager loading.
const inChunkSize = 500

// LoginStatusUntried is the status of a freshly recorded login.
const LoginStatusUntried = "Untried"

// Repo runs credential queries and writes against one Bun handle: a
// checked-out connection from Store.Session or a transaction.
type Repo struct {
	db bun.IDB
}

// NewRepo wraps any Bun handle.
func NewRepo(db bun.IDB) *Repo { return &Repo{db: db} }

// Workspace looks up a workspace by name. With create set, a missing
// workspace is created; otherwise ErrNotFound is returned.
func (r *Repo) Workspace(ctx context.Context, name string, create bool) (model.Workspace, error) {
	var wm WorkspaceModel
	err := r.db.NewSelect().Model(&wm).Where("name = ?", name).Limit(1).Scan(ctx)
	switch {
	case err == nil:
		return workspaceModelToModel(wm), nil
	case !errors.Is(err, sql.ErrNoRows):
		return model.Workspace{}, err
	case !create:
		return model.Workspace{}, fmt.Errorf("workspace %q: %w", name, ErrNotFound)
	}
	return r.CreateWorkspace(ctx, name)
}

// Workspaces returns all workspaces ordered by name.
func (r *Repo) Workspaces(ctx context.Context) ([]model.Workspace, error) {
	var wms []WorkspaceModel
	if err := r.db.NewSelect().Model(&wms).OrderExpr("name").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Workspace, 0, len(wms))
	for _, w := range wms {
		out = append(out, workspaceModelToModel(w))
	}
	return out, nil
}

// CreateWorkspace inserts a workspace. An existing name yields ErrDuplicate.
func (r *Repo) CreateWorkspace(ctx context.Context, name string) (model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Workspace{}, fmt.Errorf("%w: workspace name is empty", ErrValidation)
	}
	wm := &WorkspaceModel{Name: name}
	if _, err := r.db.NewInsert().Model(wm).Returning("id").Exec(ctx); err != nil {
		return model.Workspace{}, MapDBError(err)
	}
	dbLogf("db: created workspace %q (%d)", name, wm.ID)
	return workspaceModelToModel(*wm), nil
}

// EnsureHost returns the host with address in the workspace, creating it
// when missing.
func (r *Repo) EnsureHost(ctx context.Context, workspaceID int64, address string) (model.Host, error) {
	var hm HostModel
	err := r.db.NewSelect().Model(&hm).
		Where("workspace_id = ?", workspaceID).
		Where("address = ?", address).
		Limit(1).Scan(ctx)
	if err == nil {
		return hostModelToModel(hm), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Host{}, err
	}
	hm = HostModel{WorkspaceID: workspaceID, Address: address}
	if _, err := r.db.NewInsert().Model(&hm).Returning("id").Exec(ctx); err != nil {
		return model.Host{}, MapDBError(err)
	}
	return hostModelToModel(hm), nil
}

// EnsureService returns the service at port/proto on host, creating it with
// the given name when missing.
func (r *Repo) EnsureService(ctx context.Context, host model.Host, port int, proto, name string) (model.Service, error) {
	if proto == "" {
		proto = "tcp"
	}
	var sm ServiceModel
	err := r.db.NewSelect().Model(&sm).
		Where("host_id = ?", host.ID).
		Where("port = ?", port).
		Where("proto = ?", proto).
		Limit(1).Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return model.Service{}, err
		}
		sm = ServiceModel{HostID: host.ID, Port: port, Proto: proto, Name: name}
		if _, err := r.db.NewInsert().Model(&sm).Returning("id").Exec(ctx); err != nil {
			return model.Service{}, MapDBError(err)
		}
	}
	return model.Service{ID: sm.ID, Host: host, Port: sm.Port, Proto: sm.Proto, Name: sm.Name}, nil
}

// CreateSession records a session opened on host.
func (r *Repo) CreateSession(ctx context.Context, host model.Host, stype string) (model.Session, error) {
	sm := &SessionModel{HostID: host.ID, Type: stype}
	if _, err := r.db.NewInsert().Model(sm).Returning("id").Exec(ctx); err != nil {
		return model.Session{}, MapDBError(err)
	}
	return model.Session{ID: sm.ID, Host: host, Type: sm.Type}, nil
}

// AddLogin links a core to a service. Linking the same pair twice yields
// ErrDuplicate.
func (r *Repo) AddLogin(ctx context.Context, coreID int64, svc model.Service) (model.Login, error) {
	lm := &LoginModel{CoreID: coreID, ServiceID: svc.ID, Status: LoginStatusUntried}
	if _, err := r.db.NewInsert().Model(lm).Returning("id").Exec(ctx); err != nil {
		return model.Login{}, MapDBError(err)
	}
	return model.Login{ID: lm.ID, CoreID: coreID, Service: svc, Status: lm.Status}, nil
}

// Candidates returns the cores of a workspace that satisfy q, ordered by id,
// with their public, private, realm, origin and logins resolved.
func (r *Repo) Candidates(ctx context.Context, workspaceID int64, q model.CoreQuery) ([]model.Core, error) {
	var cms []CoreModel
	sel := r.db.NewSelect().Model(&cms).Where("c.workspace_id = ?", workspaceID)
	if q.PrivateType != "" {
		sel = sel.Where("EXISTS (SELECT 1 FROM privates AS p WHERE p.id = c.private_id AND p.type = ?)", string(q.PrivateType))
	}
	if clause, args := loginExistsClause(q); clause != "" {
		sel = sel.Where(clause, args...)
	}
	if err := sel.OrderExpr("c.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	dbLogf("db: %d candidate cores in workspace %d", len(cms), workspaceID)
	if len(cms) == 0 {
		return nil, nil
	}
	return r.resolve(ctx, cms)
}

// loginExistsClause renders the login constraints of q as one EXISTS so
// the service name and port conditions hold for the same login.
func loginExistsClause(q model.CoreQuery) (string, []any) {
	if !q.RequireLogins && len(q.ServiceNames) == 0 && len(q.PortSpans) == 0 {
		return "", nil
	}
	var b strings.Builder
	var args []any
	b.WriteString("EXISTS (SELECT 1 FROM logins AS l JOIN services AS s ON s.id = l.service_id WHERE l.core_id = c.id")
	if len(q.ServiceNames) > 0 {
		b.WriteString(" AND s.name IN (?)")
		args = append(args, bun.In(q.ServiceNames))
	}
	if len(q.PortSpans) > 0 {
		b.WriteString(" AND (")
		for i, span := range q.PortSpans {
			if i > 0 {
				b.WriteString(" OR ")
			}
			b.WriteString("s.port BETWEEN ? AND ?")
			args = append(args, span.Lo, span.Hi)
		}
		b.WriteString(")")
	}
	b.WriteString(")")
	return b.String(), args
}

// resolve eagerly loads everything the cores reference.
func (r *Repo) resolve(ctx context.Context, cms []CoreModel) ([]model.Core, error) {
	var coreIDs, pubIDs, privIDs, realmIDs, svcIDs, sessIDs []int64
	for _, c := range cms {
		coreIDs = append(coreIDs, c.ID)
		if c.PublicID.Valid {
			pubIDs = append(pubIDs, c.PublicID.Int64)
		}
		if c.PrivateID.Valid {
			privIDs = append(privIDs, c.PrivateID.Int64)
		}
		if c.RealmID.Valid {
			realmIDs = append(realmIDs, c.RealmID.Int64)
		}
		if c.OriginServiceID.Valid {
			svcIDs = append(svcIDs, c.OriginServiceID.Int64)
		}
		if c.OriginSessionID.Valid {
			sessIDs = append(sessIDs, c.OriginSessionID.Int64)
		}
	}

	pubs, err := selectIn[PublicModel](ctx, r.db, "id", pubIDs)
	if err != nil {
		return nil, fmt.Errorf("load publics: %w", err)
	}
	privs, err := selectIn[PrivateModel](ctx, r.db, "id", privIDs)
	if err != nil {
		return nil, fmt.Errorf("load privates: %w", err)
	}
	realms, err := selectIn[RealmModel](ctx, r.db, "id", realmIDs)
	if err != nil {
		return nil, fmt.Errorf("load realms: %w", err)
	}
	logins, err := selectIn[LoginModel](ctx, r.db, "core_id", coreIDs)
	if err != nil {
		return nil, fmt.Errorf("load logins: %w", err)
	}
	for _, l := range logins {
		svcIDs = append(svcIDs, l.ServiceID)
	}
	services, err := r.loadServices(ctx, svcIDs)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	sessions, err := r.loadSessions(ctx, sessIDs)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	pubByID := make(map[int64]PublicModel, len(pubs))
	for _, p := range pubs {
		pubByID[p.ID] = p
	}
	privByID := make(map[int64]PrivateModel, len(privs))
	for _, p := range privs {
		privByID[p.ID] = p
	}
	realmByID := make(map[int64]RealmModel, len(realms))
	for _, rm := range realms {
		realmByID[rm.ID] = rm
	}
	loginsByCore := make(map[int64][]model.Login)
	for _, l := range logins {
		svc, ok := services[l.ServiceID]
		if !ok {
			continue
		}
		loginsByCore[l.CoreID] = append(loginsByCore[l.CoreID], model.Login{ID: l.ID, CoreID: l.CoreID, Service: svc, Status: l.Status})
	}

	out := make([]model.Core, 0, len(cms))
	for _, c := range cms {
		core := model.Core{
			ID:          c.ID,
			WorkspaceID: c.WorkspaceID,
			Origin:      model.Origin{Kind: model.OriginKind(c.OriginKind), Label: c.OriginLabel},
			Logins:      loginsByCore[c.ID],
		}
		if p, ok := pubByID[c.PublicID.Int64]; c.PublicID.Valid && ok {
			core.Public = publicModelToModel(p)
		}
		if p, ok := privByID[c.PrivateID.Int64]; c.PrivateID.Valid && ok {
			core.Private = privateModelToModel(p)
		}
		if rm, ok := realmByID[c.RealmID.Int64]; c.RealmID.Valid && ok {
			core.Realm = realmModelToModel(rm)
		}
		if svc, ok := services[c.OriginServiceID.Int64]; c.OriginServiceID.Valid && ok {
			core.Origin.Service = &svc
		}
		if sess, ok := sessions[c.OriginSessionID.Int64]; c.OriginSessionID.Valid && ok {
			core.Origin.Session = &sess
		}
		out = append(out, core)
	}
	return out, nil
}

// selectIn loads rows of T whose column is in ids, ordered by id.
func selectIn[T any](ctx context.Context, db bun.IDB, column string, ids []int64) ([]T, error) {
	var out []T
	err := inChunks(uniqueIDs(ids), inChunkSize, func(chunk []int64) error {
		var rows []T
		if err := db.NewSelect().Model(&rows).
			Where("? IN (?)", bun.Ident(column), bun.In(chunk)).
			OrderExpr("id").
			Scan(ctx); err != nil {
			return err
		}
		out = append(out, rows...)
		return nil
	})
	return out, err
}

func (r *Repo) loadServices(ctx context.Context, ids []int64) (map[int64]model.Service, error) {
	out := make(map[int64]model.Service)
	err := inChunks(uniqueIDs(ids), inChunkSize, func(chunk []int64) error {
		var rows []serviceView
		if err := QueryRawInto(ctx, r.db, &rows, `SELECT s.id, s.port, s.proto, s.name, h.id AS host_id, h.workspace_id, h.address, h.name AS host_name
FROM services AS s JOIN hosts AS h ON h.id = s.host_id
WHERE s.id IN (?)`, bun.In(chunk)); err != nil {
			return err
		}
		for _, v := range rows {
			out[v.ID] = serviceViewToModel(v)
		}
		return nil
	})
	return out, err
}

func (r *Repo) loadSessions(ctx context.Context, ids []int64) (map[int64]model.Session, error) {
	out := make(map[int64]model.Session)
	err := inChunks(uniqueIDs(ids), inChunkSize, func(chunk []int64) error {
		var rows []sessionView
		if err := QueryRawInto(ctx, r.db, &rows, `SELECT se.id, se.stype, h.id AS host_id, h.workspace_id, h.address, h.name AS host_name
FROM sessions AS se JOIN hosts AS h ON h.id = se.host_id
WHERE se.id IN (?)`, bun.In(chunk)); err != nil {
			return err
		}
		for _, v := range rows {
			out[v.ID] = sessionViewToModel(v)
		}
		return nil
	})
	return out, err
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DestroyCore deletes a core and its logins in one transaction. A core that
// no longer exists yields ErrNotFound.
func (r *Repo) DestroyCore(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*LoginModel)(nil)).Where("core_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := ExecRaw(ctx, tx, "DELETE FROM cores WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("core %d: %w", id, ErrNotFound)
		}
		dbLogf("db: destroyed core %d", id)
		return nil
	})
}
