// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"context"

	"github.com/toeirei/credmaster/internal/logging"
	"github.com/toeirei/credmaster/internal/model"
)

// Repository is the credential store as seen by the engine. *db.Repo
// satisfies it.
type Repository interface {
	Candidates(ctx context.Context, workspaceID int64, q model.CoreQuery) ([]model.Core, error)
	CreateCredential(ctx context.Context, nc model.NewCredential) (model.Core, error)
	DestroyCore(ctx context.Context, id int64) error
}

// Query fetches the cores of a workspace that satisfy the repository-side
// constraints of spec and the non-empty user and password patterns. The
// result is ordered as the repository returns it with duplicates removed.
func Query(ctx context.Context, repo Repository, workspaceID int64, spec *FilterSpec) ([]model.Core, error) {
	q := spec.CoreQuery()
	cores, err := repo.Candidates(ctx, workspaceID, q)
	if err != nil {
		return nil, &RepositoryError{Op: "query credentials", Err: err}
	}
	logging.Debugf("creds: %d candidates for %+v", len(cores), q)

	seen := make(map[int64]struct{}, len(cores))
	out := cores[:0:0]
	for _, c := range cores {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if spec.LocationConstrained() && !hasMatchingLogin(spec, c.Logins) {
			continue
		}
		if spec.Type != "" && (c.Private == nil || c.Private.Type != spec.Type) {
			continue
		}
		if p := spec.User; p != nil && !p.Blank() && (c.Public == nil || !p.Match(c.Public.Username)) {
			continue
		}
		if p := spec.Password; p != nil && !p.Blank() && (c.Private == nil || !p.Match(c.Private.Data)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// hasMatchingLogin reports whether one login satisfies both the service name
// and the port constraints.
func hasMatchingLogin(spec *FilterSpec, logins []model.Login) bool {
	for _, l := range logins {
		if !spec.Services.IsEmpty() && !spec.Services.Contains(l.Service.Name) {
			continue
		}
		if len(spec.Ports) > 0 && !anyPortSet(spec, l.Service.Port) {
			continue
		}
		return true
	}
	return false
}

func anyPortSet(spec *FilterSpec, port int) bool {
	for _, ps := range spec.Ports {
		if ps.Contains(port) {
			return true
		}
	}
	return false
}
