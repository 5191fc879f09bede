// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"context"
	"errors"

	"github.com/juju/collections/set"

	"github.com/toeirei/credmaster/internal/model"
)

// fakeRepo is an in-memory Repository evaluating CoreQuery like the SQL
// store does.
type fakeRepo struct {
	cores      []model.Core
	created    []model.NewCredential
	destroyed  []int64
	createErr  error
	destroyErr error
	queried    int
}

func (f *fakeRepo) Candidates(_ context.Context, workspaceID int64, q model.CoreQuery) ([]model.Core, error) {
	f.queried++
	names := set.NewStrings(q.ServiceNames...)
	var out []model.Core
	for _, c := range f.cores {
		if c.WorkspaceID != workspaceID {
			continue
		}
		if q.PrivateType != "" && (c.Private == nil || c.Private.Type != q.PrivateType) {
			continue
		}
		if q.RequireLogins || len(q.ServiceNames) > 0 || len(q.PortSpans) > 0 {
			ok := false
			for _, l := range c.Logins {
				if len(q.ServiceNames) > 0 && !names.Contains(l.Service.Name) {
					continue
				}
				if len(q.PortSpans) > 0 && !inSpans(q.PortSpans, l.Service.Port) {
					continue
				}
				ok = true
				break
			}
			if !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func inSpans(spans []model.PortSpan, port int) bool {
	for _, s := range spans {
		if s.Lo <= port && port <= s.Hi {
			return true
		}
	}
	return false
}

func (f *fakeRepo) CreateCredential(_ context.Context, nc model.NewCredential) (model.Core, error) {
	if f.createErr != nil {
		return model.Core{}, f.createErr
	}
	f.created = append(f.created, nc)
	return model.Core{ID: int64(len(f.created)), WorkspaceID: nc.WorkspaceID}, nil
}

func (f *fakeRepo) DestroyCore(_ context.Context, id int64) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	for i, c := range f.cores {
		if c.ID == id {
			f.cores = append(f.cores[:i], f.cores[i+1:]...)
			f.destroyed = append(f.destroyed, id)
			return nil
		}
	}
	return errors.New("no such core")
}

const testWS = 1

func service(addr string, port int, name string) model.Service {
	return model.Service{
		ID:    int64(port),
		Host:  model.Host{Address: addr, WorkspaceID: testWS},
		Port:  port,
		Proto: "tcp",
		Name:  name,
	}
}

func core(id int64, user string, private *model.Private, logins ...model.Service) model.Core {
	c := model.Core{ID: id, WorkspaceID: testWS, Private: private}
	if user != "" {
		c.Public = &model.Public{ID: id, Username: user}
	}
	for i, svc := range logins {
		c.Logins = append(c.Logins, model.Login{ID: id*100 + int64(i), CoreID: id, Service: svc})
	}
	return c
}

func password(data string) *model.Private {
	return &model.Private{Type: model.PrivatePassword, Data: data}
}

// scenarioRepo holds admin without logins and guest with one ssh login.
func scenarioRepo() *fakeRepo {
	return &fakeRepo{cores: []model.Core{
		core(1, "admin", password("pw-admin")),
		core(2, "guest", password("pw-guest"), service("10.0.0.5", 22, "ssh")),
	}}
}
