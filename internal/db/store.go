// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Store owns the connection pool of an opened credential database.
type Store struct {
	bun    *bun.DB
	dbType string
}

// BunDB exposes the underlying Bun DB for callers that need raw access.
func (s *Store) BunDB() *bun.DB { return s.bun }

// Type returns the configured database type.
func (s *Store) Type() string { return s.dbType }

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.bun == nil {
		return nil
	}
	return s.bun.Close()
}

// Session checks out a single connection, hands fn a Repo bound to it and
// returns the connection to the pool on every exit path. Everything fn does
// sees the same connection.
func (s *Store) Session(ctx context.Context, fn func(*Repo) error) error {
	conn, err := s.bun.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			dbLogf("db: releasing connection: %v", cerr)
		}
	}()
	return fn(&Repo{db: conn})
}
