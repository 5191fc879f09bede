// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrValidation is returned when a creation request is rejected before
	// anything is written.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable is returned when the database cannot be reached.
	ErrUnavailable = errors.New("database unavailable")
)

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate). The
// mapping is string based so this file needs no driver imports.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return err
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}
