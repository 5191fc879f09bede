// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"errors"
	"fmt"
)

// ErrHelp is returned by the parsers when the arguments ask for usage.
var ErrHelp = errors.New("help requested")

// ArgumentError reports a malformed command line. Nothing has been queried
// or written when it is returned.
type ArgumentError struct {
	Msg string
	Err error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ArgumentError) Unwrap() error { return e.Err }

func argErrorf(format string, args ...any) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// RepositoryError reports a failure of the credential store: a rejected
// creation request or an unreachable database.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// IOError reports a file that could not be read or written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
