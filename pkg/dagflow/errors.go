// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package dagflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyRunning is returned by Worker.Run when called more than once.
var ErrAlreadyRunning = errors.New("dagflow: worker.Run called more than once")

// ErrAlreadyPut is returned by Store.Put when the identity already has a
// value. The store is write-once per run.
var ErrAlreadyPut = errors.New("dagflow: identity already has a stored value")

// ErrMissingValue is returned by Store.Get when no value is present.
var ErrMissingValue = errors.New("dagflow: identity has no stored value")

// UnknownNodeError reports a dependency identity with no registered
// descriptor.
type UnknownNodeError struct {
	Identity Identity
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("dagflow: no descriptor registered for %q", e.Identity)
}

// CycleError reports a cycle found among descriptor dependencies. Path
// lists the identities of the strongly connected component containing
// the cycle, in the order the graph library reports them, with the first
// identity repeated at the end.
type CycleError struct {
	Path []Identity
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return fmt.Sprintf("dagflow: cycle detected: %s", strings.Join(parts, " -> "))
}

// CollisionError reports two distinct descriptors sharing an identity.
type CollisionError struct {
	Identity Identity
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("dagflow: identity %q registered by two incompatible descriptors", e.Identity)
}

// InvalidTargetError reports a target identity that cannot be built,
// e.g. an empty identity passed to Add.
type InvalidTargetError struct {
	Identity Identity
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("dagflow: invalid target %q", e.Identity)
}
