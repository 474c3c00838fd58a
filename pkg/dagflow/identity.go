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
	"context"
	"fmt"
)

// Identity is the stable name of a node, derived from its producer's
// output type. Identities are unique within a Registry, which rejects an
// incompatible second descriptor at Register time; two registries that
// disagree on an identity are a Collision, caught at build time.
type Identity string

// Invoker is the type-erased adapter the scheduler actually calls. It
// receives the dependency values in declared order, already serialized,
// and must deserialize each one, run the underlying producer, and
// serialize the result.
//
// Deserialization failures are reported as the node's own failure, not
// as a panic or a scheduler-internal error - per spec, an internal
// consistency error is attributed to the affected node.
type Invoker func(ctx context.Context, deps [][]byte) ([]byte, error)

// Descriptor is the immutable, registered metadata for one producer.
type Descriptor struct {
	// Output is the identity this descriptor produces.
	Output Identity
	// DependsOn is the ordered list of identities this producer consumes.
	// Order is significant: the scheduler fetches dependency values in
	// this order and the Invoker receives them in this order.
	DependsOn []Identity
	// Invoke is the type-erased producer adapter.
	Invoke Invoker
}

func (d Descriptor) dependencyKey() string {
	key := string(d.Output) + "|"
	for _, dep := range d.DependsOn {
		key += string(dep) + ","
	}
	return key
}

// Registry maps output identities to their Descriptor. It is the
// process-lifetime component: producers are registered once and looked
// up by every Plan built afterward.
type Registry struct {
	descriptors map[Identity]Descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[Identity]Descriptor)}
}

// Register adds a descriptor to the registry. Registering a second
// descriptor under an identity already present returns an error if its
// dependency list differs; with the same dependency list it is accepted
// as a no-op and the first descriptor is kept. Invokers are not
// compared. This allows idempotent re-registration of the same
// producer, which happens naturally when init-time registration runs
// more than once (e.g. under tests).
func (r *Registry) Register(d Descriptor) error {
	if d.Output == "" {
		return fmt.Errorf("dagflow: cannot register a descriptor with an empty identity")
	}
	existing, ok := r.descriptors[d.Output]
	if !ok {
		r.descriptors[d.Output] = d
		return nil
	}
	if existing.dependencyKey() != d.dependencyKey() {
		return fmt.Errorf("dagflow: identity %q already registered with a different dependency list", d.Output)
	}
	return nil
}

// MustRegister is Register, panicking on error. It is meant for
// package-level init() registration where a failure is a build-time bug.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor registered for identity, if any.
func (r *Registry) Lookup(identity Identity) (Descriptor, bool) {
	d, ok := r.descriptors[identity]
	return d, ok
}
