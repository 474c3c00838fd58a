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

// Register0 registers a dependency-free producer. Out is serialized with
// codec and stored under id.
func Register0[Out any](reg *Registry, id Identity, codec Serializer, fn func(ctx context.Context) (Out, error)) error {
	if codec == nil {
		codec = JSON
	}
	return reg.Register(Descriptor{
		Output: id,
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			out, err := fn(ctx)
			if err != nil {
				return nil, err
			}
			return codec.Marshal(out)
		},
	})
}

// Register1 registers a producer with a single dependency.
func Register1[Out, D1 any](reg *Registry, id Identity, dep1 Identity, codec Serializer, fn func(ctx context.Context, d1 D1) (Out, error)) error {
	if codec == nil {
		codec = JSON
	}
	return reg.Register(Descriptor{
		Output:    id,
		DependsOn: []Identity{dep1},
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			if len(deps) != 1 {
				return nil, fmt.Errorf("dagflow: producer %q expects 1 dependency value, got %d", id, len(deps))
			}
			var d1 D1
			if err := codec.Unmarshal(deps[0], &d1); err != nil {
				return nil, fmt.Errorf("dagflow: deserializing dependency %q for %q: %w", dep1, id, err)
			}
			out, err := fn(ctx, d1)
			if err != nil {
				return nil, err
			}
			return codec.Marshal(out)
		},
	})
}

// Register2 registers a producer with two dependencies.
func Register2[Out, D1, D2 any](reg *Registry, id Identity, dep1, dep2 Identity, codec Serializer, fn func(ctx context.Context, d1 D1, d2 D2) (Out, error)) error {
	if codec == nil {
		codec = JSON
	}
	return reg.Register(Descriptor{
		Output:    id,
		DependsOn: []Identity{dep1, dep2},
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			if len(deps) != 2 {
				return nil, fmt.Errorf("dagflow: producer %q expects 2 dependency values, got %d", id, len(deps))
			}
			var d1 D1
			if err := codec.Unmarshal(deps[0], &d1); err != nil {
				return nil, fmt.Errorf("dagflow: deserializing dependency %q for %q: %w", dep1, id, err)
			}
			var d2 D2
			if err := codec.Unmarshal(deps[1], &d2); err != nil {
				return nil, fmt.Errorf("dagflow: deserializing dependency %q for %q: %w", dep2, id, err)
			}
			out, err := fn(ctx, d1, d2)
			if err != nil {
				return nil, err
			}
			return codec.Marshal(out)
		},
	})
}

// Register3 registers a producer with three dependencies.
func Register3[Out, D1, D2, D3 any](reg *Registry, id Identity, dep1, dep2, dep3 Identity, codec Serializer, fn func(ctx context.Context, d1 D1, d2 D2, d3 D3) (Out, error)) error {
	if codec == nil {
		codec = JSON
	}
	return reg.Register(Descriptor{
		Output:    id,
		DependsOn: []Identity{dep1, dep2, dep3},
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			if len(deps) != 3 {
				return nil, fmt.Errorf("dagflow: producer %q expects 3 dependency values, got %d", id, len(deps))
			}
			var d1 D1
			if err := codec.Unmarshal(deps[0], &d1); err != nil {
				return nil, fmt.Errorf("dagflow: deserializing dependency %q for %q: %w", dep1, id, err)
			}
			var d2 D2
			if err := codec.Unmarshal(deps[1], &d2); err != nil {
				return nil, fmt.Errorf("dagflow: deserializing dependency %q for %q: %w", dep2, id, err)
			}
			var d3 D3
			if err := codec.Unmarshal(deps[2], &d3); err != nil {
				return nil, fmt.Errorf("dagflow: deserializing dependency %q for %q: %w", dep3, id, err)
			}
			out, err := fn(ctx, d1, d2, d3)
			if err != nil {
				return nil, err
			}
			return codec.Marshal(out)
		},
	})
}
