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
	"encoding/json"
	"errors"
	"testing"
)

func noop(id Identity, deps ...Identity) Descriptor {
	return Descriptor{
		Output:    id,
		DependsOn: deps,
		Invoke: func(ctx context.Context, in [][]byte) ([]byte, error) {
			return []byte("null"), nil
		},
	}
}

func TestBuilder_DiamondDependencyClosure(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(noop("a"))
	reg.MustRegister(noop("b", "a"))
	reg.MustRegister(noop("c", "a"))
	reg.MustRegister(noop("d", "b", "c"))

	plan, err := NewBuilder(reg).Add("d").Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	nodes := plan.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes in the closure, got %d: %v", len(nodes), nodes)
	}
	if plan.InitialStatus("a") != StatusPending {
		t.Fatalf("expected 'a' to start Pending, got %s", plan.InitialStatus("a"))
	}
	deps := plan.Dependents("a")
	if len(deps) != 2 {
		t.Fatalf("expected 'a' to have 2 dependents, got %v", deps)
	}
}

func TestBuilder_UnknownDependencyFails(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(noop("b", "a")) // "a" is never registered

	_, err := NewBuilder(reg).Add("b").Build()
	var unknown *UnknownNodeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownNodeError, got %v (%T)", err, err)
	}
	if unknown.Identity != "a" {
		t.Fatalf("expected the missing identity to be 'a', got %q", unknown.Identity)
	}
}

func TestBuilder_DetectsCycle(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(noop("a", "b"))
	reg.MustRegister(noop("b", "a"))

	_, err := NewBuilder(reg).Add("a").Build()
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v (%T)", err, err)
	}
	if len(cycle.Path) < 2 {
		t.Fatalf("expected a non-trivial cycle path, got %v", cycle.Path)
	}
}

func TestBuilder_SeedPrunesSatisfiedAncestors(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(noop("a"))
	reg.MustRegister(noop("b", "a"))
	reg.MustRegister(noop("c", "b"))

	plan, err := NewBuilder(reg).Add("c").WithData(map[string]json.RawMessage{
		"b": []byte(`1`),
	}).Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if plan.InitialStatus("b") != StatusSkipped {
		t.Fatalf("expected 'b' to be Skipped, got %s", plan.InitialStatus("b"))
	}
	if _, ok := plan.Descriptor("a"); ok {
		t.Fatalf("expected 'a' to be pruned from the plan since only 'b' needed it and 'b' is seeded")
	}
	if _, ok := plan.Descriptor("c"); !ok {
		t.Fatalf("expected 'c' (the target) to remain in the plan")
	}
}

func TestBuilder_SeedDoesNotPruneSharedAncestor(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(noop("a"))
	reg.MustRegister(noop("b", "a"))
	reg.MustRegister(noop("c", "a"))

	// "b" is seeded, but "a" is still needed by unseeded "c".
	plan, err := NewBuilder(reg).Add("b", "c").WithData(map[string]json.RawMessage{
		"b": []byte(`1`),
	}).Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if _, ok := plan.Descriptor("a"); !ok {
		t.Fatalf("expected 'a' to remain in the plan: it is still needed via 'c'")
	}
	if plan.InitialStatus("a") != StatusPending {
		t.Fatalf("expected 'a' to be Pending, got %s", plan.InitialStatus("a"))
	}
}

func TestBuilder_CollisionAcrossRegistries(t *testing.T) {
	reg1 := NewRegistry()
	reg1.MustRegister(noop("a"))

	reg2 := NewRegistry()
	reg2.MustRegister(noop("a", "extra")) // different dependency list, same identity

	_, err := NewBuilder(reg1, reg2).Add("a").Build()
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected CollisionError, got %v (%T)", err, err)
	}
}

func TestBuilder_EmptyTargetIsInvalid(t *testing.T) {
	reg := NewRegistry()
	_, err := NewBuilder(reg).Add("").Build()
	var invalid *InvalidTargetError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTargetError, got %v (%T)", err, err)
	}
}
