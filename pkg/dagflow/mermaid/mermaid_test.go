// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package mermaid

import (
	"context"
	"strings"
	"testing"

	"dagflow/pkg/dagflow"
)

func buildTestPlan(t *testing.T) *dagflow.Plan {
	t.Helper()
	reg := dagflow.NewRegistry()
	ok := func(id dagflow.Identity, deps ...dagflow.Identity) dagflow.Descriptor {
		return dagflow.Descriptor{
			Output:    id,
			DependsOn: deps,
			Invoke: func(ctx context.Context, in [][]byte) ([]byte, error) {
				return []byte("null"), nil
			},
		}
	}
	reg.MustRegister(ok("a"))
	reg.MustRegister(ok("b", "a"))

	plan, err := dagflow.NewBuilder(reg).Add("b").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return plan
}

func TestRender_IncludesNodesAndEdge(t *testing.T) {
	plan := buildTestPlan(t)
	out := Render(plan, nil)

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Fatalf("expected a graph TD header, got %q", out)
	}
	if !strings.Contains(out, `"a [pending]"`) {
		t.Fatalf("expected node 'a' labeled with its initial status, got %q", out)
	}
	if !strings.Contains(out, "-->") {
		t.Fatalf("expected at least one edge, got %q", out)
	}
}

func TestRender_StatusOverride(t *testing.T) {
	plan := buildTestPlan(t)
	out := Render(plan, map[dagflow.Identity]dagflow.Status{"a": dagflow.StatusDone})

	if !strings.Contains(out, `"a [done]"`) {
		t.Fatalf("expected the status override to relabel 'a', got %q", out)
	}
}
