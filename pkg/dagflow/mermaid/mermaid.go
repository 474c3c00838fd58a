// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package mermaid renders a dagflow Plan (optionally annotated with
// per-node status) as a Mermaid `graph TD` diagram, suitable for
// pasting into https://mermaid.live for visualization. It is a
// read-only, optional collaborator: the core never imports it.
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"dagflow/pkg/dagflow"
)

// Plan is the subset of *dagflow.Plan this package needs, named
// separately so it can render anything shaped like a plan without
// importing the concrete type's full surface.
type Plan interface {
	Nodes() []dagflow.Identity
	Dependents(id dagflow.Identity) []dagflow.Identity
	InitialStatus(id dagflow.Identity) dagflow.Status
}

// Render produces a Mermaid graph for plan. status, if non-nil,
// overrides each node's label with its live status (e.g. mid-run or
// post-run); nodes absent from status fall back to the plan's initial
// status.
func Render(plan Plan, status map[dagflow.Identity]dagflow.Status) string {
	nodes := plan.Nodes()
	index := make(map[dagflow.Identity]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	var w strings.Builder
	fmt.Fprintln(&w, "graph TD")
	for i, id := range nodes {
		st := plan.InitialStatus(id)
		if status != nil {
			if live, ok := status[id]; ok {
				st = live
			}
		}
		fmt.Fprintf(&w, "  n%d(\"%s [%s]\")\n", i, id, st)
	}

	// Edges are emitted dependent->dependency (matching the
	// DependsOn direction callers expect to read), sorted for a
	// deterministic diagram across runs.
	type edge struct{ from, to int }
	var edges []edge
	for _, id := range nodes {
		for _, dependent := range plan.Dependents(id) {
			edges = append(edges, edge{from: index[dependent], to: index[id]})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	for _, e := range edges {
		fmt.Fprintf(&w, "  n%d-->n%d\n", e.from, e.to)
	}

	return w.String()
}
