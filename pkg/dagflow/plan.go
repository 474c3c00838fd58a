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
	"encoding/json"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Plan is the immutable, acyclic, dependency-closed graph produced by
// Builder.Build. It is shared read-only across every goroutine a
// Scheduler launches for one Worker run.
type Plan struct {
	targets []Identity

	// nodes is the reduced node set: every descriptor actually needed to
	// reach the targets, after seed-driven ancestor pruning.
	nodes map[Identity]Descriptor

	// dependents is the reverse-dependency map (n -> nodes that depend on n).
	dependents map[Identity][]Identity

	// inDegree is the raw DependsOn count per node in the reduced set.
	inDegree map[Identity]int

	// status is the initial per-node status: Skipped for seeded nodes,
	// Pending otherwise.
	status map[Identity]Status

	// order is a deterministic iteration order over nodes: the
	// first-visit order of the dependency traversal from the targets,
	// not registration order. The scheduler launches the nodes ready at
	// the start of a run in this order, and each dependents list follows
	// it too.
	order []Identity

	// seed holds the pre-existing blobs for every Skipped node, used to
	// populate a fresh Store at Worker construction time.
	seed map[Identity][]byte
}

// Targets returns the plan's target identities.
func (p *Plan) Targets() []Identity {
	out := make([]Identity, len(p.targets))
	copy(out, p.targets)
	return out
}

// Nodes returns every identity in the reduced plan, in deterministic order.
func (p *Plan) Nodes() []Identity {
	out := make([]Identity, len(p.order))
	copy(out, p.order)
	return out
}

// Descriptor returns the descriptor for identity, if it is part of the plan.
func (p *Plan) Descriptor(id Identity) (Descriptor, bool) {
	d, ok := p.nodes[id]
	return d, ok
}

// Dependents returns the identities that directly depend on id.
func (p *Plan) Dependents(id Identity) []Identity {
	out := make([]Identity, len(p.dependents[id]))
	copy(out, p.dependents[id])
	return out
}

// InitialStatus returns the status id starts a run in.
func (p *Plan) InitialStatus(id Identity) Status {
	return p.status[id]
}

// Builder constructs a Plan from one or more Registries. Using more than
// one Registry lets a caller compose producers defined in different
// packages, and lets Build() detect a genuine Collision: the same
// identity registered with incompatible descriptors in two different
// registries (a single Registry already rejects this at Register time).
type Builder struct {
	registries []*Registry
	targets    []Identity
	seed       map[Identity][]byte
}

// NewBuilder creates a Builder drawing descriptors from registries, in
// the order given. A later registry never overrides an earlier one's
// conflicting descriptor for the same identity - that is a Collision.
func NewBuilder(registries ...*Registry) *Builder {
	return &Builder{registries: registries, seed: make(map[Identity][]byte)}
}

// Add marks one or more output identities as build targets.
func (b *Builder) Add(ids ...Identity) *Builder {
	b.targets = append(b.targets, ids...)
	return b
}

// WithData seeds the builder with a prior run's snapshot. Seeded
// identities suppress invocation of their producers and, transitively,
// of any of their dependencies not also required by some other
// unseeded producer.
func (b *Builder) WithData(snapshot map[string]json.RawMessage) *Builder {
	for id, blob := range snapshot {
		cp := make([]byte, len(blob))
		copy(cp, blob)
		b.seed[Identity(id)] = cp
	}
	return b
}

// lookup searches every registry for identity, returning a CollisionError
// if two registries disagree on its descriptor.
func (b *Builder) lookup(id Identity) (Descriptor, error, bool) {
	var found Descriptor
	have := false
	for _, reg := range b.registries {
		d, ok := reg.Lookup(id)
		if !ok {
			continue
		}
		if !have {
			found, have = d, true
			continue
		}
		if found.dependencyKey() != d.dependencyKey() {
			return Descriptor{}, &CollisionError{Identity: id}, true
		}
	}
	return found, nil, have
}

// Build validates and emits the Plan.
func (b *Builder) Build() (*Plan, error) {
	if len(b.targets) == 0 {
		return &Plan{
			nodes:      map[Identity]Descriptor{},
			dependents: map[Identity][]Identity{},
			inDegree:   map[Identity]int{},
			status:     map[Identity]Status{},
			seed:       map[Identity][]byte{},
		}, nil
	}

	for _, t := range b.targets {
		if t == "" {
			return nil, &InvalidTargetError{Identity: t}
		}
	}

	// Phase 1: collect the full descriptor closure reachable from
	// targets, ignoring seeds, for cycle detection and UnknownNode
	// validation. Assign gonum node IDs in first-visit order so the
	// base iteration order is deterministic.
	full := map[Identity]Descriptor{}
	gnodeID := map[Identity]int64{}
	var visitOrder []Identity
	g := simple.NewDirectedGraph()

	var stack []Identity
	stack = append(stack, b.targets...)
	seen := map[Identity]bool{}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true

		d, err, ok := b.lookup(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &UnknownNodeError{Identity: id}
		}
		full[id] = d
		visitOrder = append(visitOrder, id)
		gnodeID[id] = int64(len(visitOrder) - 1)
		g.AddNode(simple.Node(gnodeID[id]))

		for _, dep := range d.DependsOn {
			stack = append(stack, dep)
		}
	}

	for id, d := range full {
		for _, dep := range d.DependsOn {
			// dep must exist; the loop above already validated it, but a
			// dependency discovered only as someone else's DependsOn
			// entry may not yet have an edge endpoint if it was visited
			// after id. gnodeID is fully populated by now since the
			// whole closure was collected above.
			g.SetEdge(g.NewEdge(simple.Node(gnodeID[id]), simple.Node(gnodeID[dep])))
		}
	}

	if _, err := topo.Sort(g); err != nil {
		unorderable, ok := err.(topo.Unorderable)
		if !ok {
			return nil, err
		}
		return nil, &CycleError{Path: cyclePath(unorderable, visitOrder, gnodeID)}
	}

	// Phase 2: seed-driven reduction. A node is "needed" if it is a
	// target or reachable from a needed, unseeded node's DependsOn list.
	// Traversal never recurses past a seeded node's dependencies.
	nodes := map[Identity]Descriptor{}
	status := map[Identity]Status{}
	var order []Identity
	visited := map[Identity]bool{}

	var work []Identity
	work = append(work, b.targets...)
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		d := full[id]
		nodes[id] = d
		order = append(order, id)

		if blob, seeded := b.seed[id]; seeded {
			status[id] = StatusSkipped
			_ = blob
			continue
		}
		status[id] = StatusPending
		work = append(work, d.DependsOn...)
	}

	// Preserve the deterministic base order computed in phase 1, limited
	// to nodes actually kept after reduction.
	stableOrder := make([]Identity, 0, len(nodes))
	for _, id := range visitOrder {
		if _, ok := nodes[id]; ok {
			stableOrder = append(stableOrder, id)
		}
	}
	order = stableOrder

	dependents := map[Identity][]Identity{}
	inDegree := map[Identity]int{}
	for _, id := range order {
		d := nodes[id]
		inDegree[id] = len(d.DependsOn)
		for _, dep := range d.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	seed := map[Identity][]byte{}
	for id, blob := range b.seed {
		if _, ok := nodes[id]; ok {
			seed[id] = blob
		}
	}

	return &Plan{
		targets:    append([]Identity(nil), b.targets...),
		nodes:      nodes,
		dependents: dependents,
		inDegree:   inDegree,
		status:     status,
		order:      order,
		seed:       seed,
	}, nil
}

// cyclePath extracts a human-readable cycle from one of the strongly
// connected components topo.Sort reports as unorderable.
func cyclePath(u topo.Unorderable, visitOrder []Identity, gnodeID map[Identity]int64) []Identity {
	byGnode := make(map[int64]Identity, len(gnodeID))
	for id, gid := range gnodeID {
		byGnode[gid] = id
	}
	for _, component := range u {
		if len(component) < 1 {
			continue
		}
		path := make([]Identity, 0, len(component)+1)
		for _, n := range component {
			path = append(path, byGnode[n.ID()])
		}
		path = append(path, path[0])
		return path
	}
	return nil
}

var _ graph.Node = simple.Node(0)
