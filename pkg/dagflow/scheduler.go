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
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"dagflow/pkg/logging"
)

// Scheduler drives one Plan to completion against one Store. It owns the
// readiness queue, in-degree bookkeeping, and the concurrent dispatch of
// node invokers; it records every status transition (see Events) and
// terminates with the first node failure or with every target satisfied.
//
// Scheduler is single-use: call Run once per instance.
type Scheduler struct {
	plan  *Plan
	store *Store

	// concurrency bounds the number of invokers in flight at once. Zero
	// means unbounded (gated only by the number of ready nodes).
	concurrency int

	log logging.Logger

	mu       sync.Mutex
	inDegree map[Identity]int
	status   map[Identity]Status
	events   []NodeEvent

	sem chan struct{}
}

// NewScheduler creates a Scheduler for plan, operating on store.
// concurrency caps the number of producer invocations in flight at
// once; pass 0 for no cap.
func NewScheduler(plan *Plan, store *Store, concurrency int) *Scheduler {
	s := &Scheduler{
		plan:        plan,
		store:       store,
		concurrency: concurrency,
		log:         logging.Nop,
		inDegree:    make(map[Identity]int, len(plan.inDegree)),
		status:      make(map[Identity]Status, len(plan.status)),
	}
	for id, n := range plan.inDegree {
		s.inDegree[id] = n
	}
	for id, st := range plan.status {
		s.status[id] = st
	}
	if concurrency > 0 {
		s.sem = make(chan struct{}, concurrency)
	}
	return s
}

// WithLogger attaches a logger the scheduler uses for dispatch and
// outcome progress. It returns the same Scheduler for chaining.
func (s *Scheduler) WithLogger(l logging.Logger) *Scheduler {
	if l != nil {
		s.log = l
	}
	return s
}

// Snapshot returns the current status of every node in the plan.
func (s *Scheduler) Snapshot() map[Identity]Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Identity]Status, len(s.status))
	for id, st := range s.status {
		out[id] = st
	}
	return out
}

// Events returns the trace of status transitions observed so far.
func (s *Scheduler) Events() []NodeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NodeEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Scheduler) transition(id Identity, to Status) {
	s.mu.Lock()
	from := s.status[id]
	s.status[id] = to
	s.events = append(s.events, NodeEvent{Node: id, From: from, To: to, At: time.Now()})
	s.mu.Unlock()
}

// Run drives the plan to completion and returns the terminal Outcome;
// callers branch on the Outcome's Verdict.
//
// Run decrements in-degree for every Skipped node up front (their value
// is already in the store), enqueues every node whose in-degree reaches
// zero, then dispatches invokers concurrently with errgroup, routing
// completions back through an internal channel so one node's failure
// lets its already-launched siblings finish this tick instead of being
// silently abandoned.
func (s *Scheduler) Run(ctx context.Context) Outcome {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	type completion struct {
		id  Identity
		err error
	}
	done := make(chan completion, len(s.plan.nodes)+1)

	var failure struct {
		mu   sync.Mutex
		node Identity
		err  error
		set  bool
	}
	recordFailure := func(id Identity, err error) {
		failure.mu.Lock()
		defer failure.mu.Unlock()
		if !failure.set {
			failure.node, failure.err, failure.set = id, err, true
			cancel()
		}
	}

	ready := s.initialReady()
	inFlight := 0

	launch := func(id Identity) {
		inFlight++
		s.transition(id, StatusRunning)
		s.log.Node(string(id)).Debug("dispatching producer")
		g.Go(func() error {
			if s.sem != nil {
				select {
				case s.sem <- struct{}{}:
				case <-gctx.Done():
					done <- completion{id: id, err: gctx.Err()}
					return nil
				}
				defer func() { <-s.sem }()
			}
			err := s.invoke(gctx, id)
			done <- completion{id: id, err: err}
			return nil
		})
	}

	for _, id := range ready {
		launch(id)
	}

	remaining := s.runnableCount()

	for inFlight > 0 {
		c := <-done
		inFlight--

		if c.err != nil {
			s.transition(c.id, StatusFailed)
			s.log.Node(string(c.id)).Warn("producer failed", logging.F("error", c.err))
			recordFailure(c.id, c.err)
			continue
		}

		s.transition(c.id, StatusDone)
		s.log.Node(string(c.id)).Debug("producer completed")
		remaining--

		for _, next := range s.plan.Dependents(c.id) {
			if s.decrementAndCheckReady(next) {
				launch(next)
			}
		}
	}

	_ = g.Wait()

	failure.mu.Lock()
	failed, failedNode, failErr := failure.set, failure.node, failure.err
	failure.mu.Unlock()

	snapshot := s.store.Snapshot()

	var outcome Outcome
	switch {
	case ctx.Err() != nil:
		// The caller's own context was cancelled (not our internal,
		// derived runCtx) - that takes priority over whatever incidental
		// node failures the cancellation produced.
		outcome = Outcome{Verdict: VerdictCancelled, snapshot: snapshot, events: s.Events()}
	case failed:
		outcome = Outcome{
			Verdict:    VerdictFailed,
			FailedNode: failedNode,
			Reason:     failErr.Error(),
			snapshot:   snapshot,
			events:     s.Events(),
		}
	case remaining > 0:
		// Nothing failed and nothing cancelled the run (Worker.Stop
		// cancels ctx and is handled above), yet some nodes never ran:
		// a scheduler invariant violation, reported as a stall.
		outcome = Outcome{
			Verdict:    VerdictFailed,
			FailedNode: "<scheduler>",
			Reason:     "stalled",
			snapshot:   snapshot,
			events:     s.Events(),
		}
	default:
		outcome = Outcome{Verdict: VerdictCompleted, snapshot: snapshot, events: s.Events()}
	}

	s.log.Info("run terminated", logging.F("verdict", outcome.Verdict))
	return outcome
}

// initialReady decrements in-degree for every Skipped node's dependents
// and returns the set of nodes (Skipped nodes excluded) whose in-degree
// is already zero.
func (s *Scheduler) initialReady() []Identity {
	s.mu.Lock()
	for id, st := range s.status {
		if st == StatusSkipped {
			for _, dep := range s.plan.Dependents(id) {
				s.inDegree[dep]--
			}
		}
	}
	s.mu.Unlock()

	var ready []Identity
	for _, id := range s.plan.order {
		if s.status[id] != StatusPending {
			continue
		}
		if s.inDegree[id] <= 0 {
			s.transition(id, StatusReady)
			ready = append(ready, id)
		}
	}
	return ready
}

// runnableCount returns the number of nodes that must reach Done before
// the run is complete: every node except those already Skipped.
func (s *Scheduler) runnableCount() int {
	n := 0
	for _, id := range s.plan.order {
		if s.status[id] != StatusSkipped {
			n++
		}
	}
	return n
}

// decrementAndCheckReady decrements id's in-degree and, if it reaches
// zero, transitions it to Ready and reports true.
func (s *Scheduler) decrementAndCheckReady(id Identity) bool {
	s.mu.Lock()
	if s.status[id] != StatusPending {
		s.mu.Unlock()
		return false
	}
	s.inDegree[id]--
	n := s.inDegree[id]
	s.mu.Unlock()
	if n > 0 {
		return false
	}
	s.transition(id, StatusReady)
	return true
}

// invoke gathers id's dependency values, calls its Invoker, and stores
// the result.
func (s *Scheduler) invoke(ctx context.Context, id Identity) error {
	d, ok := s.plan.Descriptor(id)
	if !ok {
		return fmt.Errorf("dagflow: scheduler invariant violated: node %q not in plan", id)
	}

	deps := make([][]byte, len(d.DependsOn))
	for i, dep := range d.DependsOn {
		blob, ok := s.store.GetRaw(dep)
		if !ok {
			return fmt.Errorf("dagflow: scheduler invariant violated: %q missing dependency %q", id, dep)
		}
		deps[i] = blob
	}

	out, err := d.Invoke(ctx, deps)
	if err != nil {
		return err
	}
	if err := s.store.PutRaw(id, out); err != nil {
		return fmt.Errorf("dagflow: storing output of %q: %w", id, err)
	}
	return nil
}
