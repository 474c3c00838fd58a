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
	"sync"

	"dagflow/pkg/logging"
)

// Phase is the Worker's own lifecycle state, distinct from the
// per-node Status values tracked by Scheduler.
type Phase string

const (
	// PhaseBuilt means New succeeded but Run has not been called.
	PhaseBuilt Phase = "built"
	// PhaseRunning means Run started dispatch and the run has not yet
	// settled.
	PhaseRunning Phase = "running"
	// PhaseTerminated means the run settled (or Stop fired while Built);
	// GetOutput and Data report the final Outcome and Store contents.
	PhaseTerminated Phase = "terminated"
)

// Publisher receives a RunCompletedEvent once a Worker terminates. It is
// the seam external completion-notification adapters (webhook, redis
// pub/sub, ...) plug into; the core never imports a concrete adapter.
// A notify.Adapter publishes a notify.Event rather than a
// RunCompletedEvent, so it is registered through notify.AsPublisher.
type Publisher interface {
	Publish(ctx context.Context, event RunCompletedEvent) error
}

// RunCompletedEvent is the payload handed to every registered Publisher
// when a Worker terminates.
type RunCompletedEvent struct {
	Outcome Outcome
}

// SnapshotStore is the persistence seam a Worker can use to save its
// value-store snapshot when a run terminates, keyed by an
// application-chosen job ID. pkg/dagflow/persistence/postgres.Store
// satisfies this structurally; the core never imports it.
//
// Loading a prior snapshot to resume a job is the caller's
// responsibility at Plan-build time (SnapshotStore.Load results feed
// Builder.WithData before Build, since seed reduction happens at build
// time) - Worker only needs the save half of the round trip.
type SnapshotStore interface {
	Save(ctx context.Context, jobID string, snapshot map[string]json.RawMessage) error
}

// Worker runs one Plan against one Store, exposing a small control
// surface (New/Run/Stop/GetOutput/Data) built around an explicit
// Built -> Running -> Terminated state machine.
//
// Worker is safe for concurrent use; Stop, GetOutput, and Data may all
// be called from a goroutine other than the one driving Run.
type Worker struct {
	plan        *Plan
	store       *Store
	concurrency int
	notifiers   []Publisher
	snapshots   SnapshotStore
	jobID       string
	log         logging.Logger

	mu        sync.Mutex
	phase     Phase
	runCalled bool
	cancel    context.CancelFunc
	outcome   *Outcome
	done      chan struct{}
}

// Option configures a Worker at construction time.
type Option func(*Worker)

// WithConcurrency caps the number of producer invocations in flight at
// once. The default, 0, means unbounded.
func WithConcurrency(n int) Option {
	return func(w *Worker) { w.concurrency = n }
}

// WithNotifier registers a completion publisher. Every registered
// publisher is invoked, best-effort, after a run terminates; a
// publisher error never fails or masks the run's own Outcome.
func WithNotifier(p Publisher) Option {
	return func(w *Worker) { w.notifiers = append(w.notifiers, p) }
}

// WithSnapshotStore saves the run's final value-store snapshot to store
// under jobID once the run terminates, regardless of verdict, so a
// caller can resume later by loading it back into a Builder via
// WithData. The save is best-effort, like notification publishing.
func WithSnapshotStore(jobID string, store SnapshotStore) Option {
	return func(w *Worker) { w.jobID, w.snapshots = jobID, store }
}

// WithLogger attaches a logger the worker's scheduler uses for dispatch
// and outcome progress. The default is logging.Nop.
func WithLogger(l logging.Logger) Option {
	return func(w *Worker) { w.log = l }
}

// Notify registers additional completion publishers after construction.
// It mirrors WithNotifier for callers that build the publisher set
// after the Worker exists.
func (w *Worker) Notify(publishers ...Publisher) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notifiers = append(w.notifiers, publishers...)
}

// New builds a Worker for plan, seeding a fresh Store with the plan's
// skipped nodes. codec selects the serializer that Store uses.
func New(plan *Plan, codec Serializer, opts ...Option) *Worker {
	store := NewStore(codec)
	store.seedFrom(plan.seed)

	w := &Worker{
		plan:  plan,
		store: store,
		phase: PhaseBuilt,
		done:  make(chan struct{}),
		log:   logging.Nop,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Phase returns the worker's current lifecycle phase.
func (w *Worker) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Data exposes the underlying Store, readable at any phase - in
// particular while Running, to observe partial progress.
func (w *Worker) Data() *Store {
	return w.store
}

// CancellationHandle returns a function that cancels the run. Calling
// it while Built transitions the worker straight to Terminated with a
// Cancelled outcome, without ever dispatching a producer - a
// subsequent Run becomes a no-op that reports that same outcome.
// Calling it while Running cancels the dispatch in flight. Calling it
// after termination is a harmless no-op.
func (w *Worker) CancellationHandle() func() {
	return w.stop
}

// Stop cancels the run. It is equivalent to calling the function
// returned by CancellationHandle.
func (w *Worker) Stop() {
	w.stop()
}

func (w *Worker) stop() {
	w.mu.Lock()
	switch w.phase {
	case PhaseBuilt:
		outcome := Outcome{Verdict: VerdictCancelled, snapshot: w.store.Snapshot()}
		w.phase = PhaseTerminated
		w.outcome = &outcome
		close(w.done)
		w.mu.Unlock()

		w.notify(context.Background(), outcome)
		w.saveSnapshot(context.Background(), outcome)
	case PhaseRunning:
		cancel := w.cancel
		w.mu.Unlock()
		cancel()
	default:
		w.mu.Unlock()
	}
}

// Run begins driving the plan and returns immediately; it does not
// block until the run completes. It returns ErrAlreadyRunning if a
// prior call already started dispatch. If Stop fired while the worker
// was still Built, Run is a no-op: the worker is already Terminated
// with a Cancelled outcome and no producer is invoked. The supplied
// ctx bounds the run in addition to Stop/CancellationHandle; either
// cancelling ctx or calling Stop produces a Cancelled Outcome,
// observable via GetOutput once the run settles.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.runCalled {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	if w.phase == PhaseTerminated {
		// Stop fired before Run was ever called.
		w.mu.Unlock()
		return nil
	}
	w.runCalled = true
	runCtx, cancel := context.WithCancel(ctx)
	w.phase = PhaseRunning
	w.cancel = cancel
	w.mu.Unlock()

	go w.dispatch(ctx, runCtx, cancel)
	return nil
}

// dispatch drives the scheduler to completion in its own goroutine and
// settles the worker's terminal state once it returns.
func (w *Worker) dispatch(ctx, runCtx context.Context, cancel context.CancelFunc) {
	sched := NewScheduler(w.plan, w.store, w.concurrency).WithLogger(w.log)
	outcome := sched.Run(runCtx)
	cancel()

	w.mu.Lock()
	w.phase = PhaseTerminated
	w.outcome = &outcome
	close(w.done)
	w.mu.Unlock()

	w.notify(ctx, outcome)
	w.saveSnapshot(ctx, outcome)
}

// saveSnapshot persists the run's final snapshot if a SnapshotStore was
// configured. Errors are swallowed for the same reason notify's are:
// persistence is a convenience, not a condition of the run's Outcome.
func (w *Worker) saveSnapshot(ctx context.Context, outcome Outcome) {
	if w.snapshots == nil {
		return
	}
	_ = w.snapshots.Save(ctx, w.jobID, outcome.Snapshot())
}

// notify invokes every registered Publisher, swallowing individual
// errors - a broken notification channel must never mask the run's own
// Outcome.
func (w *Worker) notify(ctx context.Context, outcome Outcome) {
	w.mu.Lock()
	publishers := append([]Publisher(nil), w.notifiers...)
	w.mu.Unlock()

	if len(publishers) == 0 {
		return
	}
	event := RunCompletedEvent{Outcome: outcome}
	for _, p := range publishers {
		_ = p.Publish(ctx, event)
	}
}

// GetOutput blocks until the run terminates and returns its Outcome -
// this, not Run, is the call a caller should block on. It returns
// false if called while the worker is still Built (Run not yet called
// and Stop not yet fired).
func (w *Worker) GetOutput() (Outcome, bool) {
	w.mu.Lock()
	phase := w.phase
	done := w.done
	w.mu.Unlock()

	if phase == PhaseBuilt {
		return Outcome{}, false
	}
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.outcome, true
}
