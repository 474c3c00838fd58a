// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package notify

import (
	"context"
	"testing"
	"time"

	"dagflow/pkg/dagflow"
)

type recordingAdapter struct {
	events []Event
}

func (r *recordingAdapter) Publish(ctx context.Context, event Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAdapter) Close() error { return nil }

func TestAsPublisher_TranslatesOutcome(t *testing.T) {
	adapter := &recordingAdapter{}
	pub := AsPublisher("job-1", adapter)

	rce := dagflow.RunCompletedEvent{Outcome: dagflow.Outcome{Verdict: dagflow.VerdictFailed, FailedNode: "b", Reason: "boom"}}
	if err := pub.Publish(context.Background(), rce); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(adapter.events) != 1 {
		t.Fatalf("expected exactly one event recorded, got %d", len(adapter.events))
	}
	got := adapter.events[0]
	if got.JobID != "job-1" || got.Verdict != "failed" || got.FailedNode != "b" || got.Reason != "boom" {
		t.Fatalf("unexpected translated event: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("expected a non-zero timestamp")
	}
}

func TestFromOutcome_Completed(t *testing.T) {
	now := time.Now()
	ev := FromOutcome("job-2", dagflow.RunCompletedEvent{Outcome: dagflow.Outcome{Verdict: dagflow.VerdictCompleted}}, now)
	if ev.Verdict != "completed" || ev.FailedNode != "" || ev.Reason != "" {
		t.Fatalf("unexpected event for a completed run: %+v", ev)
	}
	if !ev.Timestamp.Equal(now) {
		t.Fatalf("expected the timestamp to be passed through unchanged")
	}
}
