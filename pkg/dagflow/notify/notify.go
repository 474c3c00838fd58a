// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package notify defines the completion-notification boundary: adapters
// publish a Worker's terminal outcome to a downstream system. Concrete
// adapters (webhook, redis) live in their own subpackages so importing
// notify alone never pulls in net/http or a redis client.
package notify

import (
	"context"
	"time"

	"dagflow/pkg/dagflow"
)

// Adapter publishes run completion events to a downstream system.
// Wrap one with AsPublisher to register it on a dagflow.Worker via
// Notify/WithNotifier.
type Adapter interface {
	// Publish sends a run completion event downstream. It must respect
	// ctx cancellation and deadlines.
	Publish(ctx context.Context, event Event) error
	// Close releases adapter resources.
	Close() error
}

// Event is the JSON-serializable payload published on run completion.
// It mirrors dagflow.Outcome in a form suitable for an external system
// rather than replacing it.
type Event struct {
	JobID      string    `json:"job_id,omitempty"`
	Verdict    string    `json:"verdict"`
	FailedNode string    `json:"failed_node,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	NodeCount  int       `json:"node_count"`
}

// FromOutcome builds an Event from a dagflow.RunCompletedEvent, tagging
// it with jobID and the time it was observed.
func FromOutcome(jobID string, rce dagflow.RunCompletedEvent, observedAt time.Time) Event {
	outcome := rce.Outcome
	return Event{
		JobID:      jobID,
		Verdict:    string(outcome.Verdict),
		FailedNode: string(outcome.FailedNode),
		Reason:     outcome.Reason,
		Timestamp:  observedAt,
		NodeCount:  len(outcome.Events()),
	}
}

// adapterPublisher adapts an Adapter to dagflow.Publisher, translating
// the dagflow.RunCompletedEvent a Worker hands it into a notify.Event.
type adapterPublisher struct {
	jobID string
	next  Adapter
	now   func() time.Time
}

// AsPublisher wraps an Adapter so it can be registered directly with a
// dagflow.Worker via WithNotifier/Notify.
func AsPublisher(jobID string, adapter Adapter) dagflow.Publisher {
	return &adapterPublisher{jobID: jobID, next: adapter, now: time.Now}
}

func (p *adapterPublisher) Publish(ctx context.Context, rce dagflow.RunCompletedEvent) error {
	return p.next.Publish(ctx, FromOutcome(p.jobID, rce, p.now()))
}
