// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package dagflow runs a set of interdependent producer functions as a
// directed acyclic graph: independent producers run in parallel, their
// outputs feed downstream producers, and a run can be checkpointed,
// resumed from prior results, and cooperatively cancelled.
//
// A caller registers typed producers against a Registry, builds an
// immutable Plan from a target set (optionally seeded with pre-existing
// values), and drives the Plan with a Worker. The core package never
// depends on any persistence, notification, or rendering backend -
// those live in the dagflow/persistence, dagflow/notify, and
// dagflow/mermaid subpackages.
package dagflow
