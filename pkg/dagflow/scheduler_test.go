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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsDiamondToCompletion(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Register0(reg, "a", nil, func(ctx context.Context) (int, error) { return 1, nil }))
	require.NoError(t, Register1(reg, "b", "a", nil, func(ctx context.Context, a int) (int, error) { return a + 1, nil }))
	require.NoError(t, Register1(reg, "c", "a", nil, func(ctx context.Context, a int) (int, error) { return a + 2, nil }))
	require.NoError(t, Register2(reg, "d", "b", "c", nil, func(ctx context.Context, b, c int) (int, error) { return b + c, nil }))

	plan, err := NewBuilder(reg).Add("d").Build()
	require.NoError(t, err)

	store := NewStore(JSON)
	store.seedFrom(plan.seed)
	sched := NewScheduler(plan, store, 0)

	outcome := sched.Run(context.Background())
	require.Equal(t, VerdictCompleted, outcome.Verdict, "outcome error: %v", outcome.Error())

	got, err := Get[int](store, "d")
	require.NoError(t, err)
	assert.Equal(t, 5, got, "d == 1+1 + 1+2")
}

func TestScheduler_FirstFailureWins(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(noop("a"))
	reg.MustRegister(Descriptor{
		Output:    "fails",
		DependsOn: []Identity{"a"},
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			return nil, errors.New("producer exploded")
		},
	})
	reg.MustRegister(noop("sibling", "a"))
	reg.MustRegister(Descriptor{
		Output:    "downstream",
		DependsOn: []Identity{"fails"},
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			t.Fatalf("downstream of a failed node must never run")
			return nil, nil
		},
	})

	plan, err := NewBuilder(reg).Add("downstream", "sibling").Build()
	require.NoError(t, err)

	store := NewStore(JSON)
	store.seedFrom(plan.seed)
	sched := NewScheduler(plan, store, 0)

	outcome := sched.Run(context.Background())
	require.Equal(t, VerdictFailed, outcome.Verdict)
	assert.Equal(t, Identity("fails"), outcome.FailedNode)
}

func TestScheduler_SkippedSeedSatisfiesDependents(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(noop("seeded"))
	invoked := false
	reg.MustRegister(Descriptor{
		Output:    "dependent",
		DependsOn: []Identity{"seeded"},
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			invoked = true
			return []byte("null"), nil
		},
	})

	plan, err := NewBuilder(reg).Add("dependent").WithData(map[string]json.RawMessage{
		"seeded": []byte(`"hi"`),
	}).Build()
	require.NoError(t, err)

	store := NewStore(JSON)
	store.seedFrom(plan.seed)
	sched := NewScheduler(plan, store, 0)

	outcome := sched.Run(context.Background())
	require.Equal(t, VerdictCompleted, outcome.Verdict)
	assert.True(t, invoked, "the dependent producer must run once its seeded dependency is satisfied")
}

func TestScheduler_ExternalCancellation(t *testing.T) {
	reg := NewRegistry()
	release := make(chan struct{})
	reg.MustRegister(Descriptor{
		Output: "slow",
		Invoke: func(ctx context.Context, deps [][]byte) ([]byte, error) {
			select {
			case <-release:
				return []byte("null"), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	})

	plan, err := NewBuilder(reg).Add("slow").Build()
	require.NoError(t, err)

	store := NewStore(JSON)
	sched := NewScheduler(plan, store, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	outcome := sched.Run(ctx)
	close(release)
	assert.Equal(t, VerdictCancelled, outcome.Verdict)
}
