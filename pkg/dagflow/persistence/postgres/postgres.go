// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package postgres implements a dagflow value-store snapshot persistence
// backend on top of pgx. It is one concrete, optional SnapshotStore; the
// dagflow core never imports it.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists job snapshots in a single Postgres table:
//
//	CREATE TABLE dagflow_snapshots (
//	    job_id     TEXT PRIMARY KEY,
//	    snapshot   JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithTable overrides the default table name, "dagflow_snapshots".
func WithTable(name string) Option {
	return func(s *Store) { s.table = name }
}

// New wraps an existing pgxpool.Pool. The caller owns the pool's
// lifecycle (including Close).
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, table: "dagflow_snapshots"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a new pool from a connection string and wraps it.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("dagflow/persistence/postgres: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dagflow/persistence/postgres: ping: %w", err)
	}
	return New(pool, opts...), nil
}

// Close releases the underlying pool. Only call this if the Store owns
// the pool (i.e. it was created via Connect).
func (s *Store) Close() {
	s.pool.Close()
}

// Save upserts jobID's snapshot.
func (s *Store) Save(ctx context.Context, jobID string, snapshot map[string]json.RawMessage) error {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("dagflow/persistence/postgres: marshaling snapshot for %q: %w", jobID, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (job_id, snapshot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (job_id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = now()
	`, s.table)

	if _, err := s.pool.Exec(ctx, query, jobID, blob); err != nil {
		return fmt.Errorf("dagflow/persistence/postgres: saving snapshot for %q: %w", jobID, err)
	}
	return nil
}

// Load fetches jobID's snapshot, returning ok=false if none exists.
func (s *Store) Load(ctx context.Context, jobID string) (map[string]json.RawMessage, bool, error) {
	query := fmt.Sprintf(`SELECT snapshot FROM %s WHERE job_id = $1`, s.table)

	var blob []byte
	err := s.pool.QueryRow(ctx, query, jobID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("dagflow/persistence/postgres: loading snapshot for %q: %w", jobID, err)
	}

	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return nil, false, fmt.Errorf("dagflow/persistence/postgres: decoding snapshot for %q: %w", jobID, err)
	}
	return snapshot, true, nil
}
