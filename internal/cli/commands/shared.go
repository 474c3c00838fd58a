// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dagflow/internal/demo"
	"dagflow/internal/manifest"
	"dagflow/pkg/dagflow"
	"dagflow/pkg/dagflow/codec/msgpack"
	"dagflow/pkg/dagflow/notify"
	notifyredis "dagflow/pkg/dagflow/notify/redis"
	"dagflow/pkg/dagflow/notify/webhook"
	"dagflow/pkg/dagflow/persistence/postgres"
	"dagflow/pkg/logging"
)

// buildPlan loads m's targets and seed into a Builder over the demo
// registry and emits the Plan. Real deployments would substitute their
// own application registry for demo.Registry(); the CLI ships with the
// demo pipeline so `dagflow run` works out of the box.
func buildPlan(m *manifest.Manifest, extraSeed map[string]json.RawMessage) (*dagflow.Plan, error) {
	targets := make([]dagflow.Identity, len(m.Targets))
	for i, t := range m.Targets {
		targets[i] = dagflow.Identity(t)
	}

	seed, err := m.SeedBlobs()
	if err != nil {
		return nil, err
	}
	for id, blob := range extraSeed {
		seed[id] = blob
	}

	b := dagflow.NewBuilder(demo.Registry()).Add(targets...)
	if len(seed) > 0 {
		b = b.WithData(seed)
	}
	return b.Build()
}

// resolveCodec maps the manifest's codec name to a Serializer.
func resolveCodec(name string) (dagflow.Serializer, error) {
	switch name {
	case "", "json":
		return dagflow.JSON, nil
	case "msgpack":
		return msgpack.New(), nil
	default:
		return nil, fmt.Errorf("unsupported codec %q", name)
	}
}

// buildNotifiers wires the manifest's notify section into dagflow.Publishers.
func buildNotifiers(m *manifest.Manifest) ([]dagflow.Publisher, func(), error) {
	if m.Notify == nil {
		return nil, func() {}, nil
	}

	var publishers []dagflow.Publisher
	var closers []notify.Adapter

	if m.Notify.Webhook != nil {
		a, err := webhook.New(webhook.Config{
			URL:     m.Notify.Webhook.URL,
			Headers: m.Notify.Webhook.Headers,
			Retries: m.Notify.Webhook.Retries,
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("configuring webhook notifier: %w", err)
		}
		publishers = append(publishers, notify.AsPublisher(m.Job.ID, a))
		closers = append(closers, a)
	}

	if m.Notify.Redis != nil {
		a, err := notifyredis.New(notifyredis.Config{
			URL:     m.Notify.Redis.URL,
			Channel: m.Notify.Redis.Channel,
			Retries: m.Notify.Redis.Retries,
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("configuring redis notifier: %w", err)
		}
		publishers = append(publishers, notify.AsPublisher(m.Job.ID, a))
		closers = append(closers, a)
	}

	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	return publishers, closeAll, nil
}

// buildSnapshotStore wires the manifest's persistence section into a
// dagflow.SnapshotStore, if configured.
func buildSnapshotStore(m *manifest.Manifest) (dagflow.SnapshotStore, func(), error) {
	if m.Persistence == nil || m.Persistence.Postgres == nil {
		return nil, func() {}, nil
	}
	cfg := m.Persistence.Postgres
	var opts []postgres.Option
	if cfg.Table != "" {
		opts = append(opts, postgres.WithTable(cfg.Table))
	}
	store, err := postgres.Connect(context.Background(), cfg.DSN, opts...)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connecting snapshot store: %w", err)
	}
	return store, store.Close, nil
}

// loggerFor builds the CLI's logger, honoring --verbose.
func loggerFor(verbose bool) logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(level)
}

// readSnapshotFile loads a prior run's --out file as seed data for resume.
func readSnapshotFile(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return snapshot, nil
}

// writeSnapshotFile persists outcome's snapshot to path as indented JSON.
func writeSnapshotFile(path string, snapshot map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}
