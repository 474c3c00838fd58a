// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package manifest defines the YAML job-manifest format the CLI reads
// to describe one run: which targets to build, an optional prior
// snapshot to resume from, and how to wire the optional notification
// and persistence collaborators. It is authoring-surface sugar around
// the core - producers themselves are still registered in Go, by
// identity, before a manifest is loaded.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the top-level job description.
type Manifest struct {
	Job         JobConfig              `yaml:"job"`
	Targets     []string               `yaml:"targets"`
	Seed        map[string]interface{} `yaml:"seed,omitempty"`
	Concurrency int                    `yaml:"concurrency,omitempty"`
	Codec       string                 `yaml:"codec,omitempty"` // "json" (default) or "msgpack"
	Notify      *NotifyConfig          `yaml:"notify,omitempty"`
	Persistence *PersistenceConfig     `yaml:"persistence,omitempty"`
}

// JobConfig carries the run's identity.
type JobConfig struct {
	ID string `yaml:"id"`
}

// NotifyConfig selects zero or more completion adapters.
type NotifyConfig struct {
	Webhook *WebhookConfig `yaml:"webhook,omitempty"`
	Redis   *RedisConfig   `yaml:"redis,omitempty"`
}

// WebhookConfig mirrors notify/webhook.Config in YAML form.
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Retries int               `yaml:"retries,omitempty"`
}

// RedisConfig mirrors notify/redis.Config in YAML form.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel,omitempty"`
	Retries int    `yaml:"retries,omitempty"`
}

// PersistenceConfig selects the snapshot-store backend.
type PersistenceConfig struct {
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
}

// PostgresConfig mirrors persistence/postgres.Store construction.
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table,omitempty"`
}

// ErrManifestNotFound is returned when the manifest file does not exist.
var ErrManifestNotFound = errors.New("dagflow: manifest not found")

// Load reads and validates a manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("dagflow: reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("dagflow: parsing manifest %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("dagflow: invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the manifest for obvious authoring mistakes.
func (m *Manifest) Validate() error {
	if m.Job.ID == "" {
		return errors.New("job.id is required")
	}
	if len(m.Targets) == 0 {
		return errors.New("at least one target is required")
	}
	switch m.Codec {
	case "", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported codec %q (want json or msgpack)", m.Codec)
	}
	if m.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", m.Concurrency)
	}
	if m.Notify != nil {
		if m.Notify.Webhook != nil && m.Notify.Webhook.URL == "" {
			return errors.New("notify.webhook.url is required when notify.webhook is set")
		}
		if m.Notify.Redis != nil && m.Notify.Redis.URL == "" {
			return errors.New("notify.redis.url is required when notify.redis is set")
		}
	}
	if m.Persistence != nil && m.Persistence.Postgres != nil && m.Persistence.Postgres.DSN == "" {
		return errors.New("persistence.postgres.dsn is required when persistence.postgres is set")
	}
	return nil
}

// SeedBlobs re-marshals the manifest's seed map into raw JSON blobs,
// the form dagflow.Builder.WithData expects.
func (m *Manifest) SeedBlobs() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(m.Seed))
	for id, v := range m.Seed {
		blob, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("dagflow: marshaling seed value for %q: %w", id, err)
		}
		out[id] = blob
	}
	return out, nil
}
