// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package redis

import "testing"

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected an error when URL is empty")
	}
}

func TestNew_RejectsInvalidURL(t *testing.T) {
	if _, err := New(Config{URL: "not-a-redis-url"}); err == nil {
		t.Fatalf("expected an error for a malformed URL")
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	a, err := New(Config{URL: "redis://localhost:6379/0"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.config.Channel != DefaultChannel {
		t.Fatalf("expected default channel %q, got %q", DefaultChannel, a.config.Channel)
	}
	if a.config.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %s, got %s", DefaultTimeout, a.config.Timeout)
	}
}
