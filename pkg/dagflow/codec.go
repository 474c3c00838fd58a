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

import "encoding/json"

// Serializer converts between Go values and the opaque blob format the
// Store persists. The core never inspects blob contents; it only needs
// Marshal/Unmarshal to round-trip losslessly. Implementations must be
// safe for concurrent use.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// jsonSerializer is the default Serializer, backed by encoding/json.
// It is the format used throughout the rest of dagflow's own wire types
// (Outcome.Snapshot, Builder.WithData, notify.Event), so using it for the value
// store keeps one serialization story end to end unless a caller opts
// into an alternate codec (see dagflow/codec/msgpack).
type jsonSerializer struct{}

func (jsonSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// JSON is the default Serializer.
var JSON Serializer = jsonSerializer{}
