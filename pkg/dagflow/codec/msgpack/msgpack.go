// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package msgpack provides an alternate dagflow.Serializer backed by
// MessagePack, for callers who want a smaller wire format than JSON for
// the value store's blobs. The core ships encoding/json as its default
// and never imports this package itself.
package msgpack

import "github.com/vmihailenco/msgpack/v5"

// Codec is a dagflow.Serializer implementation over MessagePack.
type Codec struct{}

// New returns a ready-to-use Codec.
func New() Codec { return Codec{} }

func (Codec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
