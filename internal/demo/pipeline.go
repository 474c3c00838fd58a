// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package demo registers a small reference pipeline the CLI drives when
// no application-specific registry is wired in. Real producer
// registration is application code - the CLI's job is to build and run
// a Plan against whatever Registry it is handed, and this package gives
// it one to point at out of the box.
//
// The pipeline is a diamond: dataset.raw feeds both dataset.cleaned and
// dataset.enriched, which both feed dataset.report.
package demo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagflow/pkg/dagflow"
)

// Dataset is the value every demo producer in this pipeline traffics in.
type Dataset struct {
	Rows        []string  `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Report is dataset.report's output: a summary of the two upstream
// transforms.
type Report struct {
	RowCount     int      `json:"row_count"`
	CleanedRows  []string `json:"cleaned_rows"`
	EnrichedRows []string `json:"enriched_rows"`
}

// Identities used by this pipeline, exported so CLI commands can target
// them without hardcoding string literals in more than one place.
const (
	Raw          dagflow.Identity = "dataset.raw"
	Cleaned      dagflow.Identity = "dataset.cleaned"
	Enriched     dagflow.Identity = "dataset.enriched"
	ReportTarget dagflow.Identity = "dataset.report"
)

// Registry builds a fresh *dagflow.Registry carrying the demo pipeline.
// A fresh instance is returned every call so CLI invocations never share
// mutable registry state across runs.
func Registry() *dagflow.Registry {
	reg := dagflow.NewRegistry()

	if err := dagflow.Register0(reg, Raw, nil, fetchRaw); err != nil {
		panic(err)
	}
	if err := dagflow.Register1(reg, Cleaned, Raw, nil, clean); err != nil {
		panic(err)
	}
	if err := dagflow.Register1(reg, Enriched, Raw, nil, enrich); err != nil {
		panic(err)
	}
	if err := dagflow.Register2(reg, ReportTarget, Cleaned, Enriched, nil, report); err != nil {
		panic(err)
	}

	return reg
}

func fetchRaw(ctx context.Context) (Dataset, error) {
	return Dataset{
		Rows:        []string{" alice ", "BOB", " carol"},
		GeneratedAt: time.Now(),
	}, nil
}

func clean(ctx context.Context, raw Dataset) (Dataset, error) {
	out := make([]string, len(raw.Rows))
	for i, row := range raw.Rows {
		out[i] = strings.ToLower(strings.TrimSpace(row))
	}
	return Dataset{Rows: out, GeneratedAt: raw.GeneratedAt}, nil
}

func enrich(ctx context.Context, raw Dataset) (Dataset, error) {
	out := make([]string, len(raw.Rows))
	for i, row := range raw.Rows {
		out[i] = fmt.Sprintf("%s#%d", strings.TrimSpace(row), i)
	}
	return Dataset{Rows: out, GeneratedAt: raw.GeneratedAt}, nil
}

func report(ctx context.Context, cleaned, enriched Dataset) (Report, error) {
	return Report{
		RowCount:     len(cleaned.Rows),
		CleanedRows:  cleaned.Rows,
		EnrichedRows: enriched.Rows,
	}, nil
}
