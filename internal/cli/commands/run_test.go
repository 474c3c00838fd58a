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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const demoManifest = `
job:
  id: test-job
targets:
  - dataset.report
`

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestRunCommand_CompletesDemoPipeline(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeManifest(t, dir, demoManifest)
	outPath := filepath.Join(dir, "snapshot.json")

	cmd := NewRunCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--manifest", manifestPath, "--out", outPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "job completed") {
		t.Fatalf("expected completion message, got: %q", buf.String())
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected snapshot file to be written: %v", err)
	}
}

func TestRunCommand_MissingManifestFails(t *testing.T) {
	cmd := NewRunCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--manifest", "/nonexistent/job.yaml"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for a missing manifest file")
	}
}

func TestResumeCommand_SkipsCompletedNodes(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeManifest(t, dir, demoManifest)
	firstOut := filepath.Join(dir, "first.json")

	run := NewRunCommand()
	run.SetOut(&bytes.Buffer{})
	run.SetErr(&bytes.Buffer{})
	run.SetArgs([]string{"--manifest", manifestPath, "--out", firstOut})
	if err := run.Execute(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	resume := NewResumeCommand()
	buf := &bytes.Buffer{}
	resume.SetOut(buf)
	resume.SetErr(buf)
	resume.SetArgs([]string{"--manifest", manifestPath, "--snapshot", firstOut})
	if err := resume.Execute(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !strings.Contains(buf.String(), "job completed") {
		t.Fatalf("expected resume to complete immediately, got: %q", buf.String())
	}
}

func TestRenderCommand_PrintsMermaidGraph(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeManifest(t, dir, demoManifest)

	cmd := NewRenderCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--manifest", manifestPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "graph TD") {
		t.Fatalf("expected a Mermaid graph TD header, got: %q", out)
	}
	if !strings.Contains(out, "dataset.report") {
		t.Fatalf("expected the target node in the diagram, got: %q", out)
	}
}
