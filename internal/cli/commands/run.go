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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"dagflow/internal/manifest"
	"dagflow/pkg/dagflow"
)

// NewRunCommand returns the `dagflow run` command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a job described by a manifest",
		Long:  "Builds a Plan from a YAML manifest against the built-in demo pipeline and drives it to completion.",
		RunE:  runRun,
	}
	cmd.Flags().StringP("manifest", "m", "", "path to the job manifest (required)")
	cmd.Flags().StringP("out", "o", "", "write the final value-store snapshot to this path")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug-level progress logging")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	outPath, _ := cmd.Flags().GetString("out")
	verbose, _ := cmd.Flags().GetBool("verbose")

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	return execute(cmd, m, nil, outPath, verbose)
}

// execute is shared by `run` and `resume`: it builds the plan, wires the
// optional notify/persistence collaborators the manifest names, drives
// the worker to completion, and prints the outcome.
func execute(cmd *cobra.Command, m *manifest.Manifest, extraSeed map[string]json.RawMessage, outPath string, verbose bool) error {
	plan, err := buildPlan(m, extraSeed)
	if err != nil {
		return fmt.Errorf("building plan: %w", err)
	}

	codec, err := resolveCodec(m.Codec)
	if err != nil {
		return err
	}

	publishers, closeNotifiers, err := buildNotifiers(m)
	if err != nil {
		return err
	}
	defer closeNotifiers()

	snapshots, closeSnapshots, err := buildSnapshotStore(m)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	opts := []dagflow.Option{
		dagflow.WithConcurrency(m.Concurrency),
		dagflow.WithLogger(loggerFor(verbose)),
	}
	for _, p := range publishers {
		opts = append(opts, dagflow.WithNotifier(p))
	}
	if snapshots != nil {
		opts = append(opts, dagflow.WithSnapshotStore(m.Job.ID, snapshots))
	}

	w := dagflow.New(plan, codec, opts...)
	if err := w.Run(cmd.Context()); err != nil {
		return fmt.Errorf("running job %q: %w", m.Job.ID, err)
	}
	outcome, _ := w.GetOutput()

	if err := printOutcome(cmd, outcome); err != nil {
		return err
	}

	if outPath != "" {
		if err := writeSnapshotFile(outPath, outcome.Snapshot()); err != nil {
			return err
		}
	}

	if outcome.Verdict != dagflow.VerdictCompleted {
		return outcome.Error()
	}
	return nil
}

func printOutcome(cmd *cobra.Command, outcome dagflow.Outcome) error {
	out := cmd.OutOrStdout()
	switch outcome.Verdict {
	case dagflow.VerdictCompleted:
		fmt.Fprintf(out, "job completed: %d node(s) in store\n", len(outcome.Snapshot()))
	case dagflow.VerdictFailed:
		fmt.Fprintf(out, "job failed: node %q: %s\n", outcome.FailedNode, outcome.Reason)
	case dagflow.VerdictCancelled:
		fmt.Fprintln(out, "job cancelled")
	}
	return nil
}
