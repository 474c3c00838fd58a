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
	"fmt"

	"github.com/spf13/cobra"

	"dagflow/internal/manifest"
)

// NewResumeCommand returns the `dagflow resume` command. It is `run`
// plus a prior snapshot file fed in as seed data, so nodes the prior run
// already completed are not re-invoked.
func NewResumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume a job from a prior run's snapshot",
		Long:  "Like run, but seeds the build with a snapshot file from a prior (possibly failed or cancelled) run.",
		RunE:  runResume,
	}
	cmd.Flags().StringP("manifest", "m", "", "path to the job manifest (required)")
	cmd.Flags().StringP("snapshot", "s", "", "path to a prior run's snapshot file (required)")
	cmd.Flags().StringP("out", "o", "", "write the final value-store snapshot to this path")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug-level progress logging")
	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runResume(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	outPath, _ := cmd.Flags().GetString("out")
	verbose, _ := cmd.Flags().GetBool("verbose")

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	seed, err := readSnapshotFile(snapshotPath)
	if err != nil {
		return err
	}
	return execute(cmd, m, seed, outPath, verbose)
}
