// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package cli wires together the dagflow root Cobra command.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"dagflow/internal/cli/commands"
)

// Version is overridden at build time via -ldflags.
var Version = "0.0.0-dev"

// NewRootCommand constructs the dagflow root Cobra command, wiring the
// run/resume/render/version subcommands described in the job manifest
// ambient-stack design.
func NewRootCommand() *cobra.Command {
	version := os.Getenv("DAGFLOW_VERSION")
	if version == "" {
		version = Version
	}

	cmd := &cobra.Command{
		Use:           "dagflow",
		Short:         "dagflow - run a DAG of producer functions to completion",
		Long:          "dagflow drives a manifest-described job: independent producers run in parallel, outputs feed downstream inputs, and a run can be checkpointed, resumed, and cooperatively cancelled.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands registered in lexicographic order by .Use for
	// deterministic help output.
	cmd.AddCommand(commands.NewRenderCommand())
	cmd.AddCommand(commands.NewResumeCommand())
	cmd.AddCommand(commands.NewRunCommand())
	cmd.AddCommand(commands.NewVersionCommand(version))

	return cmd
}
