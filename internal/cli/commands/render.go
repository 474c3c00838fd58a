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
	"dagflow/pkg/dagflow/mermaid"
)

// NewRenderCommand returns the `dagflow render` command.
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a job's plan as a Mermaid graph",
		Long:  "Builds the Plan described by a manifest, without running it, and prints a Mermaid graph TD diagram.",
		RunE:  runRender,
	}
	cmd.Flags().StringP("manifest", "m", "", "path to the job manifest (required)")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	plan, err := buildPlan(m, nil)
	if err != nil {
		return fmt.Errorf("building plan: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), mermaid.Render(plan, nil))
	return nil
}
