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
)

// NewVersionCommand returns the `dagflow version` command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dagflow CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dagflow version %s\n", version)
		},
	}
}
