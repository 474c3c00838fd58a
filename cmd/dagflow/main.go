// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Dagflow - A Go library for running interdependent producer functions as a
directed acyclic graph, with parallel dispatch, checkpoint/resume, and
cooperative cancellation.

Copyright (C) 2026  Dagflow Contributors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package main

import (
	"fmt"
	"os"

	"dagflow/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error via its own usage/error output
		// path unless SilenceErrors is set on the root command, which it
		// is here - this is the one place that prints it, and the one
		// place that sets the process exit code.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
