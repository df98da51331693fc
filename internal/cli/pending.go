// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewPendingCommand creates the pending command.
func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List queued mutations in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPending(cmd.Context(), rootOpts, cmd.OutOrStdout())
		},
	}
}

func runPending(ctx context.Context, opts *RootOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, shutdown, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	actions, err := app.Services().OfflineService.PendingActions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list pending actions", err)
	}

	return opts.formatter(w).success(actions, func(w io.Writer) {
		if len(actions) == 0 {
			fmt.Fprintln(w, "queue is empty")
			return
		}
		for _, a := range actions {
			fmt.Fprintf(w, "%d\t%s\tretries=%d\t%s\t%s\n",
				a.ID, a.Type, a.Retries, a.Timestamp.Format(time.RFC3339), a.IdempotencyKey)
		}
	})
}
