// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass",
		Long: `Drain the pending-action queue and push unsynced records.

The pass only runs when the API health check succeeds. The command exits
with code 1 when the client is offline or any item failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), rootOpts, cmd.OutOrStdout())
		},
	}
}

func runSync(ctx context.Context, opts *RootOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, shutdown, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	offline := app.Services().OfflineService
	if !offline.IsOnline() {
		return NewExitError(ExitFailure, "API is unreachable, nothing synced")
	}

	// a pass started by the reconnect notification finishes first
	app.Services().SyncService.Wait()

	report := offline.SyncNow(ctx)
	err = opts.formatter(w).success(report, func(w io.Writer) {
		fmt.Fprintf(w, "actions: executed=%d failed=%d dropped=%d\n",
			report.ActionsExecuted, report.ActionsFailed, report.ActionsDropped)
		fmt.Fprintf(w, "records: synced=%d failed=%d\n", report.RecordsSynced, report.RecordsFailed)
	})
	if err != nil {
		return err
	}

	if report.ActionsFailed+report.RecordsFailed > 0 {
		return NewExitError(ExitFailure, "sync pass finished with failures")
	}
	return nil
}
