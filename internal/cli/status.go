// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/livyflow/internal/store"
)

// StatusResult is the output of the status command.
type StatusResult struct {
	Online         bool           `json:"online"`
	PendingActions int64          `json:"pending_actions"`
	Unsynced       map[string]int `json:"unsynced"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, queue length and unsynced records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), rootOpts, cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, opts *RootOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, shutdown, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	pending, err := app.Storages().PendingActions.Count(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count pending actions", err)
	}

	result := StatusResult{
		Online:         app.Monitor().IsOnline(),
		PendingActions: pending,
		Unsynced:       make(map[string]int, len(store.SyncableCollections)),
	}
	for _, collection := range store.SyncableCollections {
		records, err := app.Services().OfflineService.GetUnsynced(ctx, collection)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list unsynced "+collection, err)
		}
		result.Unsynced[collection] = len(records)
	}

	return opts.formatter(w).success(result, func(w io.Writer) {
		fmt.Fprintf(w, "state:    %s\n", stateLabel(result.Online))
		fmt.Fprintf(w, "pending:  %d\n", result.PendingActions)
		for _, collection := range store.SyncableCollections {
			fmt.Fprintf(w, "unsynced %s: %d\n", collection, result.Unsynced[collection])
		}
	})
}

func stateLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
