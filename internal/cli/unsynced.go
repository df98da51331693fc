// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/livyflow/internal/store"
)

// UnsyncedOptions holds flags for the unsynced command.
type UnsyncedOptions struct {
	*RootOptions
	Collection string
}

// NewUnsyncedCommand creates the unsynced command.
func NewUnsyncedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnsyncedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "unsynced",
		Short: "List local records the server has not confirmed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnsynced(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Collection, "collection", store.CollectionTransactions, "collection to list")

	return cmd
}

func runUnsynced(ctx context.Context, opts *UnsyncedOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, shutdown, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	records, err := app.Services().OfflineService.GetUnsynced(ctx, opts.Collection)
	if errors.Is(err, store.ErrUnknownCollection) {
		return WrapExitError(ExitCommandError, "unknown collection", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list unsynced records", err)
	}

	return opts.formatter(w).success(records, func(w io.Writer) {
		if len(records) == 0 {
			fmt.Fprintf(w, "all %s are synced\n", opts.Collection)
			return
		}
		for _, r := range records {
			serverID := "-"
			if r.HasServerID() {
				serverID = *r.ServerID
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, serverID, r.Data)
		}
	})
}
