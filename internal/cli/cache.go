// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CachePurgeOptions holds flags for the cache purge command.
type CachePurgeOptions struct {
	*RootOptions
	All bool
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the response cache",
	}

	cmd.AddCommand(newCachePurgeCommand(rootOpts))
	return cmd
}

func newCachePurgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CachePurgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCachePurge(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "delete every entry, not only expired ones")
	return cmd
}

func runCachePurge(ctx context.Context, opts *CachePurgeOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, shutdown, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	cache := app.Storages().Cache
	if opts.All {
		if err = cache.Clear(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to clear cache", err)
		}
		return opts.formatter(w).success(map[string]bool{"cleared": true}, func(w io.Writer) {
			fmt.Fprintln(w, "cache cleared")
		})
	}

	n, err := cache.PurgeExpired(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to purge cache", err)
	}

	return opts.formatter(w).success(map[string]int64{"purged": n}, func(w io.Writer) {
		fmt.Fprintf(w, "purged %d expired entries\n", n)
	})
}
