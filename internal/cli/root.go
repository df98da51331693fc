// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli implements livyctl, the operator tool for inspecting and
// maintaining the local offline store.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/livyflow/internal/client"
	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/logger"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string
	ConfigPath string
	API        string
	Database   string
	Token      string
	LogPath    string
}

// configArgs maps the set global flags onto the config package flags.
func (o *RootOptions) configArgs() []string {
	var args []string
	add := func(name, value string) {
		if value != "" {
			args = append(args, "-"+name, value)
		}
	}

	add("c", o.ConfigPath)
	add("a", strings.TrimPrefix(strings.TrimPrefix(o.API, "http://"), "https://"))
	add("d", o.Database)
	add("token", o.Token)
	add("log", o.LogPath)
	return args
}

// openApp loads the configuration and opens the client store. The returned
// func shuts the app down.
func (o *RootOptions) openApp(ctx context.Context) (*client.App, func(), error) {
	cfg, err := config.GetClientConfig(o.configArgs())
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	log := logger.NewClientLogger("livyctl", cfg.App.LogPath)

	app, err := client.NewApp(cfg, log)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to build client", err)
	}

	if err = app.Open(ctx); err != nil {
		app.Shutdown()
		return nil, nil, WrapExitError(ExitCommandError, "failed to open local store", err)
	}

	return app, app.Shutdown, nil
}

func (o *RootOptions) formatter(w io.Writer) *outputFormatter {
	return &outputFormatter{format: o.Format, w: w}
}

// NewRootCommand creates the root command of livyctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "livyctl",
		Short: "livyctl - LivyFlow offline store tool",
		Long:  "Inspect and maintain the LivyFlow offline store: queued mutations, unsynced records, the response cache and sync passes.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (JSON or YAML)")
	cmd.PersistentFlags().StringVar(&opts.API, "api", "", "API address host:port")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "local database path")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "identity bearer token")
	cmd.PersistentFlags().StringVar(&opts.LogPath, "log", "", "log file path")

	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))
	cmd.AddCommand(NewUnsyncedCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewTxCommand(opts))

	return cmd
}
