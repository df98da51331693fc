// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/livyflow/models"
)

// TxAddOptions holds flags for the tx add command.
type TxAddOptions struct {
	*RootOptions
	Amount      string
	Date        string
	Description string
	Category    string
	AccountID   string
}

// NewTxCommand creates the tx command group.
func NewTxCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Work with local transactions",
	}

	cmd.AddCommand(newTxAddCommand(rootOpts))
	return cmd
}

func newTxAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TxAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a transaction through the offline facade",
		Long: `Store a transaction locally. When the API is unreachable the creation
is queued and replayed by the next sync pass.

Examples:
  livyctl tx add --amount -4.50 --description coffee --category food
  livyctl tx add --amount 1200 --date 2025-01-31 --account acc-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTxAdd(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Amount, "amount", "", "signed amount, negative for spending (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&opts.Date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category")
	cmd.Flags().StringVar(&opts.AccountID, "account", "", "account id")

	return cmd
}

func runTxAdd(ctx context.Context, opts *TxAddOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	amount, err := decimal.NewFromString(opts.Amount)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid amount", err)
	}

	date := opts.Date
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	}
	if _, err = time.Parse(time.DateOnly, date); err != nil {
		return WrapExitError(ExitCommandError, "invalid date", err)
	}

	app, shutdown, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	offline := app.Services().OfflineService
	id, err := offline.StoreTransaction(ctx, models.Transaction{
		Amount:      amount,
		Date:        date,
		Description: opts.Description,
		Category:    opts.Category,
		AccountID:   opts.AccountID,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to store transaction", err)
	}

	queued := !offline.IsOnline()
	result := map[string]any{"id": id, "queued": queued}
	return opts.formatter(w).success(result, func(w io.Writer) {
		if queued {
			fmt.Fprintf(w, "stored transaction %d, creation queued until online\n", id)
			return
		}
		fmt.Fprintf(w, "stored transaction %d\n", id)
	})
}
