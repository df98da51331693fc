// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "fmt"

// Collection names of the record tables.
const (
	CollectionTransactions = "transactions"
	CollectionBudgets      = "budgets"
	CollectionAccounts     = "accounts"
)

// Index names accepted by [IndexFilter].
const (
	IndexSynced    = "synced"
	IndexServerID  = "server_id"
	IndexDate      = "date"
	IndexAccountID = "account_id"
	IndexCategory  = "category"
	IndexMonth     = "month"
)

// indexes maps every declared index of a collection to the SQL expression the
// migration built it on. Expressions must match the migration text so that
// SQLite picks the index.
var indexes = map[string]map[string]string{
	CollectionTransactions: {
		IndexSynced:    "synced",
		IndexServerID:  "server_id",
		IndexDate:      "json_extract(data, '$.date')",
		IndexAccountID: "json_extract(data, '$.account_id')",
		IndexCategory:  "json_extract(data, '$.category')",
	},
	CollectionBudgets: {
		IndexSynced:   "synced",
		IndexServerID: "server_id",
		IndexCategory: "json_extract(data, '$.category')",
		IndexMonth:    "json_extract(data, '$.month')",
	},
	CollectionAccounts: {
		IndexSynced:   "synced",
		IndexServerID: "server_id",
	},
}

// SyncableCollections lists the record collections the synchronizer pushes,
// in push order.
var SyncableCollections = []string{
	CollectionTransactions,
	CollectionBudgets,
	CollectionAccounts,
}

// IndexFilter restricts a query to records whose index equals Value.
type IndexFilter struct {
	Index string
	Value any
}

// Where is shorthand for IndexFilter{Index: index, Value: value}.
func Where(index string, value any) IndexFilter {
	return IndexFilter{Index: index, Value: value}
}

func validateCollection(collection string) error {
	if _, ok := indexes[collection]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}

func indexExpr(collection, index string) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	expr, ok := indexes[collection][index]
	if !ok {
		return "", fmt.Errorf("%w: %q on %q", ErrUnknownIndex, index, collection)
	}
	return expr, nil
}
