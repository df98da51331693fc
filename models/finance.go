// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "github.com/shopspring/decimal"

// Transaction is a single money movement. Negative amounts are spending.
type Transaction struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	AccountID   string          `json:"account_id,omitempty"`
}

// Budget is a spending limit for a category in a month (YYYY-MM).
type Budget struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Month    string          `json:"month,omitempty"`
}

// Account is a bank account linked through the banking-data provider.
type Account struct {
	Name        string          `json:"name"`
	Institution string          `json:"institution,omitempty"`
	Mask        string          `json:"mask,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
}

// StoredTransaction pairs a decoded transaction with its local bookkeeping.
type StoredTransaction struct {
	Record
	Transaction Transaction
}

// StoredBudget pairs a decoded budget with its local bookkeeping.
type StoredBudget struct {
	Record
	Budget Budget
}

// StoredAccount pairs a decoded account with its local bookkeeping.
type StoredAccount struct {
	Record
	Account Account
}
