package services

import "errors"

var (
	// ErrNoTransactions is returned when a month has nothing to report.
	ErrNoTransactions = errors.New("no transactions in period")
	// ErrNothingToDelete is returned by DeleteLast on an empty ledger.
	ErrNothingToDelete = errors.New("no transactions to delete")
)
