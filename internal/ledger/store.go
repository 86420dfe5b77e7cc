package ledger

import (
	"context"
	"errors"
)

var (
	ErrInvalidAmount     = errors.New("ledger: invalid amount")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrAlreadyClaimed    = errors.New("ledger: daily reward already claimed")
	ErrPersist           = errors.New("ledger: persist failed")
)

// Entry is one leaderboard row.
type Entry struct {
	ID      string
	Balance int64
}

// Store holds account balances. Accounts are created lazily on first
// reference with a zero balance. Implementations must be safe for
// concurrent use and must persist every mutation before returning.
type Store interface {
	// Balance returns the current balance, creating the account if absent.
	Balance(ctx context.Context, id string) (int64, error)

	// Credit adds amount (> 0) to the account and returns the new balance.
	Credit(ctx context.Context, id string, amount int64) (int64, error)

	// Debit removes amount (> 0) from the account and returns the new
	// balance. Fails with ErrInsufficientFunds if amount exceeds it.
	Debit(ctx context.Context, id string, amount int64) (int64, error)

	// Transfer moves amount from one account to the other atomically:
	// either both balances change and are persisted together, or neither.
	Transfer(ctx context.Context, from, to string, amount int64) error

	// ClaimDaily credits amount once per calendar day (today is a
	// YYYY-MM-DD string) and returns the new balance. A second claim the
	// same day fails with ErrAlreadyClaimed and changes nothing.
	ClaimDaily(ctx context.Context, id, today string, amount int64) (int64, error)

	// SetBalance overwrites the balance with amount (>= 0).
	SetBalance(ctx context.Context, id string, amount int64) error

	// Top returns the n highest balances, descending, ties broken by
	// account ID ascending.
	Top(ctx context.Context, n int) ([]Entry, error)

	Close() error
}
