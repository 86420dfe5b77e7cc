package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a Postgres accounts table. Transfers and
// daily claims run inside a transaction with row locks taken in
// ascending-ID order.
type PGStore struct{ pool *pgxpool.Pool }

func NewPG(pool *pgxpool.Pool) *PGStore { return &PGStore{pool: pool} }

func pgErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersist, err)
}

func (s *PGStore) Balance(ctx context.Context, id string) (int64, error) {
	var bal int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO accounts(id) VALUES($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING balance
	`, id).Scan(&bal)
	return bal, pgErr(err)
}

func (s *PGStore) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var bal int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO accounts(id, balance) VALUES($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance = accounts.balance + $2
		RETURNING balance
	`, id, amount).Scan(&bal)
	return bal, pgErr(err)
}

func (s *PGStore) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, pgErr(err)
	}
	defer tx.Rollback(ctx)

	bal, err := lockAccount(ctx, tx, id)
	if err != nil {
		return 0, pgErr(err)
	}
	if amount > bal {
		return 0, ErrInsufficientFunds
	}
	bal -= amount
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance=$2 WHERE id=$1`, id, bal); err != nil {
		return 0, pgErr(err)
	}
	return bal, pgErr(tx.Commit(ctx))
}

func (s *PGStore) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		_, err := s.Balance(ctx, from)
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pgErr(err)
	}
	defer tx.Rollback(ctx)

	// Lock both rows in ascending-ID order to avoid deadlock.
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	if _, err := lockAccount(ctx, tx, first); err != nil {
		return pgErr(err)
	}
	if _, err := lockAccount(ctx, tx, second); err != nil {
		return pgErr(err)
	}

	var srcBal int64
	if err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id=$1`, from).Scan(&srcBal); err != nil {
		return pgErr(err)
	}
	if amount > srcBal {
		return ErrInsufficientFunds
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance - $2 WHERE id=$1`, from, amount); err != nil {
		return pgErr(err)
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2 WHERE id=$1`, to, amount); err != nil {
		return pgErr(err)
	}
	return pgErr(tx.Commit(ctx))
}

func (s *PGStore) ClaimDaily(ctx context.Context, id, today string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, pgErr(err)
	}
	defer tx.Rollback(ctx)

	bal, err := lockAccount(ctx, tx, id)
	if err != nil {
		return 0, pgErr(err)
	}
	var lastClaim string
	if err := tx.QueryRow(ctx, `SELECT last_claim FROM accounts WHERE id=$1`, id).Scan(&lastClaim); err != nil {
		return 0, pgErr(err)
	}
	if lastClaim == today {
		return 0, ErrAlreadyClaimed
	}
	bal += amount
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance=$2, last_claim=$3 WHERE id=$1`, id, bal, today); err != nil {
		return 0, pgErr(err)
	}
	return bal, pgErr(tx.Commit(ctx))
}

func (s *PGStore) SetBalance(ctx context.Context, id string, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts(id, balance) VALUES($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance = $2
	`, id, amount)
	return pgErr(err)
}

func (s *PGStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, balance FROM accounts
		ORDER BY balance DESC, id ASC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Balance); err != nil {
			return nil, pgErr(err)
		}
		out = append(out, e)
	}
	return out, pgErr(rows.Err())
}

// Close is a no-op; the pool is owned by main.
func (s *PGStore) Close() error { return nil }

// lockAccount upserts the row and takes a FOR UPDATE lock, returning the
// current balance.
func lockAccount(ctx context.Context, tx pgx.Tx, id string) (int64, error) {
	if _, err := tx.Exec(ctx, `INSERT INTO accounts(id) VALUES($1) ON CONFLICT DO NOTHING`, id); err != nil {
		return 0, err
	}
	var bal int64
	err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id=$1 FOR UPDATE`, id).Scan(&bal)
	return bal, err
}
