package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := OpenFile(filepath.Join(t.TempDir(), "economy.json"))
	require.NoError(t, err)
	return s
}

func TestBalanceCreatesAccount(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	bal, err := s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)

	// Idempotent: a second lookup sees the same account.
	bal, err = s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}

func TestCreditDebit(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	bal, err := s.Credit(ctx, "alice", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), bal)

	bal, err = s.Debit(ctx, "alice", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal)

	_, err = s.Debit(ctx, "alice", 301)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = s.Credit(ctx, "alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = s.Debit(ctx, "alice", -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	bal, err = s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal)
}

func TestClaimDaily(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	bal, err := s.ClaimDaily(ctx, "alice", "2026-08-28", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal)

	_, err = s.ClaimDaily(ctx, "alice", "2026-08-28", 1000)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	bal, err = s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal, "failed claim must not move the balance")

	bal, err = s.ClaimDaily(ctx, "alice", "2026-08-29", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	_, err := s.Credit(ctx, "alice", 1000)
	require.NoError(t, err)

	require.NoError(t, s.Transfer(ctx, "alice", "bob", 400))

	a, _ := s.Balance(ctx, "alice")
	b, _ := s.Balance(ctx, "bob")
	assert.Equal(t, int64(600), a)
	assert.Equal(t, int64(400), b)
	assert.Equal(t, int64(1000), a+b, "pair sum is invariant")

	assert.ErrorIs(t, s.Transfer(ctx, "alice", "bob", 0), ErrInvalidAmount)
	assert.ErrorIs(t, s.Transfer(ctx, "alice", "bob", -10), ErrInvalidAmount)
	assert.ErrorIs(t, s.Transfer(ctx, "alice", "bob", 601), ErrInsufficientFunds)

	a, _ = s.Balance(ctx, "alice")
	b, _ = s.Balance(ctx, "bob")
	assert.Equal(t, int64(600), a, "failed transfers must not move balances")
	assert.Equal(t, int64(400), b)
}

func TestTransferToSelf(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	_, err := s.Credit(ctx, "alice", 100)
	require.NoError(t, err)
	require.NoError(t, s.Transfer(ctx, "alice", "alice", 50))

	bal, _ := s.Balance(ctx, "alice")
	assert.Equal(t, int64(100), bal)
}

func TestSetBalance(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	require.NoError(t, s.SetBalance(ctx, "alice", 9999))
	bal, _ := s.Balance(ctx, "alice")
	assert.Equal(t, int64(9999), bal)

	assert.ErrorIs(t, s.SetBalance(ctx, "alice", -1), ErrInvalidAmount)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "economy.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	_, err = s.Credit(ctx, "alice", 1500)
	require.NoError(t, err)
	_, err = s.ClaimDaily(ctx, "bob", "2026-08-28", 1000)
	require.NoError(t, err)

	reopened, err := OpenFile(path)
	require.NoError(t, err)

	a, _ := reopened.Balance(ctx, "alice")
	b, _ := reopened.Balance(ctx, "bob")
	assert.Equal(t, int64(1500), a)
	assert.Equal(t, int64(1000), b)

	_, err = reopened.ClaimDaily(ctx, "bob", "2026-08-28", 1000)
	assert.ErrorIs(t, err, ErrAlreadyClaimed, "lastClaim must survive reload")
}

func TestSnapshotLegacyFormat(t *testing.T) {
	// Version 0 snapshots are a bare id -> account map.
	path := filepath.Join(t.TempDir(), "economy.json")
	legacy := `{"alice@chat":{"balance":42,"lastClaim":"2026-08-27"},"bob@chat":{"balance":7,"lastClaim":null}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s, err := OpenFile(path)
	require.NoError(t, err)

	bal, _ := s.Balance(context.Background(), "alice@chat")
	assert.Equal(t, int64(42), bal)
	bal, _ = s.Balance(context.Background(), "bob@chat")
	assert.Equal(t, int64(7), bal)
}

func TestSnapshotUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "economy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"accounts":{}}`), 0o644))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestFailedPersistRollsBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "economy.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	_, err = s.Credit(ctx, "alice", 500)
	require.NoError(t, err)
	_, err = s.ClaimDaily(ctx, "alice", "2026-08-28", 1000)
	require.NoError(t, err)

	// A non-empty directory at the snapshot path makes the rename fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "block"), []byte("x"), 0o644))

	_, err = s.Credit(ctx, "alice", 100)
	assert.ErrorIs(t, err, ErrPersist)
	_, err = s.Debit(ctx, "alice", 100)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, s.Transfer(ctx, "alice", "bob", 200), ErrPersist)
	_, err = s.ClaimDaily(ctx, "alice", "2026-08-29", 1000)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, s.SetBalance(ctx, "alice", 1), ErrPersist)

	bal, err := s.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), bal, "every failed persist must roll its mutation back")

	// The claim date rolled back with the balance.
	require.NoError(t, os.RemoveAll(path))
	_, err = s.ClaimDaily(ctx, "alice", "2026-08-29", 1000)
	require.NoError(t, err)
}

func TestMissingSnapshotIsEmptyLedger(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	top, err := s.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTop(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	for id, amount := range map[string]int64{
		"carol": 300,
		"alice": 100,
		"dave":  100,
		"bob":   200,
	} {
		_, err := s.Credit(ctx, id, amount)
		require.NoError(t, err)
	}

	top, err := s.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []Entry{
		{ID: "carol", Balance: 300},
		{ID: "bob", Balance: 200},
		{ID: "alice", Balance: 100}, // ties break by ID ascending
	}, top)

	top, err = s.Top(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, top, 4)

	top, err = s.Top(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}
