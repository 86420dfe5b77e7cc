package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/domain"
)

const snapshotVersion = 1

type snapshotAccount struct {
	Balance   int64   `json:"balance"`
	LastClaim *string `json:"lastClaim"`
}

type snapshot struct {
	Version  int                        `json:"version"`
	Accounts map[string]snapshotAccount `json:"accounts"`
}

// FileStore keeps the whole ledger in memory and rewrites a single JSON
// document on every mutation. A failed write rolls the in-memory change
// back so memory and disk never diverge.
type FileStore struct {
	mu       sync.Mutex
	path     string
	accounts map[string]*domain.Account
}

// OpenFile loads the snapshot at path. A missing file is an empty ledger.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, accounts: make(map[string]*domain.Account)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.Accounts == nil {
		// Version 0: a flat id -> account map with no envelope.
		var flat map[string]snapshotAccount
		if e := json.Unmarshal(data, &flat); e != nil {
			return nil, fmt.Errorf("ledger: parse %s: %w", path, e)
		}
		snap = snapshot{Accounts: flat}
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("ledger: %s has unsupported version %d", path, snap.Version)
	}

	for id, a := range snap.Accounts {
		acc := &domain.Account{ID: id, Balance: a.Balance}
		if a.LastClaim != nil {
			acc.LastClaim = *a.LastClaim
		}
		s.accounts[id] = acc
	}
	return s, nil
}

// persist rewrites the full snapshot via a temp file and rename. Caller
// holds the mutex.
func (s *FileStore) persist() error {
	snap := snapshot{Version: snapshotVersion, Accounts: make(map[string]snapshotAccount, len(s.accounts))}
	for id, a := range s.accounts {
		sa := snapshotAccount{Balance: a.Balance}
		if a.LastClaim != "" {
			lc := a.LastClaim
			sa.LastClaim = &lc
		}
		snap.Accounts[id] = sa
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// get returns the account, creating it if absent. Caller holds the mutex;
// created reports whether a persist is owed for the new record.
func (s *FileStore) get(id string) (acc *domain.Account, created bool) {
	acc, ok := s.accounts[id]
	if !ok {
		acc = &domain.Account{ID: id}
		s.accounts[id] = acc
		created = true
	}
	return acc, created
}

func (s *FileStore) Balance(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, created := s.get(id)
	if created {
		if err := s.persist(); err != nil {
			delete(s.accounts, id)
			return 0, err
		}
	}
	return acc.Balance, nil
}

func (s *FileStore) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, _ := s.get(id)
	acc.Balance += amount
	if err := s.persist(); err != nil {
		acc.Balance -= amount
		return 0, err
	}
	return acc.Balance, nil
}

func (s *FileStore) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, _ := s.get(id)
	if amount > acc.Balance {
		return 0, ErrInsufficientFunds
	}
	acc.Balance -= amount
	if err := s.persist(); err != nil {
		acc.Balance += amount
		return 0, err
	}
	return acc.Balance, nil
}

func (s *FileStore) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, _ := s.get(from)
	if amount > src.Balance {
		return ErrInsufficientFunds
	}
	dst, _ := s.get(to)
	src.Balance -= amount
	dst.Balance += amount
	// One snapshot write covers both accounts.
	if err := s.persist(); err != nil {
		src.Balance += amount
		dst.Balance -= amount
		return err
	}
	return nil
}

func (s *FileStore) ClaimDaily(ctx context.Context, id, today string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, _ := s.get(id)
	if acc.LastClaim == today {
		return 0, ErrAlreadyClaimed
	}
	prevClaim, prevBalance := acc.LastClaim, acc.Balance
	acc.LastClaim = today
	acc.Balance += amount
	if err := s.persist(); err != nil {
		acc.LastClaim = prevClaim
		acc.Balance = prevBalance
		return 0, err
	}
	return acc.Balance, nil
}

func (s *FileStore) SetBalance(ctx context.Context, id string, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, _ := s.get(id)
	prev := acc.Balance
	acc.Balance = amount
	if err := s.persist(); err != nil {
		acc.Balance = prev
		return err
	}
	return nil
}

func (s *FileStore) Top(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.accounts))
	for id, a := range s.accounts {
		entries = append(entries, Entry{ID: id, Balance: a.Balance})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Balance != entries[j].Balance {
			return entries[i].Balance > entries[j].Balance
		}
		return entries[i].ID < entries[j].ID
	})
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

func (s *FileStore) Close() error { return nil }
