// Package moderation holds the ban set and per-chat policy toggles.
//
// Bans are process-wide: a banned user is banned in every chat. Antilink
// and mute are scoped to the chat they were toggled in. State lives in
// memory; pass a path to Open to also write it through to a bbolt file so
// it survives restarts.
package moderation

import (
	"errors"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
)

var (
	ErrAlreadyBanned = errors.New("moderation: user already banned")
	ErrNotBanned     = errors.New("moderation: user not banned")
	ErrPersist       = errors.New("moderation: persist failed")
)

var (
	bucketBanned   = []byte("banned")
	bucketAntilink = []byte("antilink")
	bucketMuted    = []byte("muted")
)

type Store struct {
	mu       sync.Mutex
	banned   map[string]struct{}
	antilink map[string]bool
	muted    map[string]bool
	db       *bolt.DB // nil when persistence is off
}

// Open creates the store. An empty path keeps everything in memory only.
func Open(path string) (*Store, error) {
	s := &Store{
		banned:   make(map[string]struct{}),
		antilink: make(map[string]bool),
		muted:    make(map[string]bool),
	}
	if path == "" {
		return s, nil
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBanned, bucketAntilink, bucketMuted} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		if err := tx.Bucket(bucketBanned).ForEach(func(k, _ []byte) error {
			s.banned[string(k)] = struct{}{}
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(bucketAntilink).ForEach(func(k, _ []byte) error {
			s.antilink[string(k)] = true
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketMuted).ForEach(func(k, _ []byte) error {
			s.muted[string(k)] = true
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// putKey adds or removes key in bucket; no-op without a db. Callers roll
// their in-memory change back on error so memory never drifts from disk.
func (s *Store) putKey(bucket []byte, key string, present bool) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if present {
			return b.Put([]byte(key), []byte{1})
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *Store) Ban(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banned[id]; ok {
		return ErrAlreadyBanned
	}
	s.banned[id] = struct{}{}
	if err := s.putKey(bucketBanned, id, true); err != nil {
		delete(s.banned, id)
		return err
	}
	return nil
}

func (s *Store) Unban(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banned[id]; !ok {
		return ErrNotBanned
	}
	delete(s.banned, id)
	if err := s.putKey(bucketBanned, id, false); err != nil {
		s.banned[id] = struct{}{}
		return err
	}
	return nil
}

func (s *Store) IsBanned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.banned[id]
	return ok
}

func (s *Store) SetAntilink(chatID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.antilink[chatID]
	if enabled {
		s.antilink[chatID] = true
	} else {
		delete(s.antilink, chatID)
	}
	if err := s.putKey(bucketAntilink, chatID, enabled); err != nil {
		if prev {
			s.antilink[chatID] = true
		} else {
			delete(s.antilink, chatID)
		}
		return err
	}
	return nil
}

func (s *Store) AntilinkEnabled(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.antilink[chatID]
}

func (s *Store) SetMuted(chatID string, muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.muted[chatID]
	if muted {
		s.muted[chatID] = true
	} else {
		delete(s.muted, chatID)
	}
	if err := s.putKey(bucketMuted, chatID, muted); err != nil {
		if prev {
			s.muted[chatID] = true
		} else {
			delete(s.muted, chatID)
		}
		return err
	}
	return nil
}

func (s *Store) Muted(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted[chatID]
}
