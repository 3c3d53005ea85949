// Package session keeps per-browser state between requests: the most recently
// looked-up order and the tracking histories already fetched for it.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/BearBump/OrderTrack/internal/cache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	KeyCurrentOrder = "currentOrder"

	DefaultTTL = 30 * time.Minute
)

type Store struct {
	cache cache.BytesCache
	ttl   time.Duration

	// indexMu serializes writes and clears of a session within a process.
	indexMu sync.Mutex
}

func NewStore(c cache.BytesCache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: c, ttl: ttl}
}

func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) Get(ctx context.Context, sessionID, key string, out any) (bool, error) {
	b, ok, err := s.cache.Get(ctx, itemKey(sessionID, key))
	if err != nil {
		return false, errors.Wrap(err, "session get")
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, errors.Wrap(err, "session decode")
	}
	return true, nil
}

// Set stores value and records key in the session index so Clear can find it.
func (s *Store) Set(ctx context.Context, sessionID, key string, value any) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	return s.set(ctx, sessionID, key, value)
}

// SetIfPresent stores value only while guardKey is still in the session.
// It reports false when the session was cleared or guardKey removed meanwhile.
func (s *Store) SetIfPresent(ctx context.Context, sessionID, guardKey, key string, value any) (bool, error) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	keys, err := s.index(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if !contains(keys, guardKey) {
		return false, nil
	}
	return true, s.set(ctx, sessionID, key, value)
}

// set expects indexMu to be held.
func (s *Store) set(ctx context.Context, sessionID, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "session encode")
	}
	if err := s.cache.Set(ctx, itemKey(sessionID, key), b, s.ttl); err != nil {
		return errors.Wrap(err, "session set")
	}

	keys, err := s.index(ctx, sessionID)
	if err != nil {
		return err
	}
	if contains(keys, key) {
		return nil
	}
	keys = append(keys, key)
	ib, _ := json.Marshal(keys)
	return errors.Wrap(s.cache.Set(ctx, itemKey(sessionID, indexKey), ib, s.ttl), "session index")
}

func (s *Store) index(ctx context.Context, sessionID string) ([]string, error) {
	var keys []string
	if _, err := s.Get(ctx, sessionID, indexKey, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	keys, err := s.index(ctx, sessionID)
	if err != nil {
		return err
	}
	all := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		all = append(all, itemKey(sessionID, k))
	}
	all = append(all, itemKey(sessionID, indexKey))
	return errors.Wrap(s.cache.Delete(ctx, all...), "session clear")
}

const indexKey = "_keys"

func itemKey(sessionID, key string) string {
	return "session:" + sessionID + ":" + key
}

// TrackingKey is the session key of a cached tracking history.
func TrackingKey(trackingNumber, courier string) string {
	return "tracking:" + courier + ":" + trackingNumber
}
