// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrMiss is returned by backends for absent keys.
var ErrMiss = errors.New("cache miss")

// DefaultPrefix namespaces every key this service writes.
const DefaultPrefix = "votechain:"

// Backend is the raw byte storage behind a Store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key under the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// record is the persisted shape: a write timestamp in epoch milliseconds
// plus the serialized payload.
type record struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Store memoizes read results with per-read TTLs. It never fails its
// caller: backend and serialization errors are logged at warn level and
// behave like a miss.
type Store struct {
	backend Backend
	prefix  string
	now     func() time.Time
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		prefix:  DefaultPrefix,
		now:     time.Now,
	}
}

// WithClock substitutes the time source. For tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Save stores data under the namespaced key with the current timestamp.
func (s *Store) Save(ctx context.Context, key string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Warn("cache save failed to serialize", "key", key, "error", err)
		return
	}

	rec, err := json.Marshal(record{
		Timestamp: s.now().UnixMilli(),
		Data:      payload,
	})
	if err != nil {
		slog.Warn("cache save failed to serialize", "key", key, "error", err)
		return
	}

	if err := s.backend.Set(ctx, s.prefix+key, rec); err != nil {
		slog.Warn("cache save failed", "key", key, "error", err)
	}
}

// Load reads a value into v. Returns false on absence, a malformed
// record, or expiry. ttlSeconds == 0 means the entry never expires by
// time and only Clear removes it.
func (s *Store) Load(ctx context.Context, key string, ttlSeconds int, v any) bool {
	raw, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			slog.Warn("cache load failed", "key", key, "error", err)
		}
		return false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		slog.Warn("cache entry malformed", "key", key, "error", err)
		return false
	}

	if ttlSeconds > 0 {
		age := s.now().UnixMilli() - rec.Timestamp
		if age > int64(ttlSeconds)*1000 {
			return false
		}
	}

	if err := json.Unmarshal(rec.Data, v); err != nil {
		slog.Warn("cache entry malformed", "key", key, "error", err)
		return false
	}
	return true
}

// Clear removes one entry unconditionally.
func (s *Store) Clear(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, s.prefix+key); err != nil {
		slog.Warn("cache clear failed", "key", key, "error", err)
	}
}

// ClearAll removes every entry in this store's namespace.
func (s *Store) ClearAll(ctx context.Context) {
	if err := s.backend.DeletePrefix(ctx, s.prefix); err != nil {
		slog.Warn("cache clear-all failed", "error", err)
	}
}
