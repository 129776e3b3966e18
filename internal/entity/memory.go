package entity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"identrust/internal/sentinel"
	"identrust/pkg/domain"
	"identrust/pkg/platform/middleware/requesttime"
)

// MemoryStore is a concurrency-safe in-memory Store. Records are copied on
// the way in and out so callers never share state with the store.
type MemoryStore[T any, PT interface {
	*T
	Record
}] struct {
	mu        sync.RWMutex
	prefix    domain.Prefix
	records   map[string]T
	seq       map[string]uint64
	next      uint64
	clone     func(T) T
	uniqueKey func(*T) string
	immutable bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption[T any] func(*memoryConfig[T])

type memoryConfig[T any] struct {
	clone     func(T) T
	uniqueKey func(*T) string
	immutable bool
}

// WithClone sets a deep copy function for records holding maps or slices.
func WithClone[T any](fn func(T) T) MemoryOption[T] {
	return func(c *memoryConfig[T]) { c.clone = fn }
}

// WithUniqueKey rejects a Create whose key collides with a stored record.
// Records with an empty key are not constrained.
func WithUniqueKey[T any](fn func(*T) string) MemoryOption[T] {
	return func(c *memoryConfig[T]) { c.uniqueKey = fn }
}

// Immutable makes Update fail with sentinel.ErrInvalidState.
func Immutable[T any]() MemoryOption[T] {
	return func(c *memoryConfig[T]) { c.immutable = true }
}

// NewMemoryStore creates an empty store issuing ids with the given prefix.
func NewMemoryStore[T any, PT interface {
	*T
	Record
}](prefix domain.Prefix, opts ...MemoryOption[T]) *MemoryStore[T, PT] {
	cfg := memoryConfig[T]{}
	for _, opt := range opts {
		opt(&cfg)
	}
	clone := cfg.clone
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &MemoryStore[T, PT]{
		prefix:    prefix,
		records:   make(map[string]T),
		seq:       make(map[string]uint64),
		clone:     clone,
		uniqueKey: cfg.uniqueKey,
		immutable: cfg.immutable,
	}
}

func (s *MemoryStore[T, PT]) Create(ctx context.Context, rec *T) error {
	meta := PT(rec).Metadata()
	PrepareCreate(ctx, meta, func() string { return domain.NewID(s.prefix) })

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[meta.ID]; exists {
		return fmt.Errorf("record %s: %w", meta.ID, sentinel.ErrAlreadyUsed)
	}
	if s.uniqueKey != nil {
		if key := s.uniqueKey(rec); key != "" {
			for _, existing := range s.records {
				if s.uniqueKey(&existing) == key {
					return fmt.Errorf("unique key %q: %w", key, sentinel.ErrAlreadyUsed)
				}
			}
		}
	}

	s.records[meta.ID] = s.clone(*rec)
	s.next++
	s.seq[meta.ID] = s.next
	return nil
}

func (s *MemoryStore[T, PT]) Get(_ context.Context, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := s.clone(rec)
	return &out, nil
}

func (s *MemoryStore[T, PT]) List(_ context.Context, opts ListOptions) ([]*T, error) {
	s.mu.RLock()
	out := make([]*T, 0, len(s.records))
	seqs := make(map[*T]uint64, len(s.records))
	for id, rec := range s.records {
		if opts.CreatedBy != "" && PT(&rec).Metadata().CreatedBy != opts.CreatedBy {
			continue
		}
		c := s.clone(rec)
		out = append(out, &c)
		seqs[&c] = s.seq[id]
	}
	s.mu.RUnlock()

	order := opts.Sort
	if order.Field == "" {
		order = NewestFirst
	}
	// Insertion order breaks timestamp ties so listings are deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := order.key(PT(out[i]).Metadata()), order.key(PT(out[j]).Metadata())
		if !ki.Equal(kj) {
			if order.Desc {
				return ki.After(kj)
			}
			return ki.Before(kj)
		}
		if order.Desc {
			return seqs[out[i]] > seqs[out[j]]
		}
		return seqs[out[i]] < seqs[out[j]]
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStore[T, PT]) Update(ctx context.Context, id string, patch Patch[T]) (*T, error) {
	if s.immutable {
		return nil, fmt.Errorf("record %s is append-only: %w", id, sentinel.ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := s.clone(current)
	if !patch(&working) {
		out := s.clone(current)
		return &out, nil
	}

	// Identity and ownership are not patchable.
	before := PT(&current).Metadata()
	meta := PT(&working).Metadata()
	meta.ID = before.ID
	meta.CreatedDate = before.CreatedDate
	meta.CreatedBy = before.CreatedBy
	meta.UpdatedDate = requesttime.Now(ctx)

	s.records[id] = s.clone(working)
	return &working, nil
}
