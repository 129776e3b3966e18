// Package store keeps demo walkthrough sessions for a limited time.
package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"identrust/internal/demo/models"
)

const cleanupInterval = time.Minute

// CacheStore keeps sessions in process memory. Each write renews the TTL.
type CacheStore struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewCache(ttl time.Duration) *CacheStore {
	return &CacheStore{c: cache.New(ttl, cleanupInterval), ttl: ttl}
}

func (s *CacheStore) Get(_ context.Context, id string) (models.State, bool, error) {
	v, ok := s.c.Get(id)
	if !ok {
		return models.State{}, false, nil
	}
	state, ok := v.(models.State)
	return state, ok, nil
}

func (s *CacheStore) Put(_ context.Context, id string, state models.State) error {
	s.c.Set(id, state, s.ttl)
	return nil
}

func (s *CacheStore) Delete(_ context.Context, id string) error {
	s.c.Delete(id)
	return nil
}
