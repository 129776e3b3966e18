// Package sync provides keyed locking for read-modify-write sequences on
// shared state.
package sync

import (
	"hash/fnv"
	"sync"
)

// DefaultShards is the shard count used by NewKeyedMutex when n <= 0.
const DefaultShards = 32

// KeyedMutex serializes work per key. Keys hash onto a fixed set of shards,
// so unrelated keys may occasionally share a lock but never deadlock.
type KeyedMutex struct {
	shards []sync.Mutex
}

func NewKeyedMutex(n int) *KeyedMutex {
	if n <= 0 {
		n = DefaultShards
	}
	return &KeyedMutex{shards: make([]sync.Mutex, n)}
}

// Lock acquires the shard for key and returns its release func.
func (m *KeyedMutex) Lock(key string) (unlock func()) {
	mu := &m.shards[m.shardFor(key)]
	mu.Lock()
	return mu.Unlock
}

func (m *KeyedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}
