package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("empty key uses the first shard", func(t *testing.T) {
		m := NewKeyedMutex(4)
		assert.Equal(t, 0, m.shardFor(""))
		m.Lock("")()
	})

	t.Run("shard is stable per key", func(t *testing.T) {
		m := NewKeyedMutex(0)
		assert.Len(t, m.shards, DefaultShards)
		assert.Equal(t, m.shardFor("sess-1"), m.shardFor("sess-1"))
	})

	t.Run("same key serializes", func(t *testing.T) {
		m := NewKeyedMutex(8)
		counter := 0
		var wg sync.WaitGroup
		for range 200 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := m.Lock("sess-1")
				defer unlock()
				counter++
			}()
		}
		wg.Wait()
		assert.Equal(t, 200, counter)
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		m := NewKeyedMutex(8)
		var wg sync.WaitGroup
		for i := range 100 {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				m.Lock(key)()
			}(string(rune('A' + i%26)))
		}
		wg.Wait()
	})
}
