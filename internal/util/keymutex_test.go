package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("lesson:1:1")
			counter++
			m.Unlock("lesson:1:1")
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("lesson:1:1")

	done := make(chan struct{})
	go func() {
		// 不同 key 不受已持有的锁影响
		m.Lock("lesson:1:2")
		m.Unlock("lesson:1:2")
		close(done)
	}()

	<-done
	m.Unlock("lesson:1:1")
}

func TestKeyedMutexReclaimsEntries(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("gym:1:1")
	m.Unlock("gym:1:1")

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks)
}
