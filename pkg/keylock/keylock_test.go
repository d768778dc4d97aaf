package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	r := NewRegistry()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Lock("k")
			counter++
			r.Unlock("k")
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	r := NewRegistry()

	r.Lock("a")
	done := make(chan struct{})
	go func() {
		// 不同键的锁互不阻塞
		r.Lock("b")
		r.Unlock("b")
		close(done)
	}()
	<-done
	r.Unlock("a")
}
