package service

import (
	"hash/fnv"
	"sync"
)

// keyedMutex 按 key 取模分片的互斥锁；不同 key 撞到同一分片只会串行，不影响正确性
type keyedMutex struct {
	stripes []sync.Mutex
}

func newKeyedMutex(n int) *keyedMutex {
	if n <= 0 {
		n = 256
	}
	return &keyedMutex{stripes: make([]sync.Mutex, n)}
}

func (k *keyedMutex) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%uint32(len(k.stripes))]
	m.Lock()
	return m.Unlock
}
