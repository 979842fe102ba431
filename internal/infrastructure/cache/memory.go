package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache for single-instance deployments.
type Memory struct {
	inner *gocache.Cache
	ttl   time.Duration
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		inner: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	v, ok := m.inner.Get(key)
	if !ok {
		return nil, false
	}
	buf, ok := v.([]byte)
	return buf, ok
}

func (m *Memory) Set(key string, value []byte) {
	m.inner.Set(key, value, m.ttl)
}

func (m *Memory) Delete(key string) {
	m.inner.Delete(key)
}
