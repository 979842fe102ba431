package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcached shares the cache between instances behind a load balancer.
// Errors degrade to cache misses; the backing store is always authoritative.
type Memcached struct {
	client *memcache.Client
	ttl    time.Duration
}

func NewMemcached(client *memcache.Client, ttl time.Duration) *Memcached {
	return &Memcached{
		client: client,
		ttl:    ttl,
	}
}

func (m *Memcached) Get(key string) ([]byte, bool) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, false
	}
	return item.Value, true
}

func (m *Memcached) Set(key string, value []byte) {
	_ = m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(m.ttl / time.Second),
	})
}

func (m *Memcached) Delete(key string) {
	_ = m.client.Delete(key)
}
